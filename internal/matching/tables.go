// Package matching scores a CV against a job description.
//
// It fuses four independent signals (skill taxonomy overlap, keyword
// overlap, semantic similarity and a years-of-experience heuristic) into
// one reproducible composite score. Everything in this package is
// synchronous and safe for concurrent use once constructed.
package matching

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// Tables holds the static vocabulary the engine works from.
// A Tables value is immutable after Load/DefaultTables returns it and is
// shared by pointer between the normalizer, extractor and estimator.
type Tables struct {
	Version string
	// HardSkills maps category name to lowercase taxonomy entries.
	HardSkills map[string][]string
	// HardCategories lists HardSkills keys in a stable order.
	HardCategories []string
	SoftSkills     []string
	// Synonyms maps a lowercase surface form to its canonical name.
	Synonyms map[string]string
	// Stopwords is the union of all languages, already normalized.
	Stopwords map[string]struct{}
	// StopwordLanguages lists the languages present in Stopwords.
	StopwordLanguages []string
	YearsMarkers      []string
}

type tablesYAML struct {
	Version      string              `yaml:"version"`
	HardSkills   map[string][]string `yaml:"hard_skills"`
	SoftSkills   []string            `yaml:"soft_skills"`
	Synonyms     map[string]string   `yaml:"synonyms"`
	Stopwords    map[string][]string `yaml:"stopwords"`
	YearsMarkers []string            `yaml:"years_markers"`
}

var defaultTables = mustParseTables(defaultTablesYAML)

// DefaultTables returns the tables compiled into the binary.
func DefaultTables() *Tables { return defaultTables }

// LoadTables reads tables from a YAML file. An empty path yields the defaults.
func LoadTables(path string) (*Tables, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultTables(), nil
	}
	// #nosec G304 -- operator supplied configuration file
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("op=matching.LoadTables: %w", err)
	}
	t, err := ParseTables(content)
	if err != nil {
		return nil, fmt.Errorf("op=matching.LoadTables: %w", err)
	}
	return t, nil
}

// ParseTables decodes and validates a YAML tables document.
func ParseTables(content []byte) (*Tables, error) {
	var raw tablesYAML
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(raw.HardSkills) == 0 {
		return nil, fmt.Errorf("hard_skills must not be empty")
	}
	if len(raw.Stopwords) < 2 {
		return nil, fmt.Errorf("stopwords must cover at least two languages, got %d", len(raw.Stopwords))
	}
	if len(raw.YearsMarkers) == 0 {
		return nil, fmt.Errorf("years_markers must not be empty")
	}

	t := &Tables{
		Version:    raw.Version,
		HardSkills: make(map[string][]string, len(raw.HardSkills)),
		Synonyms:   make(map[string]string, len(raw.Synonyms)),
		Stopwords:  make(map[string]struct{}),
	}
	for cat, skills := range raw.HardSkills {
		t.HardSkills[cat] = lowerAll(skills)
		t.HardCategories = append(t.HardCategories, cat)
	}
	sort.Strings(t.HardCategories)
	t.SoftSkills = lowerAll(raw.SoftSkills)
	for k, v := range raw.Synonyms {
		t.Synonyms[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(strings.TrimSpace(v))
	}
	// Stopwords are compared against normalized words, so fold them the same way.
	for lang, words := range raw.Stopwords {
		t.StopwordLanguages = append(t.StopwordLanguages, lang)
		for _, w := range words {
			if n := Normalize(w); n != "" {
				t.Stopwords[n] = struct{}{}
			}
		}
	}
	sort.Strings(t.StopwordLanguages)
	t.YearsMarkers = lowerAll(raw.YearsMarkers)
	return t, nil
}

func mustParseTables(content []byte) *Tables {
	t, err := ParseTables(content)
	if err != nil {
		panic(fmt.Sprintf("embedded matching tables: %v", err))
	}
	return t
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
