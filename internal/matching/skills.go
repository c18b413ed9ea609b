package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
)

// SkillExtractor finds taxonomy skills in raw text.
//
// Matching is plain substring containment on the lowercased text so
// multi-word entries ("machine learning") are found. Short entries such as
// "go" or "bi" also match inside unrelated words; callers must treat the
// result as a heuristic.
type SkillExtractor struct {
	tables *Tables
}

// NewSkillExtractor returns an extractor bound to t, or to the defaults when t is nil.
func NewSkillExtractor(t *Tables) *SkillExtractor {
	if t == nil {
		t = DefaultTables()
	}
	return &SkillExtractor{tables: t}
}

// ExtractFromText returns the hard and soft skills mentioned in text.
func (e *SkillExtractor) ExtractFromText(text string) domain.SkillSet {
	lower := strings.ToLower(text)
	hard := make(map[string]struct{})
	for _, cat := range e.tables.HardCategories {
		for _, skill := range e.tables.HardSkills[cat] {
			if strings.Contains(lower, skill) {
				hard[skill] = struct{}{}
			}
		}
	}
	soft := make(map[string]struct{})
	for _, skill := range e.tables.SoftSkills {
		if strings.Contains(lower, skill) {
			soft[skill] = struct{}{}
		}
	}
	return domain.SkillSet{Hard: sortedKeys(hard), Soft: sortedKeys(soft)}
}

// Categorize groups the hard skills found in text by taxonomy category.
// Categories without a hit are omitted.
func (e *SkillExtractor) Categorize(text string) map[string][]string {
	lower := strings.ToLower(text)
	out := make(map[string][]string)
	for _, cat := range e.tables.HardCategories {
		var found []string
		for _, skill := range e.tables.HardSkills[cat] {
			if strings.Contains(lower, skill) {
				found = append(found, skill)
			}
		}
		if len(found) > 0 {
			sort.Strings(found)
			out[cat] = found
		}
	}
	return out
}

// CalculateSkillMatch compares two skill lists case-insensitively.
func (e *SkillExtractor) CalculateSkillMatch(cvSkills, jobSkills []string) domain.SkillMatchResult {
	return CalculateSkillMatch(cvSkills, jobSkills)
}

// CalculateSkillMatch compares two skill lists case-insensitively.
// Percentage is 0 when jobSkills is empty.
func CalculateSkillMatch(cvSkills, jobSkills []string) domain.SkillMatchResult {
	cv := lowerSet(cvSkills)
	job := lowerSet(jobSkills)

	matched := make(map[string]struct{})
	missing := make(map[string]struct{})
	for s := range job {
		if _, ok := cv[s]; ok {
			matched[s] = struct{}{}
		} else {
			missing[s] = struct{}{}
		}
	}

	pct := 0
	if len(job) > 0 {
		pct = int(math.Round(100 * float64(len(matched)) / float64(len(job))))
		if pct > 100 {
			pct = 100
		}
	}
	return domain.SkillMatchResult{
		Matched:    sortedKeys(matched),
		Missing:    sortedKeys(missing),
		Percentage: pct,
	}
}

func lowerSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
