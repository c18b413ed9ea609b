package matching

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables(t *testing.T) {
	t.Parallel()

	tb := DefaultTables()
	require.NotNil(t, tb)
	assert.NotEmpty(t, tb.Version)
	assert.Equal(t, []string{"data", "databases", "frameworks", "healthcare", "languages", "tools"}, tb.HardCategories)
	assert.Contains(t, tb.HardSkills["languages"], "c++")
	assert.Contains(t, tb.SoftSkills, "problem-solving")
	assert.Equal(t, []string{"en", "sv"}, tb.StopwordLanguages)
	// Stopwords are stored normalized.
	assert.Contains(t, tb.Stopwords, "pa")
	assert.Contains(t, tb.Stopwords, "fran")
	assert.NotContains(t, tb.Stopwords, "på")
	assert.Equal(t, "csharp", tb.Synonyms["c#"])
	assert.ElementsMatch(t, []string{"years", "year", "år"}, tb.YearsMarkers)
}

func TestParseTables_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"invalid yaml", "hard_skills: [unclosed", "failed to parse YAML"},
		{"no hard skills", "stopwords: {en: [a], sv: [en]}\nyears_markers: [years]", "hard_skills"},
		{"single stopword language", "hard_skills: {x: [go]}\nstopwords: {en: [a]}\nyears_markers: [years]", "two languages"},
		{"no years markers", "hard_skills: {x: [go]}\nstopwords: {en: [a], sv: [en]}", "years_markers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTables([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadTables(t *testing.T) {
	t.Parallel()

	tb, err := LoadTables("")
	require.NoError(t, err)
	assert.Same(t, DefaultTables(), tb)

	path := filepath.Join(t.TempDir(), "tables.yaml")
	content := `version: "test-1"
hard_skills:
  infra: [Terraform, Ansible]
soft_skills: [Mentoring]
synonyms:
  TF: terraform
stopwords:
  en: [the]
  de: [der, für]
years_markers: [jahre, years]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	tb, err = LoadTables(path)
	require.NoError(t, err)
	assert.Equal(t, "test-1", tb.Version)
	assert.Equal(t, []string{"terraform", "ansible"}, tb.HardSkills["infra"])
	assert.Equal(t, []string{"mentoring"}, tb.SoftSkills)
	assert.Equal(t, "terraform", tb.Synonyms["tf"])
	assert.Contains(t, tb.Stopwords, "fur")

	_, err = LoadTables(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=matching.LoadTables")
}
