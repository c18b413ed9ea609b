package domain

import (
	"encoding/json"
	"testing"
)

func TestDocumentRoleConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant DocumentRole
		expected string
	}{
		{"RoleCV", RoleCV, "cv"},
		{"RoleJob", RoleJob, "job"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.constant) != tt.expected {
				t.Errorf("Expected %s to be %q, got %q", tt.name, tt.expected, string(tt.constant))
			}
		})
	}
}

func TestDocumentConstructors(t *testing.T) {
	cv := CVDocument("nurse")
	job := JobDocument("care")
	if cv.Role != RoleCV || cv.Text != "nurse" {
		t.Errorf("CVDocument = %+v", cv)
	}
	if job.Role != RoleJob || job.Text != "care" {
		t.Errorf("JobDocument = %+v", job)
	}
}

func TestLanguageValid(t *testing.T) {
	tests := []struct {
		lang Language
		want bool
	}{
		{LanguageEnglish, true},
		{LanguageSwedish, true},
		{Language(""), false},
		{Language("de"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			if got := tt.lang.Valid(); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.lang, got, tt.want)
			}
		})
	}
}

func TestMatchScoreResultJSONFieldNames(t *testing.T) {
	res := MatchScoreResult{
		OverallScore:    70,
		SkillScore:      50,
		KeywordScore:    60,
		SemanticScore:   80,
		ExperienceScore: 85,
		MatchedSkills:   []string{"go"},
		MissingSkills:   []string{},
		Recommendations: []string{},
	}
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{
		"overall_score", "skill_score", "keyword_score", "semantic_score",
		"experience_score", "matched_skills", "missing_skills", "recommendations",
	} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing json field %q in %s", k, string(b))
		}
	}
	if len(m) != 8 {
		t.Errorf("expected exactly 8 fields, got %d", len(m))
	}
}
