package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd(t *testing.T) {
	t.Setenv("EMBEDDINGS_PROVIDER", "none")
	t.Setenv("REDIS_URL", "")
	dir := t.TempDir()
	cv := writeFile(t, dir, "cv.txt", "5 years of nursing experience, patient care, team work")
	job := writeFile(t, dir, "job.txt", "Nurse needed, 4 years experience, patient care required")

	out, err := execute(t, "--cv", cv, "--job", job, "--lang", "sv")
	require.NoError(t, err)

	var got struct {
		Result            domain.MatchScoreResult `json:"result"`
		MissingKeywords   []string                `json:"missing_keywords"`
		Language          string                  `json:"language"`
		SemanticAvailable bool                    `json:"semantic_available"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 60, got.Result.OverallScore)
	assert.Equal(t, "sv", got.Language)
	assert.Equal(t, []string{"Utöka din CV-beskrivning med mer detaljer om dina projekt"}, got.Result.Recommendations)
	assert.Equal(t, []string{"needed", "nurse", "required"}, got.MissingKeywords)
	assert.False(t, got.SemanticAvailable)
}

func TestRootCmd_Errors(t *testing.T) {
	t.Setenv("EMBEDDINGS_PROVIDER", "none")
	t.Setenv("REDIS_URL", "")
	dir := t.TempDir()
	cv := writeFile(t, dir, "cv.txt", "python")

	_, err := execute(t, "--cv", cv)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = execute(t, "--cv", cv, "--job", filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read job")

	_, err = execute(t, "--cv", cv, "--job", cv, "--lang", "de")
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = execute(t, "--cv", cv, "--job", cv, "extra")
	require.Error(t, err)

	_, err = execute(t, "--resume", cv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}
