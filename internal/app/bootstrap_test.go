package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/cv-job-matcher/internal/config"
	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
)

func TestNewRedis(t *testing.T) {
	ctx := context.Background()

	rdb, err := NewRedis(ctx, config.Config{})
	require.NoError(t, err)
	assert.Nil(t, rdb)

	_, err = NewRedis(ctx, config.Config{RedisURL: "::not a url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=app.NewRedis")

	mr := miniredis.RunT(t)
	rdb, err = NewRedis(ctx, config.Config{RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	_ = rdb.Close()
}

func TestBuildMatcher(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.Config
		semantic  bool
		provider  string
		wantErrIs error
	}{
		{"disabled", config.Config{EmbeddingsProvider: "none", RecommendationLanguage: "en"}, false, "none", nil},
		{"openai without key", config.Config{EmbeddingsProvider: "openai", RecommendationLanguage: "en"}, false, "none", nil},
		{"local", config.Config{EmbeddingsProvider: "local", LocalEmbedDims: 64, EmbedCacheSize: 8, RecommendationLanguage: "sv"}, true, "local", nil},
		{"bad language", config.Config{EmbeddingsProvider: "none", RecommendationLanguage: "de"}, false, "", domain.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := BuildMatcher(tt.cfg, nil)
			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErrIs))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.semantic, m.Engine.SemanticAvailable())
			assert.Equal(t, tt.provider, m.Backend.Provider)
		})
	}
}

func TestBuildMatcher_LocalScoresSemantic(t *testing.T) {
	m, err := BuildMatcher(config.Config{EmbeddingsProvider: "local", LocalEmbedDims: 256, EmbedCacheSize: 8, RecommendationLanguage: "en"}, nil)
	require.NoError(t, err)
	text := "Senior Go developer with Kubernetes and PostgreSQL"
	res := m.Engine.Match(context.Background(), text, text)
	assert.Equal(t, 100, res.SemanticScore)
}

func TestBuildMatcher_TaxonomyPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	doc := `version: "custom-1"
hard_skills:
  crafts: [welding]
soft_skills: [patience]
stopwords:
  en: [the]
  sv: [och]
years_markers: [years]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	m, err := BuildMatcher(config.Config{EmbeddingsProvider: "none", RecommendationLanguage: "en", TaxonomyPath: path}, nil)
	require.NoError(t, err)
	assert.Equal(t, "custom-1", m.Engine.TablesVersion())
	res := m.Engine.Match(context.Background(), "welding", "welding")
	assert.Equal(t, []string{"welding"}, res.MatchedSkills)

	_, err = BuildMatcher(config.Config{EmbeddingsProvider: "none", RecommendationLanguage: "en", TaxonomyPath: filepath.Join(dir, "missing.yaml")}, nil)
	require.Error(t, err)
}
