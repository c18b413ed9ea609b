package matching

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
	"github.com/fairyhunter13/cv-job-matcher/internal/observability"
)

// Fusion weights. They sum to exactly 1.0.
const (
	WeightSkill      = 0.30
	WeightKeyword    = 0.25
	WeightSemantic   = 0.25
	WeightExperience = 0.20
)

const (
	// ShortCVChars is the CV length (in characters) below which more detail is suggested.
	ShortCVChars = 500
	// MaxNamedMissingSkills caps how many missing skills one recommendation names.
	MaxNamedMissingSkills = 3
)

// Engine fuses the four matching signals into one result.
// An Engine is read-only after construction and safe for concurrent use.
type Engine struct {
	tables     *Tables
	normalizer *Normalizer
	skills     *SkillExtractor
	experience *ExperienceEstimator
	semantic   Similarity
	language   domain.Language
}

// EngineOption customises an Engine at construction.
type EngineOption func(*Engine)

// WithTables replaces the embedded default tables.
func WithTables(t *Tables) EngineOption {
	return func(e *Engine) {
		if t != nil {
			e.tables = t
		}
	}
}

// WithSimilarity injects the semantic capability. Nil keeps the null object.
func WithSimilarity(s Similarity) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.semantic = s
		}
	}
}

// WithDefaultLanguage sets the recommendation language used when a call does not pick one.
func WithDefaultLanguage(l domain.Language) EngineOption {
	return func(e *Engine) {
		if l.Valid() {
			e.language = l
		}
	}
}

// NewEngine builds an Engine. Without options it uses the embedded tables,
// no semantic backend and English recommendations.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		tables:   DefaultTables(),
		semantic: NullSimilarity{},
		language: domain.LanguageEnglish,
	}
	for _, o := range opts {
		o(e)
	}
	e.normalizer = NewNormalizer(e.tables)
	e.skills = NewSkillExtractor(e.tables)
	e.experience = NewExperienceEstimator(e.tables)
	return e
}

// Normalizer exposes the engine's normalizer.
func (e *Engine) Normalizer() *Normalizer { return e.normalizer }

// Skills exposes the engine's skill extractor.
func (e *Engine) Skills() *SkillExtractor { return e.skills }

// SemanticAvailable reports whether a semantic backend is wired in.
func (e *Engine) SemanticAvailable() bool { return e.semantic.Available() }

// DefaultLanguage is the recommendation language used when a call does not pick one.
func (e *Engine) DefaultLanguage() domain.Language { return e.language }

// TablesVersion identifies the static tables the scores were computed with.
func (e *Engine) TablesVersion() string { return e.tables.Version }

// MatchOption adjusts a single Match call.
type MatchOption func(*matchSettings)

type matchSettings struct {
	language domain.Language
}

// WithLanguage picks the recommendation language for one call.
// Unsupported values are ignored.
func WithLanguage(l domain.Language) MatchOption {
	return func(s *matchSettings) {
		if l.Valid() {
			s.language = l
		}
	}
}

// Match scores cvText against jobText. It never panics and never fails:
// a signal that cannot be computed contributes 0 (or its neutral value)
// and the remaining signals are still reported.
func (e *Engine) Match(ctx context.Context, cvText, jobText string, opts ...MatchOption) domain.MatchScoreResult {
	settings := matchSettings{language: e.language}
	for _, o := range opts {
		o(&settings)
	}
	lg := observability.LoggerFromContext(ctx)

	normalizedCV := e.normalizer.Normalize(cvText)
	normalizedJob := e.normalizer.Normalize(jobText)

	var skillMatch domain.SkillMatchResult
	skillScore := guard(lg, "skill", func() int {
		cvSkills := e.skills.ExtractFromText(cvText)
		jobSkills := e.skills.ExtractFromText(jobText)
		skillMatch = e.skills.CalculateSkillMatch(cvSkills.Hard, jobSkills.Hard)
		return skillMatch.Percentage
	})
	keywordScore := guard(lg, "keyword", func() int {
		return KeywordScore(e.normalizer.ExtractWords(normalizedCV), e.normalizer.ExtractWords(normalizedJob))
	})
	semanticScore := guard(lg, "semantic", func() int {
		return int(math.Round(e.semantic.Similarity(ctx, cvText, jobText) * 100))
	})
	experienceScore := guard(lg, "experience", func() int {
		return int(math.Round(e.experience.Estimate(cvText, jobText)))
	})

	res := domain.MatchScoreResult{
		SkillScore:      clampScore(skillScore),
		KeywordScore:    clampScore(keywordScore),
		SemanticScore:   clampScore(semanticScore),
		ExperienceScore: clampScore(experienceScore),
		MatchedSkills:   nonNil(skillMatch.Matched),
		MissingSkills:   nonNil(skillMatch.Missing),
	}
	res.OverallScore = FuseScores(res.SkillScore, res.KeywordScore, res.SemanticScore, res.ExperienceScore)
	res.Recommendations = e.recommend(res.MissingSkills, cvText, settings.language)

	lg.Debug("match computed",
		slog.Int("overall", res.OverallScore),
		slog.Int("skill", res.SkillScore),
		slog.Int("keyword", res.KeywordScore),
		slog.Int("semantic", res.SemanticScore),
		slog.Int("experience", res.ExperienceScore),
		slog.Bool("semantic_available", e.semantic.Available()),
		slog.String("tables_version", e.tables.Version))
	return res
}

// FuseScores combines the four sub-scores with the fixed weights and clamps to [0,100].
func FuseScores(skill, keyword, semantic, experience int) int {
	total := WeightSkill*float64(skill) +
		WeightKeyword*float64(keyword) +
		WeightSemantic*float64(semantic) +
		WeightExperience*float64(experience)
	return clampScore(int(math.Round(total)))
}

// KeywordScore is the share of job words that also appear in the CV, in [0,100].
func KeywordScore(cvWords, jobWords map[string]struct{}) int {
	if len(jobWords) == 0 {
		return 0
	}
	common := 0
	for w := range jobWords {
		if _, ok := cvWords[w]; ok {
			common++
		}
	}
	return clampScore(int(math.Round(100 * float64(common) / float64(len(jobWords)))))
}

func (e *Engine) recommend(missing []string, cvText string, lang domain.Language) []string {
	msgs := recommendationTexts[lang]
	out := make([]string, 0, 3)
	if len(missing) > 0 {
		named := missing
		if len(named) > MaxNamedMissingSkills {
			named = named[:MaxNamedMissingSkills]
		}
		out = append(out, fmt.Sprintf(msgs.addSkills, strings.Join(named, ", ")))
	}
	if !e.experience.MentionsYears(cvText) {
		out = append(out, msgs.clarifyYears)
	}
	if utf8.RuneCountInString(cvText) < ShortCVChars {
		out = append(out, msgs.moreDetail)
	}
	return out
}

type recommendationSet struct {
	addSkills    string
	clarifyYears string
	moreDetail   string
}

var recommendationTexts = map[domain.Language]recommendationSet{
	domain.LanguageEnglish: {
		addSkills:    "Add experience with: %s",
		clarifyYears: "Clarify your work experience and number of years",
		moreDetail:   "Expand your CV with more detail about your projects",
	},
	domain.LanguageSwedish: {
		addSkills:    "Lägg till erfarenhet av: %s",
		clarifyYears: "Förtydliga din arbetslivserfarenhet och antal år",
		moreDetail:   "Utöka din CV-beskrivning med mer detaljer om dina projekt",
	},
}

// guard runs one signal and turns a panic into a zero score.
func guard(lg *slog.Logger, signal string, fn func() int) (score int) {
	defer func() {
		if rec := recover(); rec != nil {
			lg.Warn("matching signal degraded to zero",
				slog.String("signal", signal),
				slog.Any("recover", rec))
			score = 0
		}
	}()
	return fn()
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
