// Package usecase contains application business logic services.
package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/cv-job-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
	"github.com/fairyhunter13/cv-job-matcher/internal/matching"
	obsctx "github.com/fairyhunter13/cv-job-matcher/internal/observability"
)

// MatchInput is one CV vs job comparison request. CV and Job must carry
// the cv and job roles respectively.
type MatchInput struct {
	CV       domain.Document
	Job      domain.Document
	Language domain.Language
}

// MatchOutcome is what callers get back from MatchService.Match.
type MatchOutcome struct {
	ID                string
	Result            domain.MatchScoreResult
	MissingKeywords   []string
	Language          domain.Language
	SemanticAvailable bool
}

// DriftRecorder receives the per-signal scores of every match.
type DriftRecorder interface {
	RecordScores(scores map[string]int)
}

// MatchService runs the matching engine and persists outcomes.
type MatchService struct {
	Engine   *matching.Engine
	Repo     domain.MatchRepository
	Drift    DriftRecorder
	MaxChars int
}

// NewMatchService constructs a MatchService. repo and drift may be nil.
func NewMatchService(engine *matching.Engine, repo domain.MatchRepository, drift DriftRecorder, maxChars int) MatchService {
	return MatchService{Engine: engine, Repo: repo, Drift: drift, MaxChars: maxChars}
}

// Match scores in.CV against in.Job. Empty texts are valid input;
// an unsupported language or invalid UTF-8 is ErrInvalidArgument. Texts
// longer than MaxChars runes are truncated. Persistence failures are logged
// and the outcome is still returned without an id.
func (s MatchService) Match(ctx domain.Context, in MatchInput) (MatchOutcome, error) {
	tracer := otel.Tracer("usecase.match")
	ctx, span := tracer.Start(ctx, "MatchService.Match")
	defer span.End()

	lang := in.Language
	if lang == "" {
		lang = s.Engine.DefaultLanguage()
	}
	if !lang.Valid() {
		return MatchOutcome{}, fmt.Errorf("%w: unsupported language %q", domain.ErrInvalidArgument, string(in.Language))
	}
	if in.CV.Role != domain.RoleCV || in.Job.Role != domain.RoleJob {
		return MatchOutcome{}, fmt.Errorf("%w: documents tagged %q and %q, want cv and job",
			domain.ErrInvalidArgument, string(in.CV.Role), string(in.Job.Role))
	}
	if !utf8.ValidString(in.CV.Text) || !utf8.ValidString(in.Job.Text) {
		return MatchOutcome{}, fmt.Errorf("%w: texts must be valid UTF-8", domain.ErrInvalidArgument)
	}
	cvText := truncateRunes(in.CV.Text, s.MaxChars)
	jobText := truncateRunes(in.Job.Text, s.MaxChars)

	lg := obsctx.LoggerFromContext(ctx)
	if len(cvText) != len(in.CV.Text) || len(jobText) != len(in.Job.Text) {
		lg.Info("match input truncated", slog.Int("max_chars", s.MaxChars))
	}

	res := s.Engine.Match(ctx, cvText, jobText, matching.WithLanguage(lang))
	semantic := s.Engine.SemanticAvailable()
	observability.ObserveMatch(res, lang, semantic)
	if s.Drift != nil {
		s.Drift.RecordScores(observability.SignalScores(res))
	}
	out := MatchOutcome{
		Result:            res,
		MissingKeywords:   s.Engine.Normalizer().MissingKeywords(cvText, jobText, matching.DefaultMissingKeywords),
		Language:          lang,
		SemanticAvailable: semantic,
	}
	span.SetAttributes(
		attribute.Int("match.overall_score", res.OverallScore),
		attribute.Bool("match.semantic_available", semantic),
		attribute.String("match.language", string(lang)),
	)

	if s.Repo == nil {
		return out, nil
	}
	id, err := s.Repo.Create(ctx, domain.StoredMatch{
		Result:          res,
		MissingKeywords: out.MissingKeywords,
		Language:        lang,
		CVChars:         utf8.RuneCountInString(cvText),
		JobChars:        utf8.RuneCountInString(jobText),
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		span.RecordError(err)
		observability.RecordPersist("error")
		lg.Error("failed to persist match", slog.Any("error", err))
		return out, nil
	}
	observability.RecordPersist("ok")
	out.ID = id
	return out, nil
}

// Get loads a stored match. Without a repository every id is unknown.
func (s MatchService) Get(ctx domain.Context, id string) (domain.StoredMatch, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.StoredMatch{}, fmt.Errorf("%w: id required", domain.ErrInvalidArgument)
	}
	if s.Repo == nil {
		return domain.StoredMatch{}, fmt.Errorf("%w: persistence disabled", domain.ErrNotFound)
	}
	return s.Repo.Get(ctx, id)
}

// SkillsReport is the categorized skill view of one document.
type SkillsReport struct {
	Skills     domain.SkillSet
	Categories map[string][]string
}

// Skills extracts hard and soft skills from text.
func (s MatchService) Skills(_ domain.Context, text string) (SkillsReport, error) {
	if !utf8.ValidString(text) {
		return SkillsReport{}, fmt.Errorf("%w: text must be valid UTF-8", domain.ErrInvalidArgument)
	}
	text = truncateRunes(text, s.MaxChars)
	ex := s.Engine.Skills()
	return SkillsReport{Skills: ex.ExtractFromText(text), Categories: ex.Categorize(text)}, nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	i := 0
	for n := 0; n < max; n++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}
