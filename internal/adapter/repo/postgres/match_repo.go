package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
)

// MatchRepo persists and loads match outcomes.
type MatchRepo struct{ Pool PgxPool }

// NewMatchRepo constructs a MatchRepo with the given pool.
func NewMatchRepo(p PgxPool) *MatchRepo { return &MatchRepo{Pool: p} }

// Create stores m and returns its id (generates one if empty).
func (r *MatchRepo) Create(ctx domain.Context, m domain.StoredMatch) (string, error) {
	tracer := otel.Tracer("repo.matches")
	ctx, span := tracer.Start(ctx, "matches.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "matches"),
	)
	id := m.ID
	if id == "" {
		id = uuid.New().String()
	}
	created := m.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	res := m.Result
	q := `INSERT INTO matches (id, overall_score, skill_score, keyword_score, semantic_score, experience_score,
		matched_skills, missing_skills, recommendations, missing_keywords, language, cv_chars, job_chars, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err := r.Pool.Exec(ctx, q, id,
		res.OverallScore, res.SkillScore, res.KeywordScore, res.SemanticScore, res.ExperienceScore,
		orEmpty(res.MatchedSkills), orEmpty(res.MissingSkills), orEmpty(res.Recommendations), orEmpty(m.MissingKeywords),
		string(m.Language), m.CVChars, m.JobChars, created)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("op=match.create: %w", err)
	}
	return id, nil
}

// Get loads a match by id. Unknown or malformed ids yield domain.ErrNotFound.
func (r *MatchRepo) Get(ctx domain.Context, id string) (domain.StoredMatch, error) {
	tracer := otel.Tracer("repo.matches")
	ctx, span := tracer.Start(ctx, "matches.Get")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "matches"),
	)
	if _, err := uuid.Parse(id); err != nil {
		return domain.StoredMatch{}, fmt.Errorf("op=match.get: %w", domain.ErrNotFound)
	}
	q := `SELECT id, overall_score, skill_score, keyword_score, semantic_score, experience_score,
		matched_skills, missing_skills, recommendations, missing_keywords, language, cv_chars, job_chars, created_at
		FROM matches WHERE id=$1`
	var (
		m    domain.StoredMatch
		lang string
	)
	err := r.Pool.QueryRow(ctx, q, id).Scan(&m.ID,
		&m.Result.OverallScore, &m.Result.SkillScore, &m.Result.KeywordScore, &m.Result.SemanticScore, &m.Result.ExperienceScore,
		&m.Result.MatchedSkills, &m.Result.MissingSkills, &m.Result.Recommendations, &m.MissingKeywords,
		&lang, &m.CVChars, &m.JobChars, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StoredMatch{}, fmt.Errorf("op=match.get: %w", domain.ErrNotFound)
	}
	if err != nil {
		span.RecordError(err)
		return domain.StoredMatch{}, fmt.Errorf("op=match.get: %w", err)
	}
	m.Language = domain.Language(lang)
	m.Result.MatchedSkills = orEmpty(m.Result.MatchedSkills)
	m.Result.MissingSkills = orEmpty(m.Result.MissingSkills)
	m.Result.Recommendations = orEmpty(m.Result.Recommendations)
	m.MissingKeywords = orEmpty(m.MissingKeywords)
	return m, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
