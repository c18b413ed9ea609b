package httpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/cv-job-matcher/internal/config"
	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
	"github.com/fairyhunter13/cv-job-matcher/internal/usecase"
)

// Server aggregates handlers dependencies.
type Server struct {
	Cfg             config.Config
	Matches         usecase.MatchService
	DBCheck         func(ctx context.Context) error
	RedisCheck      func(ctx context.Context) error
	EmbeddingsCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with handlers and readiness checks wired.
// A nil check means the dependency is not configured and is skipped.
func NewServer(cfg config.Config, matches usecase.MatchService, dbCheck, redisCheck, embeddingsCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Matches: matches, DBCheck: dbCheck, RedisCheck: redisCheck, EmbeddingsCheck: embeddingsCheck}
}

type matchResponse struct {
	ID                string                  `json:"id,omitempty"`
	Result            domain.MatchScoreResult `json:"result"`
	MissingKeywords   []string                `json:"missing_keywords"`
	Language          domain.Language         `json:"language"`
	SemanticAvailable bool                    `json:"semantic_available"`
}

type storedMatchResponse struct {
	ID              string                  `json:"id"`
	Result          domain.MatchScoreResult `json:"result"`
	MissingKeywords []string                `json:"missing_keywords"`
	Language        domain.Language         `json:"language"`
	CreatedAt       time.Time               `json:"created_at"`
}

type skillsResponse struct {
	Hard       []string            `json:"hard"`
	Soft       []string            `json:"soft"`
	Categories map[string][]string `json:"categories"`
}

// decodeBody caps the body at MaxBodyKB and decodes JSON into dst. It writes
// the error response itself and reports whether the handler should continue.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	maxKB := s.Cfg.MaxBodyKB
	if maxKB <= 0 {
		maxKB = 1024
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxKB*1024)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeTooLarge(w, maxKB)
			return false
		}
		writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
		return false
	}
	if verrs := validateStruct(dst); verrs != nil {
		writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
		return false
	}
	return true
}

// MatchHandler scores a CV against a job description.
func (s *Server) MatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		var req matchRequest
		if !s.decodeBody(w, r, &req) {
			return
		}
		out, err := s.Matches.Match(r.Context(), usecase.MatchInput{
			CV:       domain.CVDocument(req.CVText),
			Job:      domain.JobDocument(req.JobText),
			Language: domain.Language(req.Language),
		})
		if err != nil {
			writeError(w, r, fmt.Errorf("match: %w", err), nil)
			return
		}
		writeJSON(w, http.StatusOK, matchResponse{
			ID:                out.ID,
			Result:            out.Result,
			MissingKeywords:   out.MissingKeywords,
			Language:          out.Language,
			SemanticAvailable: out.SemanticAvailable,
		})
	}
}

// GetMatchHandler returns a stored match. It honours If-None-Match.
func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		id := chi.URLParam(r, "id")
		if verrs := ValidateMatchID(id); verrs != nil {
			writeError(w, r, fmt.Errorf("%w: invalid id", domain.ErrInvalidArgument), verrs)
			return
		}
		m, err := s.Matches.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		body := storedMatchResponse{
			ID:              m.ID,
			Result:          m.Result,
			MissingKeywords: m.MissingKeywords,
			Language:        m.Language,
			CreatedAt:       m.CreatedAt.UTC(),
		}
		etag := makeETag(body)
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

// SkillsHandler extracts categorized skills from one text.
func (s *Server) SkillsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		var req skillsRequest
		if !s.decodeBody(w, r, &req) {
			return
		}
		rep, err := s.Matches.Skills(r.Context(), req.Text)
		if err != nil {
			writeError(w, r, fmt.Errorf("skills: %w", err), nil)
			return
		}
		writeJSON(w, http.StatusOK, skillsResponse{Hard: rep.Skills.Hard, Soft: rep.Skills.Soft, Categories: rep.Categories})
	}
}

type readinessCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Details string `json:"details,omitempty"`
}

// ReadyzHandler probes the configured dependencies: db, redis and embeddings.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		probes := []struct {
			name string
			fn   func(context.Context) error
		}{
			{"db", s.DBCheck},
			{"redis", s.RedisCheck},
			{"embeddings", s.EmbeddingsCheck},
		}
		checks := make([]readinessCheck, 0, len(probes))
		ok := true
		for _, p := range probes {
			if p.fn == nil {
				continue
			}
			if err := p.fn(ctx); err != nil {
				ok = false
				checks = append(checks, readinessCheck{Name: p.name, OK: false, Details: err.Error()})
				continue
			}
			checks = append(checks, readinessCheck{Name: p.name, OK: true})
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}

// OpenAPIServe serves api/openapi.yaml if present.
func (s *Server) OpenAPIServe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := os.ReadFile("api/openapi.yaml")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

func makeETag(v any) string {
	b, _ := json.Marshal(v)
	sum := sha256.Sum256(b)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}
