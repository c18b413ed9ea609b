package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrNotFound              = errors.New("not found")
	ErrRateLimited           = errors.New("rate limited")
	ErrUpstreamTimeout       = errors.New("upstream timeout")
	ErrUpstreamRateLimit     = errors.New("upstream rate limit")
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrComputation           = errors.New("computation error")
	ErrInternal              = errors.New("internal error")
)

// DocumentRole tags a document as either side of a match.
type DocumentRole string

const (
	RoleCV  DocumentRole = "cv"
	RoleJob DocumentRole = "job"
)

// Document is caller-owned plain text; it is never persisted by the engine.
type Document struct {
	Role DocumentRole
	Text string
}

// CVDocument tags text as the CV side of a match.
func CVDocument(text string) Document { return Document{Role: RoleCV, Text: text} }

// JobDocument tags text as the job side of a match.
func JobDocument(text string) Document { return Document{Role: RoleJob, Text: text} }

// Language selects the wording of recommendations.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSwedish Language = "sv"
)

// Valid reports whether l is a supported recommendation language.
func (l Language) Valid() bool { return l == LanguageEnglish || l == LanguageSwedish }

// SkillSet holds canonical taxonomy names found in one document.
// Both slices are sorted and free of duplicates.
type SkillSet struct {
	Hard []string `json:"hard"`
	Soft []string `json:"soft"`
}

// SkillMatchResult compares two hard-skill sets.
// Invariants: Matched ⊆ cv∩job; Missing = job\cv; Percentage in [0,100] and 0 when job is empty.
type SkillMatchResult struct {
	Matched    []string
	Missing    []string
	Percentage int
}

// MatchScoreResult is the composite outcome of one CV vs job comparison.
// All scores are integers in [0,100].
type MatchScoreResult struct {
	OverallScore    int      `json:"overall_score"`
	SkillScore      int      `json:"skill_score"`
	KeywordScore    int      `json:"keyword_score"`
	SemanticScore   int      `json:"semantic_score"`
	ExperienceScore int      `json:"experience_score"`
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	Recommendations []string `json:"recommendations"`
}

// StoredMatch is a persisted match outcome.
type StoredMatch struct {
	ID              string
	Result          MatchScoreResult
	MissingKeywords []string
	Language        Language
	CVChars         int
	JobChars        int
	CreatedAt       time.Time
}

// MatchRepository (port)
type MatchRepository interface {
	Create(ctx Context, m StoredMatch) (string, error)
	Get(ctx Context, id string) (StoredMatch, error)
}

// Embedder (port)
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx Context, texts []string) ([][]float32, error)
}

// Context is an alias so ports read the same across adapters.
type Context = context.Context
