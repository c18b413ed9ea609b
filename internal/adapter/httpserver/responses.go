// Package httpserver contains HTTP handlers and middleware.
//
// It exposes the matching engine as a JSON API: scoring a CV against a
// job description, loading stored matches and extracting skills. Business
// logic stays in the usecase layer; this package only maps requests,
// validation failures and domain errors onto HTTP.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a domain error onto an HTTP status and stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return http.StatusServiceUnavailable, "UPSTREAM_TIMEOUT"
	case errors.Is(err, domain.ErrUpstreamRateLimit):
		return http.StatusServiceUnavailable, "UPSTREAM_RATE_LIMIT"
	case errors.Is(err, domain.ErrCapabilityUnavailable):
		return http.StatusServiceUnavailable, "CAPABILITY_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error, details interface{}) {
	code, codeStr := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		LoggerFrom(r).Error("request failed", "error", err)
		msg = http.StatusText(code)
	}
	writeJSON(w, code, errorEnvelope{Error: apiError{Code: codeStr, Message: msg, Details: details}})
}

func writeTooLarge(w http.ResponseWriter, maxKB int64) {
	writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
		Code:    "INVALID_ARGUMENT",
		Message: "payload too large",
		Details: map[string]any{"max_kb": maxKB},
	}})
}

// acceptsJSON reports whether the Accept header allows a JSON response.
func acceptsJSON(w http.ResponseWriter, r *http.Request) bool {
	a := r.Header.Get("Accept")
	if a == "" || a == "*/*" || containsJSON(a) {
		return true
	}
	writeJSON(w, http.StatusNotAcceptable, errorEnvelope{Error: apiError{
		Code:    "INVALID_ARGUMENT",
		Message: "not acceptable",
		Details: map[string]any{"accept": a},
	}})
	return false
}
