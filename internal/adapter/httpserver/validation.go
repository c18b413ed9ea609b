package httpserver

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New(validator.WithRequiredStructEnabled()) })
	return vld
}

// matchRequest is the body of POST /v1/match. Both texts may be empty.
type matchRequest struct {
	CVText   string `json:"cv_text"`
	JobText  string `json:"job_text"`
	Language string `json:"language" validate:"omitempty,oneof=en sv"`
}

// skillsRequest is the body of POST /v1/skills.
type skillsRequest struct {
	Text string `json:"text"`
}

// ValidationError describes one rejected field.
type ValidationError struct {
	Field string `json:"field"`
	Code  string `json:"code"`
}

// validateStruct runs struct tags and returns field failures, or nil.
func validateStruct(v any) []ValidationError {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []ValidationError{{Field: "body", Code: "INVALID"}}
	}
	out := make([]ValidationError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, ValidationError{Field: strings.ToLower(fe.Field()), Code: strings.ToUpper(fe.Tag())})
	}
	return out
}

// ValidateMatchID checks a match id path parameter.
func ValidateMatchID(id string) []ValidationError {
	if err := getValidator().Var(id, "required,uuid"); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return []ValidationError{{Field: "id", Code: strings.ToUpper(ve[0].Tag())}}
		}
		return []ValidationError{{Field: "id", Code: "INVALID"}}
	}
	return nil
}
