package analyses

import (
	"errors"

	"resume-insights/internal/extract"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrNoProviders           = errors.New("no llm providers configured")
	ErrAllProvidersExhausted = errors.New("all llm providers exhausted")
	ErrJobRoleRequired       = errors.New("job role is required")
)

const (
	ErrorCodeValidation         = "VALIDATION_ERROR"
	ErrorCodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	ErrorCodePasswordProtected  = "PASSWORD_PROTECTED"
	ErrorCodeCorruptDocument    = "CORRUPT_DOCUMENT"
	ErrorCodeProvidersExhausted = "PROVIDERS_EXHAUSTED"
	ErrorCodeStorage            = "STORAGE_ERROR"
	ErrorCodeInternal           = "INTERNAL_ERROR"
)

// ErrorCode maps a pipeline error onto the code stored with failed analyses.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrJobRoleRequired):
		return ErrorCodeValidation
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return ErrorCodeUnsupportedFormat
	case errors.Is(err, extract.ErrPasswordProtected):
		return ErrorCodePasswordProtected
	case errors.Is(err, extract.ErrCorruptDocument):
		return ErrorCodeCorruptDocument
	case errors.Is(err, ErrAllProvidersExhausted), errors.Is(err, ErrNoProviders):
		return ErrorCodeProvidersExhausted
	default:
		return ErrorCodeInternal
	}
}
