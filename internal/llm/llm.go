package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"resume-insights/internal/contract"
	"resume-insights/internal/extract"
)

// Provider analyzes an extracted résumé against a job role. Implementations share one failure
// taxonomy (*ProviderError) so callers can fail over between them.
type Provider interface {
	Name() string
	Analyze(ctx context.Context, doc extract.Document, jobRole string) (contract.Partial, error)
}

// Settings configures one provider adapter.
type Settings struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	HTTPClient  *http.Client

	// MinCourses triggers a catalog backfill when the provider suggests fewer courses.
	MinCourses int
	MaxCourses int
}

const (
	defaultTemperature = 0.2
	defaultMaxTokens   = 4096
	defaultMinCourses  = 3
	defaultMaxCourses  = 6
	defaultTimeout     = 60 * time.Second
)

// WithDefaults fills zero values and trims string fields.
func (s Settings) WithDefaults(model string) Settings {
	s.APIKey = strings.TrimSpace(s.APIKey)
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.Model = strings.TrimSpace(s.Model); s.Model == "" {
		s.Model = model
	}
	if s.Temperature < 0 {
		s.Temperature = defaultTemperature
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = defaultMaxTokens
	}
	if s.Timeout <= 0 {
		s.Timeout = defaultTimeout
	}
	if s.MinCourses <= 0 {
		s.MinCourses = defaultMinCourses
	}
	if s.MaxCourses <= 0 {
		s.MaxCourses = defaultMaxCourses
	}
	if s.HTTPClient == nil {
		s.HTTPClient = &http.Client{Timeout: s.Timeout}
	}
	return s
}
