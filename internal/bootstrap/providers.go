package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"resume-insights/internal/llm"
	"resume-insights/internal/llm/anthropic"
	"resume-insights/internal/llm/compat"
	"resume-insights/internal/llm/gemini"
	"resume-insights/internal/llm/openai"
	"resume-insights/internal/shared/config"
	"resume-insights/internal/shared/telemetry"
)

// ErrNoProvidersConfigured is returned when no provider in LLM_PROVIDERS has credentials.
var ErrNoProvidersConfigured = errors.New("no llm provider configured: set an API key for at least one entry of LLM_PROVIDERS")

// BuildProviders constructs adapters in the configured failover order. Providers without
// an API key are skipped with a warning.
func BuildProviders(ctx context.Context, cfg config.Config) ([]llm.Provider, error) {
	var providers []llm.Provider
	seen := map[string]bool{}
	for _, name := range cfg.ProviderOrder {
		if seen[name] {
			continue
		}
		seen[name] = true

		pc := cfg.Providers[name]
		if pc.APIKey == "" {
			telemetry.Warn("llm.provider_skipped", map[string]any{"provider": name, "reason": "missing api key"})
			continue
		}
		p, err := buildProvider(ctx, name, settingsFor(cfg, pc))
		if err != nil {
			return nil, fmt.Errorf("build provider %s: %w", name, err)
		}
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		return nil, ErrNoProvidersConfigured
	}

	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	telemetry.Info("llm.providers", map[string]any{"order": names})
	return providers, nil
}

func settingsFor(cfg config.Config, pc config.Provider) llm.Settings {
	return llm.Settings{
		APIKey:      pc.APIKey,
		Model:       pc.Model,
		BaseURL:     pc.BaseURL,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     cfg.LLMTimeout,
		MinCourses:  cfg.CourseMinResults,
		MaxCourses:  cfg.CourseMaxResults,
	}
}

func buildProvider(ctx context.Context, name string, s llm.Settings) (llm.Provider, error) {
	switch name {
	case openai.Name:
		return openai.NewClient(s)
	case anthropic.Name:
		return anthropic.NewClient(s)
	case gemini.Name:
		return gemini.NewClient(ctx, s)
	case "groq":
		return compat.NewClient(name, s)
	default:
		if s.BaseURL == "" {
			return nil, fmt.Errorf("base url is required for %s", name)
		}
		return compat.NewClient(name, s)
	}
}
