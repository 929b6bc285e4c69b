package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"resume-insights/internal/contract"
	"resume-insights/internal/extract"
	"resume-insights/internal/llm"
	"resume-insights/internal/shared/telemetry"
)

const (
	Name         = "gemini"
	DefaultModel = "gemini-2.5-flash"
)

var phrasing = llm.Phrasing{
	Preamble:        "You are a career coach who scores résumés the way applicant tracking systems do.",
	JSONInstruction: "Respond with application/json matching the schema. Use numbers, not strings, for scores.",
}

// Client implements llm.Provider over the Gemini API.
type Client struct {
	client   *genai.Client
	settings llm.Settings
}

func NewClient(ctx context.Context, s llm.Settings) (*Client, error) {
	s = s.WithDefaults(DefaultModel)
	if s.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", Name, llm.ErrMissingAPIKey)
	}
	cfg := &genai.ClientConfig{
		APIKey:     s.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: s.HTTPClient,
	}
	if s.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: s.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: client, settings: s}, nil
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) Analyze(ctx context.Context, doc extract.Document, jobRole string) (contract.Partial, error) {
	prompt := llm.BuildPrompt(doc, jobRole, phrasing)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: prompt.System}}},
		Temperature:       genai.Ptr(float32(c.settings.Temperature)),
		MaxOutputTokens:   int32(c.settings.MaxTokens),
		ResponseMIMEType:  "application/json",
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.settings.Model, genai.Text(prompt.User), cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return contract.Partial{}, llm.StatusError(Name, apiErr.Code, err)
		}
		return contract.Partial{}, llm.TransportError(Name, err)
	}

	var builder strings.Builder
	if top := topCandidate(resp); top != nil {
		for _, part := range top.Content.Parts {
			if part == nil || part.Text == "" {
				continue
			}
			builder.WriteString(part.Text)
		}
	}

	fields := map[string]any{
		"provider":    Name,
		"model":       c.settings.Model,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["completion_tokens"] = resp.UsageMetadata.CandidatesTokenCount
	}
	telemetry.Debug("llm.response", fields)

	return llm.Finish(Name, builder.String(), c.settings)
}

func topCandidate(resp *genai.GenerateContentResponse) *genai.Candidate {
	for _, candidate := range resp.Candidates {
		if candidate != nil && candidate.Content != nil {
			return candidate
		}
	}
	return nil
}

var _ llm.Provider = (*Client)(nil)
