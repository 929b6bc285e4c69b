// Package compat talks to OpenAI-compatible chat-completions endpoints (Groq, DeepSeek,
// OpenRouter, local gateways) over plain HTTP.
package compat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resume-insights/internal/contract"
	"resume-insights/internal/extract"
	"resume-insights/internal/llm"
	"resume-insights/internal/shared/telemetry"
)

const (
	GroqBaseURL  = "https://api.groq.com/openai/v1"
	GroqModel    = "llama-3.3-70b-versatile"
	maxErrorBody = 4 << 10
)

// Client implements llm.Provider against any /chat/completions endpoint with bearer auth.
type Client struct {
	name       string
	settings   llm.Settings
	phrasing   llm.Phrasing
	httpClient *http.Client
}

// NewClient constructs a client named name. BaseURL must point at the API root that
// serves /chat/completions.
func NewClient(name string, s llm.Settings) (*Client, error) {
	s = s.WithDefaults(GroqModel)
	if s.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", name, llm.ErrMissingAPIKey)
	}
	if s.BaseURL == "" {
		s.BaseURL = GroqBaseURL
	}
	return &Client{
		name:       name,
		settings:   s,
		phrasing:   llm.DefaultPhrasing,
		httpClient: s.HTTPClient,
	}, nil
}

func (c *Client) Name() string {
	return c.name
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Analyze issues one chat-completion request and decodes the top choice.
func (c *Client) Analyze(ctx context.Context, doc extract.Document, jobRole string) (contract.Partial, error) {
	prompt := llm.BuildPrompt(doc, jobRole, c.phrasing)
	reqBody := chatRequest{
		Model: c.settings.Model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature:    c.settings.Temperature,
		MaxTokens:      c.settings.MaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return contract.Partial{}, llm.NewError(c.name, llm.KindMalformed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.settings.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return contract.Partial{}, llm.NewError(c.name, llm.KindUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.settings.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return contract.Partial{}, llm.TransportError(c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return contract.Partial{}, llm.StatusError(c.name, resp.StatusCode, errors.New(errorMessage(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return contract.Partial{}, llm.TransportError(c.name, err)
	}
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return contract.Partial{}, llm.NewError(c.name, llm.KindMalformed, fmt.Errorf("response parse: %w", err))
	}
	if parsed.Error != nil {
		return contract.Partial{}, llm.NewError(c.name, llm.KindUnavailable, fmt.Errorf("%s (%s)", parsed.Error.Message, parsed.Error.Type))
	}
	if len(parsed.Choices) == 0 {
		return contract.Partial{}, llm.NewError(c.name, llm.KindMalformed, errors.New("response missing choices"))
	}

	c.logUsage(parsed, time.Since(start))
	return llm.Finish(c.name, parsed.Choices[0].Message.Content, c.settings)
}

func (c *Client) logUsage(parsed chatResponse, elapsed time.Duration) {
	fields := map[string]any{
		"provider":    c.name,
		"model":       c.settings.Model,
		"duration_ms": elapsed.Milliseconds(),
	}
	if parsed.Usage != nil {
		fields["prompt_tokens"] = parsed.Usage.PromptTokens
		fields["completion_tokens"] = parsed.Usage.CompletionTokens
		fields["total_tokens"] = parsed.Usage.TotalTokens
	}
	telemetry.Debug("llm.response", fields)
}

func errorMessage(body []byte) string {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty error body"
	}
	return msg
}

var _ llm.Provider = (*Client)(nil)
