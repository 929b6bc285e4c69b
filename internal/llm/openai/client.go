package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"resume-insights/internal/contract"
	"resume-insights/internal/extract"
	"resume-insights/internal/llm"
	"resume-insights/internal/shared/telemetry"
)

const (
	Name         = "openai"
	DefaultModel = "gpt-4o-mini"
)

// Client implements llm.Provider using the official OpenAI SDK.
type Client struct {
	client   sdk.Client
	settings llm.Settings
	phrasing llm.Phrasing
}

// NewClient constructs a new OpenAI client. SDK retries are disabled; the orchestrator owns them.
func NewClient(s llm.Settings) (*Client, error) {
	s = s.WithDefaults(DefaultModel)
	if s.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", Name, llm.ErrMissingAPIKey)
	}
	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithHTTPClient(s.HTTPClient),
		option.WithMaxRetries(0),
	}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	return &Client{
		client:   sdk.NewClient(opts...),
		settings: s,
		phrasing: llm.DefaultPhrasing,
	}, nil
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) Analyze(ctx context.Context, doc extract.Document, jobRole string) (contract.Partial, error) {
	prompt := llm.BuildPrompt(doc, jobRole, c.phrasing)
	params := sdk.ChatCompletionNewParams{
		Model: c.settings.Model,
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(prompt.System),
			sdk.UserMessage(prompt.User),
		},
		Temperature: sdk.Float(c.settings.Temperature),
		MaxTokens:   sdk.Int(int64(c.settings.MaxTokens)),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return contract.Partial{}, classify(err)
	}
	if len(resp.Choices) == 0 {
		return contract.Partial{}, llm.NewError(Name, llm.KindMalformed, errors.New("no choices in response"))
	}

	telemetry.Debug("llm.response", map[string]any{
		"provider":          Name,
		"model":             c.settings.Model,
		"duration_ms":       time.Since(start).Milliseconds(),
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"finish_reason":     string(resp.Choices[0].FinishReason),
	})
	return llm.Finish(Name, resp.Choices[0].Message.Content, c.settings)
}

func classify(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return llm.StatusError(Name, apiErr.StatusCode, err)
	}
	return llm.TransportError(Name, err)
}

var _ llm.Provider = (*Client)(nil)
