package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"resume-insights/internal/contract"
	"resume-insights/internal/extract"
	"resume-insights/internal/llm"
	"resume-insights/internal/shared/telemetry"
)

const (
	Name         = "anthropic"
	DefaultModel = "claude-3-5-haiku-latest"
)

// Claude has no JSON response mode, so the instruction asks for the bare object.
var phrasing = llm.Phrasing{
	System:          "You are a résumé analysis engine. Your entire reply is one JSON object and nothing else.",
	Preamble:        "You are an experienced hiring manager reviewing a candidate for an open position.",
	JSONInstruction: "Reply with the JSON object only, starting with { and ending with }. Include every key in the schema.",
}

// Client implements llm.Provider over the Anthropic Messages API.
type Client struct {
	client   sdk.Client
	settings llm.Settings
}

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
	return &Client{client: sdk.NewClient(opts...), settings: s}, nil
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) Analyze(ctx context.Context, doc extract.Document, jobRole string) (contract.Partial, error) {
	prompt := llm.BuildPrompt(doc, jobRole, phrasing)
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.settings.Model),
		MaxTokens: int64(c.settings.MaxTokens),
		System:    []sdk.TextBlockParam{{Text: prompt.System}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt.User)),
		},
		Temperature: sdk.Float(c.settings.Temperature),
	}

	start := time.Now()
	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return contract.Partial{}, llm.StatusError(Name, apiErr.StatusCode, err)
		}
		return contract.Partial{}, llm.TransportError(Name, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	telemetry.Debug("llm.response", map[string]any{
		"provider":      Name,
		"model":         c.settings.Model,
		"duration_ms":   time.Since(start).Milliseconds(),
		"input_tokens":  resp.Usage.InputTokens,
		"output_tokens": resp.Usage.OutputTokens,
		"stop_reason":   string(resp.StopReason),
	})
	return llm.Finish(Name, text.String(), c.settings)
}

var _ llm.Provider = (*Client)(nil)
