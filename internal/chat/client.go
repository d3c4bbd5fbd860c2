package chat

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ayush/content-coach/internal/apperr"
	"github.com/ayush/content-coach/internal/metrics"
)

const DefaultModel = openai.GPT3Dot5Turbo

// chatAPI is the subset of the go-openai client used here.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ClientConfig configures a completion Client. An empty BaseURL uses the
// public OpenAI endpoint; a zero Timeout leaves calls bounded only by the
// caller's context.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client sends single-turn chat completions to an OpenAI-compatible API.
type Client struct {
	api     chatAPI
	model   string
	timeout time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{api: openai.NewClientWithConfig(oc), model: model, timeout: cfg.Timeout}
}

// Model is the model name sent with every request.
func (c *Client) Model() string { return c.model }

// Complete sends the system prompt and user message and returns the text of
// the first choice. It makes exactly one attempt.
func (c *Client) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	metrics.CompletionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CompletionsTotal.WithLabelValues("upstream_error").Inc()
		return "", apperr.Wrap(apperr.UpstreamError, "completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		metrics.CompletionsTotal.WithLabelValues("empty_response").Inc()
		return "", apperr.ErrEmptyResponse
	}
	metrics.CompletionsTotal.WithLabelValues("ok").Inc()
	return resp.Choices[0].Message.Content, nil
}
