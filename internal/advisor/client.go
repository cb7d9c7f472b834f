package advisor

import (
	"context"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/fitlogapp/fitlog/internal/errors"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 500
)

// Config tunes the remote AI calls. An empty APIKey disables the remote
// path entirely; the advisor then answers from its local fallbacks.
type Config struct {
	APIKey string
	// BaseURL overrides the API endpoint, used by tests.
	BaseURL string
	// Model defaults to gpt-4o-mini when empty.
	Model string
	// Temperature defaults to 0.7 when zero.
	Temperature float64
	// MaxTokens bounds the completion size, defaults to 500 when zero.
	MaxTokens int64
}

// llmClient wraps the OpenAI client with the fixed sampling parameters both
// advisors share.
type llmClient struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
	logger      *slog.Logger
}

// newLLMClient creates the shared OpenAI client. Retries are disabled so
// every advisor invocation performs exactly one transport attempt; callers
// are expected to debounce re-invocations instead.
func newLLMClient(cfg Config, logger *slog.Logger) *llmClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	return &llmClient{
		client:      openai.NewClient(opts...),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// complete sends a single chat completion request and returns the first
// choice's content.
func (c *llmClient) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	c.logger.LogAttrs(ctx, slog.LevelDebug, "sending chat completion request",
		slog.String("model", c.model),
		slog.Int("message_count", len(messages)))

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{ //nolint:exhaustruct // only need to set a few fields.
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}

	c.logger.LogAttrs(ctx, slog.LevelDebug, "received chat completion response",
		slog.Int64("completion_tokens", completion.Usage.CompletionTokens),
		slog.Int64("prompt_tokens", completion.Usage.PromptTokens))

	return completion.Choices[0].Message.Content, nil
}
