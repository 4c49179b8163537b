package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client for OpenAI Chat Completions and compatible endpoints
// (Anthropic, Browser Use).
type OpenAIClient struct {
	client openai.Client
	config *Config
}

// NewOpenAIClient creates a client against the configured base URL
func NewOpenAIClient(cfg *Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrMissingAPIKey)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		config: cfg,
	}, nil
}

// GenerateJSON sends the system and user messages and returns the first choice's content
func (c *OpenAIClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.config.Model),
		Messages:    buildMessages(req),
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		return "", &APICallError{Provider: c.config.Provider, Model: c.config.Model, Cause: err}
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion choices", ErrEmptyResponse)
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty completion content", ErrEmptyResponse)
	}
	return CleanJSONBlock(content), nil
}

// Model returns the configured model name
func (c *OpenAIClient) Model() string {
	return c.config.Model
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (c *OpenAIClient) Close() error {
	return nil
}

func buildMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}

	if len(req.Image) == 0 {
		return append(messages, openai.UserMessage(req.Prompt))
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(req.Prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: imageDataURL(req.Image),
		}),
	}
	return append(messages, openai.UserMessage(parts))
}

func imageDataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
