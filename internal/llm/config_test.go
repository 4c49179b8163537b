package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/easy-apply-agent/internal/config"
)

func TestNormalizeProvider(t *testing.T) {
	tests := []struct {
		input    string
		expected Provider
	}{
		{"google", ProviderGoogle},
		{"Gemini", ProviderGoogle},
		{"  GOOGLE  ", ProviderGoogle},
		{"openai", ProviderOpenAI},
		{"OpenAI", ProviderOpenAI},
		{"anthropic", ProviderAnthropic},
		{"browser_use", ProviderBrowserUse},
		{"BrowserUse", ProviderBrowserUse},
		{"ChatBrowserUse", ProviderBrowserUse},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeProvider(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeProvider_Unsupported(t *testing.T) {
	_, err := NormalizeProvider("mistral")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedProvider))
	assert.Equal(t, "Unsupported LLM_PROVIDER 'mistral'", err.Error())
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings config.Settings
		expected Config
	}{
		{
			name:     "google",
			settings: config.Settings{Provider: "gemini", Model: "gemini-3-flash-preview", GoogleAPIKey: "g-key"},
			expected: Config{Provider: ProviderGoogle, Model: "gemini-3-flash-preview", APIKey: "g-key"},
		},
		{
			name:     "openai",
			settings: config.Settings{Provider: "openai", Model: "gpt-4.1", OpenAIAPIKey: "o-key"},
			expected: Config{Provider: ProviderOpenAI, Model: "gpt-4.1", APIKey: "o-key"},
		},
		{
			name:     "anthropic uses compatibility endpoint",
			settings: config.Settings{Provider: "anthropic", Model: "claude-sonnet-4-5", AnthropicAPIKey: "a-key"},
			expected: Config{Provider: ProviderAnthropic, Model: "claude-sonnet-4-5", APIKey: "a-key", BaseURL: AnthropicBaseURL},
		},
		{
			name: "browser use ignores model",
			settings: config.Settings{
				Provider: "browser_use", Model: "gemini-3-flash-preview",
				BrowserUseAPIKey: "b-key", BrowserUseBaseURL: "https://llm.example.com/v1",
			},
			expected: Config{Provider: ProviderBrowserUse, Model: BrowserUseModel, APIKey: "b-key", BaseURL: "https://llm.example.com/v1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(tt.settings)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, *cfg)
		})
	}
}

func TestNewConfig_MissingKey(t *testing.T) {
	tests := []struct {
		name     string
		settings config.Settings
		mentions string
	}{
		{"google", config.Settings{Provider: "google", Model: "m", OpenAIAPIKey: "wrong"}, "GOOGLE_API_KEY"},
		{"openai", config.Settings{Provider: "openai", Model: "m"}, "OPENAI_API_KEY"},
		{"anthropic", config.Settings{Provider: "anthropic", Model: "m"}, "ANTHROPIC_API_KEY"},
		{"browser use key", config.Settings{Provider: "browser_use", BrowserUseBaseURL: "https://x.test"}, "BROWSER_USE_API_KEY"},
		{"browser use url", config.Settings{Provider: "browser_use", BrowserUseAPIKey: "k"}, "BROWSER_USE_BASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.settings)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingAPIKey))
			assert.Contains(t, err.Error(), tt.mentions)
		})
	}
}

func TestNewConfig_UnsupportedProvider(t *testing.T) {
	_, err := NewConfig(config.Settings{Provider: "cohere", Model: "m"})
	assert.True(t, errors.Is(err, ErrUnsupportedProvider))
}

func TestNewClient_NilConfig(t *testing.T) {
	_, err := NewClient(t.Context(), nil)
	assert.Error(t, err)
}
