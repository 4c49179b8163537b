// Package llm provides the provider-neutral LLM client used by the apply agent.
package llm

import (
	"fmt"
	"strings"

	"github.com/jonathan/easy-apply-agent/internal/config"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGoogle is Google Gemini
	ProviderGoogle Provider = "google"
	// ProviderOpenAI is OpenAI
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is Anthropic Claude, reached through its OpenAI-compatible endpoint
	ProviderAnthropic Provider = "anthropic"
	// ProviderBrowserUse is the Browser Use hosted model, reached through an OpenAI-compatible endpoint
	ProviderBrowserUse Provider = "browser_use"
)

const (
	// AnthropicBaseURL is Anthropic's OpenAI SDK compatibility endpoint.
	AnthropicBaseURL = "https://api.anthropic.com/v1/"
	// BrowserUseModel is used for the browser_use provider, which ignores LLM_MODEL.
	BrowserUseModel = "bu-latest"
)

// NormalizeProvider maps the accepted LLM_PROVIDER spellings to a Provider.
// Matching is case-insensitive and ignores surrounding whitespace.
func NormalizeProvider(raw string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "browser_use", "browseruse", "chatbrowseruse":
		return ProviderBrowserUse, nil
	case "google", "gemini":
		return ProviderGoogle, nil
	case "openai":
		return ProviderOpenAI, nil
	case "anthropic":
		return ProviderAnthropic, nil
	default:
		return "", fmt.Errorf("%w '%s'", ErrUnsupportedProvider, raw)
	}
}

// Config holds the resolved provider, model and credentials
type Config struct {
	Provider Provider
	Model    string
	APIKey   string
	BaseURL  string // empty means the provider SDK default
}

// NewConfig resolves the LLM configuration from settings.
// The API key for the selected provider must be present.
func NewConfig(s config.Settings) (*Config, error) {
	provider, err := NormalizeProvider(s.Provider)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Provider: provider, Model: s.Model}
	var keyName string

	switch provider {
	case ProviderGoogle:
		cfg.APIKey, keyName = s.GoogleAPIKey, "GOOGLE_API_KEY"
	case ProviderOpenAI:
		cfg.APIKey, keyName = s.OpenAIAPIKey, "OPENAI_API_KEY"
	case ProviderAnthropic:
		cfg.APIKey, keyName = s.AnthropicAPIKey, "ANTHROPIC_API_KEY"
		cfg.BaseURL = AnthropicBaseURL
	case ProviderBrowserUse:
		cfg.APIKey, keyName = s.BrowserUseAPIKey, "BROWSER_USE_API_KEY"
		cfg.BaseURL = s.BrowserUseBaseURL
		cfg.Model = BrowserUseModel
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("%w: BROWSER_USE_BASE_URL is required for provider %s", ErrMissingAPIKey, provider)
		}
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %s is required for provider %s", ErrMissingAPIKey, keyName, provider)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("no model configured for provider %s", provider)
	}
	return cfg, nil
}
