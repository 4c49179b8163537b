// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Default values applied when the corresponding environment variable is unset.
const (
	DefaultProfilePath = "private/profile.json"
	DefaultApplyNumber = 1
	DefaultProvider    = "google"
	DefaultModel       = "gemini-3-flash-preview"
	DefaultProfileDir  = "Default"
	DefaultMaxSteps    = 100
	DefaultStepTimeout = 60 * time.Second
	DefaultRunDir      = "runs"
)

// Settings holds every value the apply run reads from the environment.
// The env tag names the variable each field is loaded from.
type Settings struct {
	// Private data
	ProfilePath string `env:"PROFILE_JSON_PATH" validate:"required"`
	ResumePath  string `env:"RESUME_PDF_PATH" validate:"required"`
	ApplyNumber int    `env:"APPLY_NUMBER" validate:"min=1"`

	// LLM
	Provider          string `env:"LLM_PROVIDER" validate:"required"`
	Model             string `env:"LLM_MODEL"`
	GoogleAPIKey      string `env:"GOOGLE_API_KEY"`
	OpenAIAPIKey      string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey   string `env:"ANTHROPIC_API_KEY"`
	BrowserUseAPIKey  string `env:"BROWSER_USE_API_KEY"`
	BrowserUseBaseURL string `env:"BROWSER_USE_BASE_URL" validate:"omitempty,url"`

	// Browser
	ChromeExecutablePath string `env:"CHROME_EXECUTABLE_PATH"`
	ChromeUserDataDir    string `env:"CHROME_USER_DATA_DIR"`
	ChromeProfileDir     string `env:"CHROME_PROFILE_DIR"`
	CDPURL               string `env:"CDP_URL" validate:"omitempty,url"`
	Headless             bool   `env:"HEADLESS"`

	// Agent
	MaxSteps    int           `env:"MAX_STEPS" validate:"min=1"`
	StepTimeout time.Duration `env:"STEP_TIMEOUT_SECONDS" validate:"min=1s"`
	RunDir      string        `env:"RUN_DIR" validate:"required"`
	UseVision   bool          `env:"USE_VISION"`

	// Persistence
	// Either a postgres:// URL or a key/value DSN; pgxpool reports malformed values.
	DatabaseURL string `env:"DATABASE_URL"`

	Verbose bool `env:"VERBOSE"`
}

// Load reads settings from the given lookup function (usually os.Getenv).
// Values are trimmed; unset or malformed values fall back to defaults.
func Load(getenv func(string) string) Settings {
	env := func(key, def string) string {
		if val := strings.TrimSpace(getenv(key)); val != "" {
			return val
		}
		return def
	}

	s := Settings{
		ProfilePath: ExpandHome(env("PROFILE_JSON_PATH", DefaultProfilePath)),
		ResumePath:  ExpandHome(env("RESUME_PDF_PATH", "")),
		ApplyNumber: max(1, EnvInt(getenv, "APPLY_NUMBER", DefaultApplyNumber)),

		Provider:          env("LLM_PROVIDER", DefaultProvider),
		Model:             env("LLM_MODEL", DefaultModel),
		GoogleAPIKey:      env("GOOGLE_API_KEY", env("GEMINI_API_KEY", "")),
		OpenAIAPIKey:      env("OPENAI_API_KEY", ""),
		AnthropicAPIKey:   env("ANTHROPIC_API_KEY", ""),
		BrowserUseAPIKey:  env("BROWSER_USE_API_KEY", ""),
		BrowserUseBaseURL: env("BROWSER_USE_BASE_URL", ""),

		ChromeExecutablePath: env("CHROME_EXECUTABLE_PATH", ""),
		ChromeUserDataDir:    env("CHROME_USER_DATA_DIR", ""),
		ChromeProfileDir:     env("CHROME_PROFILE_DIR", DefaultProfileDir),
		CDPURL:               env("CDP_URL", ""),
		Headless:             EnvBool(getenv, "HEADLESS", false),

		MaxSteps:    EnvInt(getenv, "MAX_STEPS", DefaultMaxSteps),
		StepTimeout: DefaultStepTimeout,
		RunDir:      env("RUN_DIR", DefaultRunDir),
		UseVision:   EnvBool(getenv, "USE_VISION", true),

		DatabaseURL: env("DATABASE_URL", ""),
		Verbose:     EnvBool(getenv, "VERBOSE", false),
	}

	if s.MaxSteps < 1 {
		s.MaxSteps = DefaultMaxSteps
	}
	if secs := EnvInt(getenv, "STEP_TIMEOUT_SECONDS", 0); secs > 0 {
		s.StepTimeout = time.Duration(secs) * time.Second
	}

	return s
}

// Validate checks field constraints and that the resume points to an existing PDF file.
func (s *Settings) Validate() error {
	if err := checkResume(s.ResumePath); err != nil {
		return err
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("env"); name != "" {
			return name
		}
		return field.Name
	})

	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return &Error{
				Field:   first.Field(),
				Message: fmt.Sprintf("failed %q constraint (value %v)", first.Tag(), redact(first.Field(), first.Value())),
			}
		}
		return fmt.Errorf("config error: %w", err)
	}

	return nil
}

// checkResume enforces that the resume path is an existing regular file with a .pdf suffix.
func checkResume(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return &Error{
			Field:   "RESUME_PDF_PATH",
			Message: "is required and must point to an existing PDF file",
			Cause:   err,
		}
	}
	return nil
}

// EnvInt parses an integer variable, returning def when unset or malformed.
func EnvInt(getenv func(string) string, key string, def int) int {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// EnvBool parses a boolean variable, returning def when unset or malformed.
func EnvBool(getenv func(string) string, key string, def bool) bool {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return b
}

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

func redact(field string, value any) any {
	if strings.HasSuffix(field, "API_KEY") || field == "DATABASE_URL" {
		return "[redacted]"
	}
	return value
}
