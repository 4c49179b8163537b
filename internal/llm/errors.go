package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedProvider is returned for an unknown LLM_PROVIDER value
	ErrUnsupportedProvider = errors.New("Unsupported LLM_PROVIDER")
	// ErrMissingAPIKey is returned when the selected provider has no credentials
	ErrMissingAPIKey = errors.New("missing LLM credentials")
	// ErrEmptyResponse is returned when the provider answers without text
	ErrEmptyResponse = errors.New("empty LLM response")
)

// APICallError wraps a failed provider request
type APICallError struct {
	Provider Provider
	Model    string
	Cause    error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("%s request (model %s) failed: %v", e.Provider, e.Model, e.Cause)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
