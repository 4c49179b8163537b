package config

import "fmt"

// Error describes an invalid or missing configuration value.
type Error struct {
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config error: %s %s", e.Field, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
