package config

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is wrapped by RequireCredentials failures.
var ErrMissingCredential = errors.New("missing credential")

// ValidationError is a configuration value that cannot be used.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: field %q with value %v: %s", e.Field, e.Value, e.Reason)
}

// ViperError is a failure reported by viper while reading or binding configuration.
type ViperError struct {
	Operation string
	Err       error
}

func (e *ViperError) Error() string {
	return fmt.Sprintf("viper error during %s: %v", e.Operation, e.Err)
}

func (e *ViperError) Unwrap() error {
	return e.Err
}
