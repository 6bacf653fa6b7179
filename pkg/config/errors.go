package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDefaults means the default configuration file is absent; the application cannot start.
	ErrMissingDefaults = errors.New("default configuration not found")
	// ErrInvalidTimeFormat rejects daily times that are not 24-hour HH:MM.
	ErrInvalidTimeFormat = errors.New("time must use the 24-hour HH:MM format")
	// ErrInvalidInterval rejects intervals that are not a positive number of seconds.
	ErrInvalidInterval = errors.New("interval must be a positive whole number of seconds")
)

// MissingDefaultsError records which default file could not be found.
type MissingDefaultsError struct {
	Path string
}

func (e *MissingDefaultsError) Error() string {
	return fmt.Sprintf("default configuration file %q not found", e.Path)
}

func (e *MissingDefaultsError) Is(target error) bool {
	return target == ErrMissingDefaults
}

// ValidationError describes a rejected value at the input boundary.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
