// Package apikey provides structured, tamper-evident API keys.
package apikey

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every *ConfigError.
	ErrInvalidConfig = errors.New("apikey: invalid config")

	// ErrUnknownPermission is returned for a permission name with no bit.
	ErrUnknownPermission = errors.New("apikey: unknown permission")

	// ErrPermissionOutOfRange is returned when a permission bit does not fit
	// in the configured bitmap width.
	ErrPermissionOutOfRange = errors.New("apikey: permission out of range")

	// ErrExpiryOutOfRange is returned when expiry days are negative or do not
	// fit in three symbols.
	ErrExpiryOutOfRange = errors.New("apikey: expiry days out of range")

	// ErrTimestampOverflow is returned when the current time no longer fits
	// the configured timestamp precision.
	ErrTimestampOverflow = errors.New("apikey: timestamp overflows field")

	// ErrRandomSource wraps failures of the random source.
	ErrRandomSource = errors.New("apikey: random source failure")
)

// ConfigError describes a rejected construction parameter.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("apikey: invalid config: %s %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidConfig.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
