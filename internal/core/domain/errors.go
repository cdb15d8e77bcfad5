// Package domain defines the core domain models for keyforge.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Codes have the form KF-<GROUP>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "KF-TOKN-4000")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true // Only check if it's a DomainError
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Configuration Errors (CONF)
// ============================================================================

var (
	// ErrConfigInvalid indicates the codec or loader configuration is invalid.
	ErrConfigInvalid = NewDomainError("KF-CONF-4000", "invalid configuration")

	// ErrSecretMissing indicates no usable secret material was configured.
	ErrSecretMissing = NewDomainError("KF-CONF-4001", "secret material not configured")

	// ErrSecretInvalid indicates secret material could not be decoded or is too short.
	ErrSecretInvalid = NewDomainError("KF-CONF-4002", "invalid secret material")

	// ErrConfigFile indicates the configuration file could not be read.
	ErrConfigFile = NewDomainError("KF-CONF-4003", "cannot read configuration file")
)

// ============================================================================
// Token Errors (TOKN)
// ============================================================================

var (
	// ErrTokenMalformed indicates the key is malformed or has been tampered with.
	ErrTokenMalformed = NewDomainError("KF-TOKN-4000", "malformed token")

	// ErrTokenExpired indicates the key is authentic but expired.
	ErrTokenExpired = NewDomainError("KF-TOKN-4011", "token expired")

	// ErrUnknownPermission indicates a permission name is not known.
	ErrUnknownPermission = NewDomainError("KF-TOKN-4001", "unknown permission")

	// ErrPermissionOutOfRange indicates a permission does not fit the bitmap.
	ErrPermissionOutOfRange = NewDomainError("KF-TOKN-4002", "permission out of range")

	// ErrExpiryOutOfRange indicates an expiry outside the encodable range.
	ErrExpiryOutOfRange = NewDomainError("KF-TOKN-4003", "expiry days out of range")

	// ErrUserIDInvalid indicates an empty or oversized user id.
	ErrUserIDInvalid = NewDomainError("KF-TOKN-4004", "invalid user id")
)

// ============================================================================
// Invite Errors (INVT)
// ============================================================================

var (
	// ErrInviteOutOfRange indicates the user id is outside the invite domain.
	ErrInviteOutOfRange = NewDomainError("KF-INVT-4000", "invite id out of range")

	// ErrInviteInvalidFormat indicates the invite code is malformed.
	ErrInviteInvalidFormat = NewDomainError("KF-INVT-4001", "invalid invite code")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternal indicates an unexpected internal failure.
	ErrInternal = NewDomainError("KF-SYS-5000", "internal error")

	// ErrClockOutOfRange indicates the system clock cannot be encoded.
	ErrClockOutOfRange = NewDomainError("KF-SYS-5001", "clock out of range")

	// ErrRandomSource indicates the random source failed.
	ErrRandomSource = NewDomainError("KF-SYS-5002", "random source failure")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("KF-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("KF-ARG-1002", "missing required argument")

	// ErrArgumentConflict indicates conflicting arguments.
	ErrArgumentConflict = NewDomainError("KF-ARG-1003", "argument conflict")
)
