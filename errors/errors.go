// Package errors provides error handling for jobtrack.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints
//
// Usage:
//
//	// Wrap with context
//	if err := client.DeleteJob(ctx, id); err != nil {
//	    return errors.Wrapf(err, "delete job %s", id)
//	}
//
//	// Add hints for users
//	return errors.WithHint(errors.ErrNotAuthenticated, "run 'jobtrack login' first")
//
//	// Check errors
//	if errors.Is(err, errors.ErrUnauthorized) {
//	    // token rejected by the server
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is           = crdb.Is
	IsAny        = crdb.IsAny
	As           = crdb.As
	Unwrap       = crdb.Unwrap
	UnwrapAll    = crdb.UnwrapAll
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Mark attaches a sentinel to err so errors.Is(err, sentinel) holds
// while err keeps its own message.
var Mark = crdb.Mark

// Common sentinel errors.
// Use these with errors.Is() and wrap them with errors.Wrap() to add context.
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or rejected by validation
	ErrInvalidRequest = New("invalid request")

	// ErrUnauthorized indicates the server rejected the credentials or token
	ErrUnauthorized = New("unauthorized")

	// ErrServiceUnavailable indicates the job API failed on its side
	ErrServiceUnavailable = New("service unavailable")

	// ErrNotAuthenticated indicates no session token is stored locally
	ErrNotAuthenticated = New("not authenticated")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// IsUnauthorizedError reports whether the server or the local session
// refused the operation for lack of valid credentials.
func IsUnauthorizedError(err error) bool {
	return err != nil && IsAny(err, ErrUnauthorized, ErrNotAuthenticated)
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalidRequest)
}
