// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Typed errors below unwrap to one of these so callers can
// use errors.Is without caring about the detail type.
var (
	ErrNothingToCommit    = errors.New("no changes to commit")
	ErrPendingChanges     = errors.New("uncommitted changes pending")
	ErrAuthentication     = errors.New("authentication failed")
	ErrTransport          = errors.New("transport failure")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrValidationFailed   = errors.New("validation failed")
	ErrNotFound           = errors.New("resource not found")
	ErrUnsupportedModel   = errors.New("unsupported switch model")
)

// InvariantError reports a mutation that was refused because applying it
// would break a model invariant. Nothing is queued when this is returned.
type InvariantError struct {
	Operation string
	Resource  string
	Rule      string
	Details   string
}

func (e *InvariantError) Error() string {
	msg := fmt.Sprintf("cannot %s %s: %s", e.Operation, e.Resource, e.Rule)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

// NewInvariantError creates a new invariant error
func NewInvariantError(operation, resource, rule, details string) *InvariantError {
	return &InvariantError{
		Operation: operation,
		Resource:  resource,
		Rule:      rule,
		Details:   details,
	}
}

// AuthError is returned when the switch rejects a login, or refuses a
// second concurrent session.
type AuthError struct {
	Switch string
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login to %s failed: %s", e.Switch, e.Reason)
}

func (e *AuthError) Unwrap() error {
	return ErrAuthentication
}

// NewAuthError creates an authentication error
func NewAuthError(sw, reason string) *AuthError {
	return &AuthError{Switch: sw, Reason: reason}
}

// TransportError wraps a network level failure talking to a switch.
// It matches both ErrTransport and the underlying cause.
type TransportError struct {
	Switch string
	Op     string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Switch, e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// NewTransportError wraps err as a transport error. A nil err yields nil.
func NewTransportError(sw, op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Switch: sw, Op: op, Err: err}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
