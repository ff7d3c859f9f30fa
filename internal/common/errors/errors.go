// Package errors provides the typed error taxonomy of the generation
// pipeline. Every failure that escapes the pipeline is a *GenerationError
// carrying a kind, the attempt it was raised on, and an optional cause.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a generation failure.
type Kind string

const (
	// KindConfig means the pipeline could not even attempt a call: missing
	// credentials or broken setup. Never retried, no rollback needed since
	// no external state was touched.
	KindConfig Kind = "config"

	// KindNetwork covers transport failures and non-success HTTP statuses.
	KindNetwork Kind = "network"

	// KindValidation means a response arrived but its payload was not valid
	// JSON or did not conform to the schema. Retried, since a re-prompt may
	// yield conformant output.
	KindValidation Kind = "validation"

	// KindUnexpected is the safety net: unparsable provider envelopes and
	// programming-level failures. Retried, but likely to repeat.
	KindUnexpected Kind = "unexpected"
)

// GenerationError is the structured error surfaced by the generation client
// and pipeline facade.
type GenerationError struct {
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Attempt   int       `json:"attempt,omitempty"` // 0 when raised outside the retry loop
	Timestamp time.Time `json:"timestamp"`
	Cause     error     `json:"-"`
}

func (e *GenerationError) Error() string {
	if e.Attempt > 0 {
		return fmt.Sprintf("GenerationError[%s] attempt %d: %s", e.Kind, e.Attempt, e.Message)
	}
	return fmt.Sprintf("GenerationError[%s]: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// ShouldRollback reports whether the caller should undo speculative state it
// set before invoking the pipeline. Config errors are raised before any
// attempt, so nothing external can have happened.
func (e *GenerationError) ShouldRollback() bool {
	return e.Kind != KindConfig
}

// Retryable reports whether the retry loop may attempt again on this kind.
func (e *GenerationError) Retryable() bool {
	return e.Kind != KindConfig
}

// NewConfigError creates a non-retryable setup error.
func NewConfigError(message, details string) *GenerationError {
	return &GenerationError{
		Kind:      KindConfig,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewNetworkError creates a transport-level error for the given attempt.
func NewNetworkError(message string, attempt int, cause error) *GenerationError {
	e := &GenerationError{
		Kind:      KindNetwork,
		Message:   message,
		Attempt:   attempt,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewValidationError creates a schema or JSON-conformance error. Details
// carries the joined validator error paths.
func NewValidationError(message, details string, attempt int) *GenerationError {
	return &GenerationError{
		Kind:      KindValidation,
		Message:   message,
		Details:   details,
		Attempt:   attempt,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnexpectedError wraps an unclassified failure.
func NewUnexpectedError(message string, attempt int, cause error) *GenerationError {
	e := &GenerationError{
		Kind:      KindUnexpected,
		Message:   message,
		Attempt:   attempt,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// AsGenerationError extracts a *GenerationError from an error chain.
func AsGenerationError(err error) (*GenerationError, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindUnexpected for foreign errors.
func KindOf(err error) Kind {
	if genErr, ok := AsGenerationError(err); ok {
		return genErr.Kind
	}
	return KindUnexpected
}
