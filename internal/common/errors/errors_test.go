package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name           string
		err            *GenerationError
		expectedKind   Kind
		shouldRollback bool
		retryable      bool
	}{
		{
			name:           "config error keeps state intact",
			err:            NewConfigError("API key missing", "set PROVIDER_API_KEY"),
			expectedKind:   KindConfig,
			shouldRollback: false,
			retryable:      false,
		},
		{
			name:           "network error",
			err:            NewNetworkError("connection refused", 1, errors.New("dial tcp: refused")),
			expectedKind:   KindNetwork,
			shouldRollback: true,
			retryable:      true,
		},
		{
			name:           "validation error",
			err:            NewValidationError("schema violation", "overview.title: required", 2),
			expectedKind:   KindValidation,
			shouldRollback: true,
			retryable:      true,
		},
		{
			name:           "unexpected error",
			err:            NewUnexpectedError("envelope not JSON", 1, errors.New("unexpected end of input")),
			expectedKind:   KindUnexpected,
			shouldRollback: true,
			retryable:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKind, tt.err.Kind)
			assert.Equal(t, tt.shouldRollback, tt.err.ShouldRollback())
			assert.Equal(t, tt.retryable, tt.err.Retryable())
			assert.False(t, tt.err.Timestamp.IsZero())
		})
	}
}

func TestErrorString(t *testing.T) {
	err := NewValidationError("schema violation", "", 2)
	assert.Contains(t, err.Error(), "validation")
	assert.Contains(t, err.Error(), "attempt 2")
	assert.Contains(t, err.Error(), "schema violation")

	cfg := NewConfigError("missing key", "")
	assert.NotContains(t, cfg.Error(), "attempt")
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewNetworkError("provider request failed", 1, cause)

	assert.ErrorIs(t, err, cause)
}

func TestAsGenerationError(t *testing.T) {
	genErr := NewNetworkError("boom", 1, nil)
	wrapped := fmt.Errorf("generation failed: %w", genErr)

	got, ok := AsGenerationError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindNetwork, got.Kind)

	_, ok = AsGenerationError(errors.New("plain"))
	assert.False(t, ok)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(NewValidationError("bad", "", 1)))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("foreign")))
}
