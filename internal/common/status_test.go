package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusError_UnwrapsToKind(t *testing.T) {
	err := fmt.Errorf("verify: %w", &StatusError{Kind: ErrorBadRequest, Status: "invalid_code"})

	assert.True(t, errors.Is(err, ErrorBadRequest))
	assert.False(t, errors.Is(err, ErrorUnauthorized))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "invalid_code", se.Status)
}

func TestStatusError_ErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  *StatusError
		want string
	}{
		{"message wins", &StatusError{Kind: ErrorConflict, Status: "conflict", Message: "User already exists"}, "User already exists"},
		{"status fallback", &StatusError{Kind: ErrorBadRequest, Status: "expired_code"}, "expired_code"},
		{"kind fallback", &StatusError{Kind: ErrorUnauthorized}, "unauthorized"},
		{"empty", &StatusError{}, "unknown error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestNewStatusError(t *testing.T) {
	err := NewStatusError(ErrorInternal, "Error whilst logging out user")
	assert.ErrorIs(t, err, ErrorInternal)
	assert.Equal(t, "Error whilst logging out user", err.Error())
}
