package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"unauthorized", NewUnauthorized("nope"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"forbidden", NewForbidden("nope", nil), "FORBIDDEN", http.StatusForbidden},
		{"invalid credentials", NewInvalidCredentials(), "INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"not found", NewNotFound("post", nil), "NOT_FOUND", http.StatusNotFound},
		{"validation", NewValidationError("bad", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"conflict", NewConflict("dup", nil), "CONFLICT", http.StatusConflict},
		{"rate limited", NewRateLimited("slow down"), "RATE_LIMITED", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.wantCode, de.Code)
			assert.Equal(t, tt.wantStatus, de.HTTPStatus)
		})
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	de := ToDomainError(errors.New("db on fire"))
	require.NotNil(t, de)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	// The underlying cause never reaches the response message.
	assert.Equal(t, "internal server error", de.Message)
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	de := ToDomainError(fmt.Errorf("load post: %w", pgx.ErrNoRows))
	require.NotNil(t, de)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestToDomainErrorPreservesWrappedDomainError(t *testing.T) {
	inner := NewForbidden("missing permission posts:delete", map[string]any{"role": "Editor"})
	de := ToDomainError(fmt.Errorf("gate: %w", inner))
	require.NotNil(t, de)
	assert.Equal(t, "FORBIDDEN", de.Code)
	assert.Equal(t, "Editor", de.Details["role"])
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}
