package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("listing not found: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("not owner: %w", ErrForbidden), http.StatusForbidden},
		{"bad request", ErrBadRequest, http.StatusBadRequest},
		{"validation", NewValidationError("minPrice", "must be a number"), http.StatusBadRequest},
		{"conflict", fmt.Errorf("already favorited: %w", ErrConflict), http.StatusConflict},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"app error code wins", New(http.StatusTeapot, "teapot", ErrNotFound), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatus(tc.err))
		})
	}
}

func TestValidationErrorMessageIsStable(t *testing.T) {
	err := NewValidationError("price", "must be >= 0").Add("images", "at least one image is required")

	assert.True(t, err.HasErrors())
	assert.Equal(t, "validation failed: images: at least one image is required; price: must be >= 0", err.Error())
	assert.ErrorIs(t, err, ErrInvalidInput)
}
