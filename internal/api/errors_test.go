package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/learnloop/learnloop-api/internal/service/auth"
	"github.com/learnloop/learnloop-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"generic not found", store.ErrNotFound, http.StatusNotFound},
		{"roadmap not found", store.ErrRoadmapNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", store.ErrRoadmapNotFound), http.StatusNotFound},
		{"duplicate", store.ErrDuplicate, http.StatusConflict},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Roadmap not found", GetSafeErrorMessage(store.ErrRoadmapNotFound))
	assert.Equal(t, "Resource not found", GetSafeErrorMessage(store.ErrNotFound))
	assert.Equal(t, "Invalid token", GetSafeErrorMessage(auth.ErrExpiredToken))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(errors.New("pq: secret detail")))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}
