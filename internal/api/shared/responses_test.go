package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogs swaps the default logger for one writing to the returned
// builder, restoring the original when the test finishes.
func captureLogs(t *testing.T) *strings.Builder {
	t.Helper()

	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	old := slog.Default()
	slog.SetDefault(logger)
	t.Cleanup(func() { slog.SetDefault(old) })

	return &buf
}

func TestRespondWithJSON(t *testing.T) {
	t.Run("document payload", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/roadmaps", nil)
		w := httptest.NewRecorder()

		RespondWithJSON(w, req, http.StatusOK, map[string]interface{}{
			"role":  "data engineer",
			"nodes": 12,
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "data engineer", body["role"])
		assert.Equal(t, float64(12), body["nodes"])
	})

	t.Run("empty object", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/roadmaps", nil)
		w := httptest.NewRecorder()

		RespondWithJSON(w, req, http.StatusOK, map[string]interface{}{})

		assert.Equal(t, "{}\n", w.Body.String())
	})

	t.Run("nil payload", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/roadmaps", nil)
		w := httptest.NewRecorder()

		RespondWithJSON(w, req, http.StatusOK, nil)

		assert.Equal(t, "null\n", w.Body.String())
	})
}

// cyclic cannot be encoded as JSON.
type cyclic struct {
	Self *cyclic
}

func TestRespondWithJSONEncodingFailure(t *testing.T) {
	logBuf := captureLogs(t)

	req := httptest.NewRequest(http.MethodGet, "/api/roadmaps", nil)
	w := httptest.NewRecorder()

	payload := &cyclic{}
	payload.Self = payload

	RespondWithJSON(w, req, http.StatusOK, payload)

	// Headers are already written by the time encoding fails
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, logBuf.String(), "failed to encode JSON response")
}

func TestRespondWithError(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, "trace-roadmap-404")
	req := httptest.NewRequest(http.MethodGet, "/api/roadmaps/unknown", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusNotFound, "Roadmap not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Roadmap not found", body.Error)
	assert.Equal(t, "trace-roadmap-404", body.TraceID)
}

func TestRespondWithErrorWithoutTraceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/roadmaps", nil)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusUnauthorized, "Authentication required")

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Authentication required", body.Error)
	assert.Empty(t, body.TraceID)
}

func TestRespondWithErrorAndLog(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		message   string
		err       error
		wantLevel string
		elevated  bool
	}{
		{
			name:      "server error logs at ERROR",
			status:    http.StatusInternalServerError,
			message:   "An unexpected error occurred",
			err:       errors.New("roadmap upsert failed"),
			wantLevel: "ERROR",
		},
		{
			name:      "client error logs at DEBUG",
			status:    http.StatusBadRequest,
			message:   "Role is required",
			err:       errors.New("validation failed on field Role"),
			wantLevel: "DEBUG",
		},
		{
			name:      "elevated client error logs at WARN",
			status:    http.StatusBadRequest,
			message:   "Progress node rejected",
			err:       errors.New("node id not present in roadmap"),
			wantLevel: "WARN",
			elevated:  true,
		},
		{
			name:      "throttled request logs at WARN",
			status:    http.StatusTooManyRequests,
			message:   "Too many generation requests",
			err:       errors.New("request budget exhausted"),
			wantLevel: "WARN",
		},
		{
			name:      "redirect logs at DEBUG",
			status:    http.StatusMovedPermanently,
			message:   "Moved permanently",
			err:       errors.New("legacy route"),
			wantLevel: "DEBUG",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logBuf := captureLogs(t)

			ctx := context.WithValue(context.Background(), TraceIDKey, "trace-generation-1")
			req := httptest.NewRequest(http.MethodPost, "/api/roadmaps", nil).WithContext(ctx)
			w := httptest.NewRecorder()

			if tc.elevated {
				RespondWithErrorAndLog(w, req, tc.status, tc.message, tc.err, WithElevatedLogLevel())
			} else {
				RespondWithErrorAndLog(w, req, tc.status, tc.message, tc.err)
			}

			assert.Equal(t, tc.status, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.message, body.Error)
			assert.Equal(t, "trace-generation-1", body.TraceID)

			logOutput := logBuf.String()
			assert.Contains(t, logOutput, tc.wantLevel)
			assert.Contains(t, logOutput, tc.message)
			assert.Contains(t, logOutput, "trace_id=trace-generation-1")

			// Raw error details are redacted; only the error type survives
			assert.Contains(t, logOutput, "error_type=")
		})
	}
}

func TestWithElevatedLogLevel(t *testing.T) {
	opts := responseOptions{}
	WithElevatedLogLevel()(&opts)
	assert.True(t, opts.elevateLogLevel)
}
