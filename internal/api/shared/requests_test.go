package shared

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roadmapPayload struct {
	Role   string `json:"role"`
	NodeID string `json:"node_id"`
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(
			http.MethodPost,
			"/api/roadmaps",
			bytes.NewBufferString(`{"role": "data engineer", "node_id": "sql"}`),
		)

		var payload roadmapPayload
		require.NoError(t, DecodeJSON(req, &payload))
		assert.Equal(t, "data engineer", payload.Role)
		assert.Equal(t, "sql", payload.NodeID)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(
			http.MethodPost,
			"/api/roadmaps",
			bytes.NewBufferString(`{"role": "data engineer",}`),
		)

		var payload roadmapPayload
		err := DecodeJSON(req, &payload)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid character")
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/roadmaps", bytes.NewBufferString(""))

		var payload roadmapPayload
		err := DecodeJSON(req, &payload)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EOF")
	})
}

// brokenBody fails every read, standing in for a client that went away
// mid-request.
type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestDecodeJSONReadFailure(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/roadmaps", brokenBody{})

	var payload roadmapPayload
	err := DecodeJSON(req, &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected EOF")
}

// selfValidatingRequest exercises the optional Validate hook.
type selfValidatingRequest struct {
	Role string
}

func (r *selfValidatingRequest) Validate() error {
	if r.Role == "" {
		return &validator.ValidationErrors{}
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	t.Run("passing validator", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(&selfValidatingRequest{Role: "data engineer"}))
	})

	t.Run("failing validator", func(t *testing.T) {
		assert.Error(t, ValidateRequest(&selfValidatingRequest{}))
	})

	t.Run("request without a validator", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(&roadmapPayload{Role: "data engineer"}))
	})
}
