package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/learnloop/learnloop-api/internal/generation"
)

// ProviderName identifies this adapter in logs and errors.
const ProviderName = "gemini"

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// DefaultModel is used when the configuration does not name one. The
// adapter has a single model; the quality hint is ignored.
const DefaultModel = "gemini-2.0-flash"

// Fixed generation budget shared by all requests, matching the primary
// adapter so a fallback answer has the same size envelope.
const (
	maxOutputTokens = 800
	temperature     = 0.7
)

// Config holds the settings needed to construct a Client.
type Config struct {
	// APIKey authenticates requests as a query parameter.
	APIKey string

	// Model overrides DefaultModel.
	Model string

	// BaseURL overrides the production endpoint; used by tests to point
	// the client at a local fake server. Empty means DefaultBaseURL.
	BaseURL string

	// Timeout bounds a single request. Zero means 30 seconds.
	Timeout time.Duration
}

// Client implements generation.Provider against the Gemini generateContent
// HTTP API. It performs network I/O only and holds no mutable state.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient creates a new Gemini adapter with the provided configuration.
// If logger is nil, a default logger will be used.
func NewClient(logger *slog.Logger, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if logger == nil {
		logger = slog.Default()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		logger:     logger.With(slog.String("component", "gemini_client")),
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      model,
	}, nil
}

// Ensure Client implements the generation.Provider interface
var _ generation.Provider = (*Client)(nil)

// Name implements generation.Provider.Name.
func (c *Client) Name() string {
	return ProviderName
}

// generateRequest is the generateContent request body.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// generateResponse is the subset of the generateContent response we consume.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Complete implements generation.Provider.Complete. The quality hint is
// ignored: this adapter always uses its single configured model. Any non-2xx
// response, or a response with no extractable text, is a *ProviderError.
func (c *Client) Complete(ctx context.Context, prompt string, _ generation.QualityHint) (string, error) {
	if prompt == "" {
		return "", generation.ErrEmptyPrompt
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.DebugContext(ctx, "calling generateContent",
		"model", c.model,
		"prompt_length", len(prompt))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &generation.ProviderError{Provider: ProviderName, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.WarnContext(ctx, "failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a bounded amount of the error body for the logs only.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.WarnContext(ctx, "generateContent returned non-2xx status",
			"status", resp.StatusCode,
			"body", string(detail))
		return "", &generation.ProviderError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &generation.ProviderError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}

	if len(parsed.Candidates) == 0 {
		return "", &generation.ProviderError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			Err:        errors.New("response contained no candidates"),
		}
	}

	text := ""
	for _, p := range parsed.Candidates[0].Content.Parts {
		text += p.Text
	}

	if text == "" {
		return "", &generation.ProviderError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			Err:        errors.New("response contained no text"),
		}
	}

	return text, nil
}
