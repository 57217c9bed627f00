package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/learnloop/learnloop-api/internal/generation"
)

// ProviderName identifies this adapter in logs and errors.
const ProviderName = "openai"

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// Fixed generation budget shared by all requests.
const (
	maxTokens   = 800
	temperature = 0.7
)

// Quality hint to model mapping.
var models = map[generation.QualityHint]string{
	generation.QualityFast:     "gpt-4o-mini",
	generation.QualityBalanced: "gpt-4o",
	generation.QualitySmart:    "gpt-4.1",
}

// Config holds the settings needed to construct a Client.
type Config struct {
	// APIKey authenticates requests via a bearer token header.
	APIKey string

	// BaseURL overrides the production endpoint; used by tests to point
	// the client at a local fake server. Empty means DefaultBaseURL.
	BaseURL string

	// Timeout bounds a single request. Zero means 30 seconds.
	Timeout time.Duration
}

// Client implements generation.Provider against the OpenAI chat-completions
// API. It performs network I/O only and holds no mutable state.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new OpenAI adapter with the provided configuration.
// If logger is nil, a default logger will be used.
func NewClient(logger *slog.Logger, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}

	if logger == nil {
		logger = slog.Default()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		logger:     logger.With(slog.String("component", "openai_client")),
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
	}, nil
}

// Ensure Client implements the generation.Provider interface
var _ generation.Provider = (*Client)(nil)

// Name implements generation.Provider.Name.
func (c *Client) Name() string {
	return ProviderName
}

// chatRequest is the chat-completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the chat-completions response we consume.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements generation.Provider.Complete. It maps the quality hint
// to a model, posts the chat-completion request, and returns the assistant
// text of the first choice. Any non-2xx response is a *ProviderError.
func (c *Client) Complete(ctx context.Context, prompt string, hint generation.QualityHint) (string, error) {
	if prompt == "" {
		return "", generation.ErrEmptyPrompt
	}

	model, ok := models[hint]
	if !ok {
		model = models[generation.QualityFast]
	}

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request body: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.DebugContext(ctx, "calling chat completions",
		"model", model,
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
		c.logger.WarnContext(ctx, "chat completions returned non-2xx status",
			"status", resp.StatusCode,
			"body", string(detail))
		return "", &generation.ProviderError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &generation.ProviderError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}

	if len(parsed.Choices) == 0 {
		return "", &generation.ProviderError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			Err:        errors.New("response contained no choices"),
		}
	}

	return parsed.Choices[0].Message.Content, nil
}
