package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrNoProviderAvailable is returned when every configured provider has
	// failed for a request, or when no provider is configured at all.
	ErrNoProviderAvailable = errors.New("no language model provider available")

	// ErrMalformedOutput is returned when a provider responded but the text
	// did not contain parseable JSON of the expected shape. This is a
	// permanent failure for the request; it is never retried.
	ErrMalformedOutput = errors.New("malformed language model output")

	// ErrEmptyPrompt is returned when a completion is requested with an
	// empty prompt.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrInvalidConfig is returned when a generation component is
	// constructed with invalid configuration.
	ErrInvalidConfig = errors.New("invalid generation configuration")
)

// ProviderError describes a transport- or HTTP-level failure from a single
// provider. The orchestrator recovers from it locally by falling through to
// the next provider.
type ProviderError struct {
	// Provider is the name of the failing provider, e.g. "openai" or "gemini".
	Provider string

	// StatusCode is the HTTP status returned by the provider, or zero when
	// the request never produced a response.
	StatusCode int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface for ProviderError.
func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s failed (status %d)", e.Provider, e.StatusCode)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ProviderError) Unwrap() error {
	return e.Err
}
