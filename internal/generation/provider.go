package generation

import "context"

// QualityHint expresses how much model capability a request needs. Adapters
// map hints to concrete model names; adapters with a single model ignore the
// hint entirely.
type QualityHint string

const (
	// QualityFast prefers latency and cost over capability.
	QualityFast QualityHint = "fast"

	// QualityBalanced is the middle ground.
	QualityBalanced QualityHint = "balanced"

	// QualitySmart prefers capability regardless of latency.
	QualitySmart QualityHint = "smart"
)

// Provider is the boundary interface between the generation core and an
// external LLM service. Implementations live in internal/platform and
// perform network I/O only; they never mutate local state.
type Provider interface {
	// Name returns the provider identifier used in logs and errors,
	// e.g. "openai" or "gemini".
	Name() string

	// Complete sends the prompt to the provider and returns the raw
	// assistant text. It fails with a *ProviderError on any non-2xx
	// response or when no text can be extracted from the response.
	Complete(ctx context.Context, prompt string, hint QualityHint) (string, error)
}
