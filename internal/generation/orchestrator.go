package generation

import (
	"context"
	"fmt"
	"log/slog"
)

// Completer is the narrow interface the service needs from the orchestrator.
// It exists so tests can substitute a canned completion source.
type Completer interface {
	Complete(ctx context.Context, prompt string, hint QualityHint) (string, error)
}

// Orchestrator routes a completion request across the configured providers:
// the primary is attempted first when its rate budget allows, the secondary
// is attempted after any primary failure, and ErrNoProviderAvailable is
// returned only when every configured provider has failed or none is
// configured.
//
// Ordering is fixed. There is no weighting, health scoring, or circuit
// breaker: a momentarily failing primary is retried on every call once its
// rate budget allows, with no backoff.
type Orchestrator struct {
	logger    *slog.Logger
	primary   Provider // nil when unconfigured
	secondary Provider // nil when unconfigured
	gate      *RateGate
}

// NewOrchestrator creates an orchestrator over the given providers. Either
// provider may be nil, meaning unconfigured; gate must not be nil.
// If logger is nil, a default logger will be used.
func NewOrchestrator(logger *slog.Logger, primary, secondary Provider, gate *RateGate) *Orchestrator {
	if gate == nil {
		panic("gate cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		logger:    logger.With(slog.String("component", "orchestrator")),
		primary:   primary,
		secondary: secondary,
		gate:      gate,
	}
}

// Complete sends the prompt to the first available provider and returns the
// raw assistant text.
func (o *Orchestrator) Complete(ctx context.Context, prompt string, hint QualityHint) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	if o.primary != nil {
		if o.gate.TryAcquire() {
			text, err := o.primary.Complete(ctx, prompt, hint)
			if err == nil {
				return text, nil
			}
			o.logger.WarnContext(ctx, "primary provider failed, falling back",
				"provider", o.primary.Name(),
				"error", err)
		} else {
			o.logger.DebugContext(ctx, "primary provider rate budget exhausted, skipping",
				"provider", o.primary.Name())
		}
	}

	if o.secondary != nil {
		text, err := o.secondary.Complete(ctx, prompt, hint)
		if err == nil {
			return text, nil
		}
		o.logger.WarnContext(ctx, "secondary provider failed",
			"provider", o.secondary.Name(),
			"error", err)
	}

	return "", fmt.Errorf("%w: all providers failed or unconfigured", ErrNoProviderAvailable)
}
