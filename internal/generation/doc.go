// Package generation implements the AI content-generation core: it turns a
// free-text subject (a role or a topic) into a structured curriculum document
// by calling one of two interchangeable LLM providers, defending against
// their unreliability.
//
// The package is organized around a small set of collaborators:
//
//   - Provider is the boundary interface implemented by the platform
//     adapters (internal/platform/openai, internal/platform/gemini).
//   - RateGate tracks a fixed-window request budget for the primary provider.
//   - Orchestrator tries the primary provider when the gate allows and falls
//     back to the secondary on any failure.
//   - ArtifactCache is a process-local TTL cache keyed by a normalized
//     request fingerprint.
//   - ExtractJSON and Contract locate and validate the JSON payload embedded
//     in a raw model completion.
//   - Service is the facade used by request handlers. Its generation methods
//     never fail: on any provider or parse error they return a deterministic
//     fallback document instead.
//
// All state is owned by explicitly constructed objects so the whole pipeline
// can be exercised in unit tests with fake providers and fake clocks.
package generation
