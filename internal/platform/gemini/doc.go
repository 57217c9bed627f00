// Package gemini implements the secondary generation.Provider against the
// Gemini generateContent HTTP API. The adapter uses a single configured
// model and ignores the quality hint; it exists as the fallback when the
// primary provider is rate-limited or failing.
package gemini
