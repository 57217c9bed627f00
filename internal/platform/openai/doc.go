// Package openai implements the primary generation.Provider against the
// OpenAI chat-completions HTTP API. The quality hint selects the model; the
// token budget and temperature are fixed for all requests.
package openai
