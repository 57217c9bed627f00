package generation

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// promptTemplates holds the parsed prompt template per content kind.
// Parsed once at startup; a broken template is a programming error.
var promptTemplates = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// promptData is the data passed to every prompt template.
type promptData struct {
	// Subject is the free-text input: a role for roadmaps, a topic for
	// courses, or raw material for the study tools.
	Subject string
}

// templateName maps a content kind to its prompt template file.
func templateName(kind ContentKind) string {
	return string(kind) + ".tmpl"
}

// buildPrompt renders the prompt for the given content kind and subject.
// Each prompt names the target JSON shape precisely, constrains the output
// size, and forbids markdown and commentary in the response.
func buildPrompt(kind ContentKind, subject string) (string, error) {
	if subject == "" {
		return "", ErrEmptyPrompt
	}

	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, templateName(kind), promptData{Subject: subject}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template for %s: %w", kind, err)
	}

	return buf.String(), nil
}
