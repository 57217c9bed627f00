package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON locates the first structurally balanced JSON value opening
// with the given delimiter ('{' or '[') inside raw model output. It
// tolerates leading/trailing commentary and markdown code fences, honors
// string literals and escape sequences so braces inside string values
// cannot derail extraction, and skips bracketed fragments in the
// commentary itself (a citation like "see [1]" must not shadow the
// document that follows it).
//
// It performs no semantic repair: truncated or otherwise unbalanced JSON is
// an ErrMalformedOutput, not something to fix up.
func ExtractJSON(raw string, opener byte) (string, error) {
	text := strings.TrimSpace(stripFences(raw))
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", ErrMalformedOutput)
	}

	for offset := 0; offset < len(text); {
		idx := strings.IndexByte(text[offset:], opener)
		if idx < 0 {
			break
		}
		start := offset + idx

		candidate, ok := scanBalanced(text[start:])
		if ok && json.Valid([]byte(candidate)) {
			return candidate, nil
		}

		offset = start + 1
	}

	return "", fmt.Errorf("%w: no JSON value opening with %q found", ErrMalformedOutput, string(opener))
}

// scanBalanced returns the shortest prefix of text that closes the opening
// delimiter at position 0. It tracks string literals and escapes so
// structural characters inside string values are ignored.
func scanBalanced(text string) (string, bool) {
	var (
		depth    int
		inString bool
		escaped  bool
	)

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return text[:i+1], true
			}
		}
	}

	return "", false
}

// stripFences removes markdown code-fence markers (``` and ```json) while
// keeping the fenced content itself.
func stripFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}

// Contract is the minimal required-shape schema for a top-level JSON object
// returned by a provider. Parsed model output is untrusted input, so the
// contract is checked explicitly before anything downstream touches it.
type Contract struct {
	// Required lists top-level fields that must be present.
	Required []string

	// Arrays lists top-level fields that, when checked, must be
	// array-shaped. Fields listed here are implicitly required.
	Arrays []string
}

// Validate checks doc against the contract.
// Failures are reported as ErrMalformedOutput with a reason.
func (c Contract) Validate(doc map[string]any) error {
	for _, field := range c.Required {
		if _, ok := doc[field]; !ok {
			return fmt.Errorf("%w: missing required field %q", ErrMalformedOutput, field)
		}
	}

	for _, field := range c.Arrays {
		value, ok := doc[field]
		if !ok {
			return fmt.Errorf("%w: missing required field %q", ErrMalformedOutput, field)
		}
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("%w: field %q must be an array", ErrMalformedOutput, field)
		}
	}

	return nil
}

// ParseObject extracts the JSON payload from raw model output, parses it as
// an object, and validates it against the contract.
func ParseObject(raw string, contract Contract) (map[string]any, error) {
	payload, err := ExtractJSON(raw, '{')
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	if err := contract.Validate(doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// ParseArray extracts the JSON payload from raw model output and parses it
// as a top-level array whose elements are objects carrying all of the
// required element fields.
func ParseArray(raw string, elementFields []string) ([]map[string]any, error) {
	payload, err := ExtractJSON(raw, '[')
	if err != nil {
		return nil, err
	}

	var elements []map[string]any
	if err := json.Unmarshal([]byte(payload), &elements); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	for i, element := range elements {
		for _, field := range elementFields {
			if _, ok := element[field]; !ok {
				return nil, fmt.Errorf(
					"%w: element %d missing required field %q",
					ErrMalformedOutput, i, field,
				)
			}
		}
	}

	return elements, nil
}
