package domain

import "errors"

// Curriculum-specific validation errors
var (
	// ErrCurriculumTitleEmpty is returned when a curriculum document has no title.
	ErrCurriculumTitleEmpty = errors.New("curriculum title cannot be empty")

	// ErrCurriculumSectionsNil is returned when a curriculum document has no
	// sections sequence at all. An empty (but present) sequence is valid.
	ErrCurriculumSectionsNil = errors.New("curriculum sections must be present")
)

// CurriculumDocument is a structured learning plan produced by the generation
// service: a roadmap for a role, or a course for a topic. The shape is the
// same for both kinds; only the prompt and the provider-facing JSON keys
// differ ("stages" vs "modules").
type CurriculumDocument struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Sections    []Section `json:"sections"`
}

// Section is one ordered stage or module of a curriculum.
type Section struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Summary string `json:"summary,omitempty"`
	Items   []Item `json:"items"`
}

// Item is a single learnable unit inside a section. DependsOn references
// item IDs that should be completed first. Item IDs are unique within a
// section; uniqueness across the whole document is not enforced.
type Item struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Details   string   `json:"details,omitempty"`
	DependsOn []string `json:"depends_on,omitempty"`
}

// Validate checks the minimal required shape of a curriculum document:
// a title and a present (possibly empty) sections sequence.
func (d *CurriculumDocument) Validate() error {
	if d.Title == "" {
		return ErrCurriculumTitleEmpty
	}

	if d.Sections == nil {
		return ErrCurriculumSectionsNil
	}

	return nil
}
