package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Roadmap-specific validation errors
var (
	// ErrRoadmapIDEmpty is returned when a roadmap ID is empty or nil.
	ErrRoadmapIDEmpty = errors.New("roadmap ID cannot be empty")

	// ErrRoadmapUserIDEmpty is returned when a roadmap's user ID is empty or nil.
	ErrRoadmapUserIDEmpty = errors.New("roadmap user ID cannot be empty")

	// ErrRoadmapRoleEmpty is returned when a roadmap's role is empty.
	ErrRoadmapRoleEmpty = errors.New("roadmap role cannot be empty")

	// ErrRoadmapPayloadEmpty is returned when a roadmap's payload is empty.
	ErrRoadmapPayloadEmpty = errors.New("roadmap payload cannot be empty")

	// ErrRoadmapPayloadInvalid is returned when a roadmap's payload is not valid JSON.
	ErrRoadmapPayloadInvalid = errors.New("roadmap payload must be valid JSON")
)

// Roadmap is a persisted curriculum document for a (user, role) pair.
// The payload is stored as a JSONB structure so the document shape can
// evolve without schema migrations.
type Roadmap struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Role      string          `json:"role"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewRoadmap creates a new Roadmap with the given user ID, role, and payload.
// It generates a new UUID for the roadmap ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewRoadmap(userID uuid.UUID, role string, payload json.RawMessage) (*Roadmap, error) {
	roadmap := &Roadmap{
		ID:        uuid.New(),
		UserID:    userID,
		Role:      role,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := roadmap.Validate(); err != nil {
		return nil, err
	}

	return roadmap, nil
}

// Validate checks if the Roadmap has valid data.
// Returns an error if any field fails validation.
func (r *Roadmap) Validate() error {
	if r.ID == uuid.Nil {
		return ErrRoadmapIDEmpty
	}

	if r.UserID == uuid.Nil {
		return ErrRoadmapUserIDEmpty
	}

	if r.Role == "" {
		return ErrRoadmapRoleEmpty
	}

	if len(r.Payload) == 0 {
		return ErrRoadmapPayloadEmpty
	}

	var js json.RawMessage
	if err := json.Unmarshal(r.Payload, &js); err != nil {
		return ErrRoadmapPayloadInvalid
	}

	return nil
}

// Document unmarshals the roadmap payload into a CurriculumDocument.
func (r *Roadmap) Document() (*CurriculumDocument, error) {
	var doc CurriculumDocument
	if err := json.Unmarshal(r.Payload, &doc); err != nil {
		return nil, ErrRoadmapPayloadInvalid
	}
	return &doc, nil
}
