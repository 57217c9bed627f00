package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Progress-specific validation errors
var (
	// ErrProgressUserIDEmpty is returned when a progress record's user ID is empty or nil.
	ErrProgressUserIDEmpty = errors.New("progress user ID cannot be empty")

	// ErrProgressRoadmapIDEmpty is returned when a progress record's roadmap ID is empty or nil.
	ErrProgressRoadmapIDEmpty = errors.New("progress roadmap ID cannot be empty")

	// ErrProgressNodeIDEmpty is returned when a progress record's node ID is empty.
	ErrProgressNodeIDEmpty = errors.New("progress node ID cannot be empty")
)

// ProgressRecord tracks whether a user has completed a single node of a
// roadmap. (UserID, RoadmapID, NodeID) is the natural key; writes are
// upserts keyed on this triple, so toggling a node repeatedly always
// results in exactly one row.
type ProgressRecord struct {
	UserID    uuid.UUID `json:"user_id"`
	RoadmapID uuid.UUID `json:"roadmap_id"`
	NodeID    string    `json:"node_id"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProgressRecord creates a new ProgressRecord for the given natural key
// and completion state, setting the update timestamp.
// Returns an error if validation fails.
func NewProgressRecord(
	userID, roadmapID uuid.UUID,
	nodeID string,
	completed bool,
) (*ProgressRecord, error) {
	record := &ProgressRecord{
		UserID:    userID,
		RoadmapID: roadmapID,
		NodeID:    nodeID,
		Completed: completed,
		UpdatedAt: time.Now().UTC(),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the ProgressRecord has valid data.
// Returns an error if any field fails validation.
func (p *ProgressRecord) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrProgressUserIDEmpty
	}

	if p.RoadmapID == uuid.Nil {
		return ErrProgressRoadmapIDEmpty
	}

	if p.NodeID == "" {
		return ErrProgressNodeIDEmpty
	}

	return nil
}
