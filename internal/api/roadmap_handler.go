package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/learnloop/learnloop-api/internal/api/shared"
	"github.com/learnloop/learnloop-api/internal/domain"
	"github.com/learnloop/learnloop-api/internal/store"
)

// CurriculumGenerator is the generation facade the handlers depend on.
// Its methods never fail; on any provider or parse trouble they return a
// deterministic fallback artifact instead.
type CurriculumGenerator interface {
	GenerateRoadmap(ctx context.Context, role string) *domain.CurriculumDocument
	GenerateCourse(ctx context.Context, topic string) *domain.CurriculumDocument
	Summarize(ctx context.Context, content string) json.RawMessage
	Explain(ctx context.Context, content string) json.RawMessage
	Quiz(ctx context.Context, content string) json.RawMessage
	Flashcards(ctx context.Context, content string) json.RawMessage
}

// GenerateRoadmapRequest represents the request body for generating a roadmap
type GenerateRoadmapRequest struct {
	Role string `json:"role" validate:"required,min=1,max=200"`
}

// SetProgressRequest represents the request body for toggling node completion
type SetProgressRequest struct {
	NodeID    string `json:"node_id" validate:"required,min=1,max=200"`
	Completed *bool  `json:"completed" validate:"required"`
}

// RoadmapResponse represents the response data for a roadmap
type RoadmapResponse struct {
	ID        string                     `json:"id"`
	Role      string                     `json:"role"`
	Document  *domain.CurriculumDocument `json:"document"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// ProgressResponse represents the response data for a progress record
type ProgressResponse struct {
	RoadmapID string    `json:"roadmap_id"`
	NodeID    string    `json:"node_id"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoadmapHandler handles roadmap generation, retrieval, and progress tracking.
type RoadmapHandler struct {
	generator CurriculumGenerator
	db        *sql.DB
	roadmaps  store.RoadmapStore
	progress  store.ProgressStore
	logger    *slog.Logger
	validator *validator.Validate
}

// NewRoadmapHandler creates a new RoadmapHandler.
// If logger is nil, a default logger will be used.
func NewRoadmapHandler(
	generator CurriculumGenerator,
	db *sql.DB,
	roadmaps store.RoadmapStore,
	progress store.ProgressStore,
	logger *slog.Logger,
) *RoadmapHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &RoadmapHandler{
		generator: generator,
		db:        db,
		roadmaps:  roadmaps,
		progress:  progress,
		logger:    logger.With(slog.String("component", "roadmap_handler")),
		validator: validator.New(),
	}
}

// GenerateRoadmap handles POST /api/roadmaps requests.
// It always answers 200 for provider trouble: the generation service
// degrades to a fallback document, and if that somehow comes back nil the
// handler substitutes its own static template as a second safety net.
func (h *RoadmapHandler) GenerateRoadmap(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req GenerateRoadmapRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	doc := h.generator.GenerateRoadmap(r.Context(), req.Role)
	if doc == nil {
		// Second safety net, distinct from the generator's own fallback.
		doc = staticRoadmapTemplate(req.Role)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to marshal roadmap document", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate roadmap")
		return
	}

	roadmap, err := domain.NewRoadmap(userID, req.Role, payload)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid roadmap data")
		return
	}

	saved, err := h.roadmaps.Upsert(r.Context(), roadmap)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RoadmapResponse{
		ID:        saved.ID.String(),
		Role:      saved.Role,
		Document:  doc,
		CreatedAt: saved.CreatedAt,
		UpdatedAt: saved.UpdatedAt,
	})
}

// ListRoadmaps handles GET /api/roadmaps requests.
func (h *RoadmapHandler) ListRoadmaps(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	roadmaps, err := h.roadmaps.ListByUser(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]RoadmapResponse, 0, len(roadmaps))
	for _, roadmap := range roadmaps {
		response, err := roadmapToResponse(roadmap)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "failed to decode stored roadmap payload",
				"roadmap_id", roadmap.ID,
				"error", err)
			continue
		}
		responses = append(responses, response)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetRoadmap handles GET /api/roadmaps/{id} requests.
func (h *RoadmapHandler) GetRoadmap(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	roadmapID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid roadmap ID")
		return
	}

	roadmap, err := h.roadmaps.GetByID(r.Context(), userID, roadmapID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	response, err := roadmapToResponse(roadmap)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to decode stored roadmap payload",
			"roadmap_id", roadmap.ID,
			"error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to load roadmap")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// DeleteRoadmap handles DELETE /api/roadmaps/{id} requests.
// Progress rows for the roadmap are removed by the database cascade.
func (h *RoadmapHandler) DeleteRoadmap(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	roadmapID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid roadmap ID")
		return
	}

	if err := h.roadmaps.Delete(r.Context(), userID, roadmapID); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetProgress handles POST /api/roadmaps/{id}/progress requests.
// The ownership check and the upsert run in one transaction so a roadmap
// deleted concurrently cannot acquire orphan progress rows. Persistence
// errors propagate to the client; a dropped completion toggle must be
// visible, not silent.
func (h *RoadmapHandler) SetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	roadmapID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid roadmap ID")
		return
	}

	var req SetProgressRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	var record *domain.ProgressRecord
	err = store.RunInTransaction(r.Context(), h.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := h.roadmaps.WithTx(tx).GetByID(ctx, userID, roadmapID); err != nil {
			return err
		}

		var err error
		record, err = h.progress.WithTx(tx).SetCompletion(ctx, userID, roadmapID, req.NodeID, *req.Completed)
		return err
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(record))
}

// GetProgress handles GET /api/roadmaps/{id}/progress requests.
func (h *RoadmapHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	roadmapID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid roadmap ID")
		return
	}

	if _, err := h.roadmaps.GetByID(r.Context(), userID, roadmapID); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	records, err := h.progress.GetByRoadmap(r.Context(), userID, roadmapID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]ProgressResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, progressToResponse(record))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// roadmapToResponse converts a domain.Roadmap to a RoadmapResponse.
func roadmapToResponse(roadmap *domain.Roadmap) (RoadmapResponse, error) {
	doc, err := roadmap.Document()
	if err != nil {
		return RoadmapResponse{}, err
	}

	return RoadmapResponse{
		ID:        roadmap.ID.String(),
		Role:      roadmap.Role,
		Document:  doc,
		CreatedAt: roadmap.CreatedAt,
		UpdatedAt: roadmap.UpdatedAt,
	}, nil
}

// progressToResponse converts a domain.ProgressRecord to a ProgressResponse.
func progressToResponse(record *domain.ProgressRecord) ProgressResponse {
	return ProgressResponse{
		RoadmapID: record.RoadmapID.String(),
		NodeID:    record.NodeID,
		Completed: record.Completed,
		UpdatedAt: record.UpdatedAt,
	}
}

// staticRoadmapTemplate is the handler-level safety net used only when the
// generation service returns no document at all.
func staticRoadmapTemplate(role string) *domain.CurriculumDocument {
	return &domain.CurriculumDocument{
		Title:       role + " Roadmap",
		Description: "A starting plan for " + role + ".",
		Sections: []domain.Section{
			{
				ID:    "basics",
				Label: "Fundamentals",
				Items: []domain.Item{
					{ID: "get-started", Label: "Get started with " + role},
				},
			},
		},
	}
}
