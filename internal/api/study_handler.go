package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/learnloop/learnloop-api/internal/api/shared"
	"github.com/learnloop/learnloop-api/internal/domain"
)

// GenerateCourseRequest represents the request body for generating a course
type GenerateCourseRequest struct {
	Topic string `json:"topic" validate:"required,min=1,max=200"`
}

// StudyToolRequest represents the request body for the study tool endpoints
type StudyToolRequest struct {
	Content string `json:"content" validate:"required,min=1,max=20000"`
}

// CourseResponse represents the response data for a generated course
type CourseResponse struct {
	Topic    string                     `json:"topic"`
	Document *domain.CurriculumDocument `json:"document"`
}

// StudyHandler handles course generation and the study tool endpoints.
// Unlike roadmaps, these artifacts are not persisted; the response is the
// generated content itself.
type StudyHandler struct {
	generator CurriculumGenerator
	logger    *slog.Logger
	validator *validator.Validate
}

// NewStudyHandler creates a new StudyHandler.
// If logger is nil, a default logger will be used.
func NewStudyHandler(generator CurriculumGenerator, logger *slog.Logger) *StudyHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &StudyHandler{
		generator: generator,
		logger:    logger.With(slog.String("component", "study_handler")),
		validator: validator.New(),
	}
}

// GenerateCourse handles POST /api/courses requests.
func (h *StudyHandler) GenerateCourse(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetUserID(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req GenerateCourseRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	doc := h.generator.GenerateCourse(r.Context(), req.Topic)
	if doc == nil {
		doc = &domain.CurriculumDocument{
			Title:    req.Topic + " Course",
			Sections: []domain.Section{},
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CourseResponse{
		Topic:    req.Topic,
		Document: doc,
	})
}

// Summarize handles POST /api/study/summarize requests.
func (h *StudyHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	h.studyTool(w, r, h.generator.Summarize)
}

// Quiz handles POST /api/study/quiz requests.
func (h *StudyHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	h.studyTool(w, r, h.generator.Quiz)
}

// Flashcards handles POST /api/study/flashcards requests.
func (h *StudyHandler) Flashcards(w http.ResponseWriter, r *http.Request) {
	h.studyTool(w, r, h.generator.Flashcards)
}

// Explain handles POST /api/study/explain requests.
func (h *StudyHandler) Explain(w http.ResponseWriter, r *http.Request) {
	h.studyTool(w, r, h.generator.Explain)
}

// studyTool is the shared request pipeline for the four study endpoints.
// The generate function never fails; a degraded result is an empty JSON
// object or array, which the client renders as "nothing available".
func (h *StudyHandler) studyTool(
	w http.ResponseWriter,
	r *http.Request,
	generate func(ctx context.Context, content string) json.RawMessage,
) {
	if _, ok := GetUserID(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req StudyToolRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result := generate(r.Context(), req.Content)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write study tool response", "error", err)
	}
}
