package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/learnloop/learnloop-api/internal/api"
	apiMiddleware "github.com/learnloop/learnloop-api/internal/api/middleware"
)

// generationRateLimit throttles the LLM-backed endpoints per client IP.
// This is a perimeter guard against abusive clients; the provider-level
// request budget is enforced separately by the generation rate gate.
const (
	generationRateLimit  = 20
	generationRateWindow = time.Minute
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	roadmapHandler := api.NewRoadmapHandler(
		app.generation,
		app.db,
		app.roadmapStore,
		app.progressStore,
		app.logger,
	)
	studyHandler := api.NewStudyHandler(app.generation, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Roadmap persistence and progress endpoints
		r.Get("/roadmaps", roadmapHandler.ListRoadmaps)
		r.Get("/roadmaps/{id}", roadmapHandler.GetRoadmap)
		r.Delete("/roadmaps/{id}", roadmapHandler.DeleteRoadmap)
		r.Get("/roadmaps/{id}/progress", roadmapHandler.GetProgress)
		r.Post("/roadmaps/{id}/progress", roadmapHandler.SetProgress)

		// Generation endpoints, throttled per client IP
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByRealIP(generationRateLimit, generationRateWindow))

			r.Post("/roadmaps", roadmapHandler.GenerateRoadmap)
			r.Post("/courses", studyHandler.GenerateCourse)
			r.Post("/study/summarize", studyHandler.Summarize)
			r.Post("/study/quiz", studyHandler.Quiz)
			r.Post("/study/flashcards", studyHandler.Flashcards)
			r.Post("/study/explain", studyHandler.Explain)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
