package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/scry-srs/internal/api"
	apiMiddleware "github.com/phrazzld/scry-srs/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	srsHandler := api.NewSRSHandler(app.cardReviewService, app.logger)
	progressHandler := api.NewProgressHandler(app.progressService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api/v1/learning", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Use(app.rateLimiter.Middleware)

		r.Get("/srs/next", srsHandler.GetNextCard)
		r.Post("/srs/review", srsHandler.SubmitReview)

		r.Get("/progress", progressHandler.ListProgress)
		r.Post("/progress/import", progressHandler.ImportProgress)
		r.Patch("/progress/{card_id}", progressHandler.UpsertProgress)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
