package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/guto-escola/guto-api/internal/api"
	apiMiddleware "github.com/guto-escola/guto-api/internal/api/middleware"
	"github.com/guto-escola/guto-api/internal/api/shared"
)

// setupRouter creates the router with the middleware stack and all routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	r.Route("/api", func(r chi.Router) {
		api.RegisterRoutes(r, app.handlers(), authMiddleware.Authenticate)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, api.HealthResponse{
			Status: "ok",
			Time:   time.Now().UTC(),
		})
	})

	return r
}
