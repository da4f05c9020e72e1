// internal/router/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-places-recommender/internal/api/places"
)

// Config contains dependencies needed for the router setup
type Config struct {
	PlacesHandler *places.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	// The browser frontend is served from a different origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	// Heartbeat/Health check endpoint
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	// All engine operations are pure reads; no auth groups needed.
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/feed", cfg.PlacesHandler.Feed)
		r.Get("/search", cfg.PlacesHandler.Search)
		r.Get("/autocomplete", cfg.PlacesHandler.Autocomplete)
		r.Get("/places/{name}", cfg.PlacesHandler.PlaceDetail)
		r.Get("/status", cfg.PlacesHandler.Status)
	})

	return r
}
