// Package server exposes the workout tracker over an HTTP JSON API.
package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/ironpath/internal/catalog"
	"github.com/claude/ironpath/internal/tracker"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	tracker *tracker.Tracker
	catalog *catalog.Catalog
	log     *slog.Logger
	apiKey  string
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(tr *tracker.Tracker, cat *catalog.Catalog, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		tracker: tr,
		catalog: cat,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", s.handleHealthz)

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)

		r.Get("/catalog", s.handleCatalog)
		r.Get("/catalog/{category}", s.handleCatalogCategory)

		r.Get("/session", s.handleGetSession)
		r.Post("/session/sets", s.handleAddSet)
		r.Delete("/session/sets/{id}", s.handleDeleteSet)
		r.Post("/session/finish", s.handleFinishWorkout)

		r.Get("/history", s.handleGetHistory)
		r.Delete("/history/{timestamp}", s.handleDeleteHistory)

		r.Get("/records", s.handleGetRecords)
		r.Get("/progression", s.handleGetProgression)
		r.Get("/export", s.handleExport)

		// Destructive state operations require the API key.
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/import", s.handleImport)
			r.Post("/reset", s.handleReset)
		})
	})
}
