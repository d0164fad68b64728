package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dgallion1/constellate/internal/config"
	"github.com/dgallion1/constellate/internal/library"
	"github.com/dgallion1/constellate/internal/pipeline"
	"github.com/dgallion1/constellate/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves the constellation site and its JSON API.
type Server struct {
	router       chi.Router
	lib          *library.Library
	renderer     *render.Renderer
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. orch may be nil, in
// which case the import endpoints report 503.
func NewServer(lib *library.Library, renderer *render.Renderer, orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		lib:          lib,
		renderer:     renderer,
		orchestrator: orch,
		log:          log,
		cfg:          cfg,
	}
	if cfg.APIKey == "" {
		log.Warn("CONSTELLATE_API_KEY is not set; import endpoints are unauthenticated")
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleIndex)
	r.Get(render.CodeStylesheetPath, s.handleCodeCSS)
	if s.cfg.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.StaticDir))))
	}

	r.Get("/api/constellations", s.handleListConstellations)
	r.Get("/api/constellations/{slug}", s.handleGetConstellation)
	r.Get("/api/constellations/{slug}/outline", s.handleOutline)
	r.Get("/api/stats", s.handleStats)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/import", s.handleImport)
		r.Post("/api/import/batch", s.handleBatchImport)
		r.Get("/api/import/{jobID}/status", s.handleImportStatus)

		r.Delete("/api/constellations/{slug}", s.handleDeleteConstellation)
	})

	r.Get("/{slug}", s.handleDocRedirect)
	r.Get("/{slug}/{page}", s.handlePage)

	if base := strings.TrimRight(s.cfg.BasePath, "/"); base != "" {
		root := chi.NewRouter()
		root.Mount(base, r)
		s.router = root
		return
	}
	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
