package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ignite/opentrack/internal/tracking"
)

// SetupRoutes configures all routes: tracking endpoints at the root,
// the JSON API under /api, and the static dashboard as the fallback.
func SetupRoutes(h *Handlers, th *tracking.Handler, staticDir string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// CORS - the dashboard is same-origin, but the registration API is
	// also called from scripts and other tools.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	// Tracking endpoints. These sit at the root, not under /api: the
	// URLs end up embedded in emails and must stay short.
	r.Get("/p/{emailID}.gif", th.HandlePixel)
	r.Get("/l/{linkID}", th.HandleClick)

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Post("/track", h.HandleCreateEmail)
		r.Post("/link", h.HandleCreateLink)
		r.Route("/emails", func(r chi.Router) {
			r.Get("/", h.HandleListEmails)
			r.Get("/{emailID}", h.HandleEmailDetail)
			r.Delete("/{emailID}", h.HandleDeleteEmail)
		})
	})

	// Serve the static dashboard with fallback to index.html
	staticHandler(r, staticDir)

	return r
}

// staticHandler serves dashboard files and falls back to index.html
func staticHandler(r chi.Router, staticPath string) {
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		// Skip API and tracking routes
		if strings.HasPrefix(path, "/api") || strings.HasPrefix(path, "/health") ||
			strings.HasPrefix(path, "/p/") || strings.HasPrefix(path, "/l/") {
			http.NotFound(w, req)
			return
		}

		// Try to serve the file directly
		filePath := filepath.Join(staticPath, path)
		if info, err := os.Stat(filePath); err == nil && !info.IsDir() {
			http.ServeFile(w, req, filePath)
			return
		}

		// Everything else gets the dashboard
		indexPath := filepath.Join(staticPath, "index.html")
		http.ServeFile(w, req, indexPath)
	})
}
