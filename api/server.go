/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the portal frontend

SECURITY NOTE:
  No authentication middleware. This is a demo portal; all endpoints
  are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Project routes
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Get("/{id}", h.GetProject)
			r.Put("/{id}/status", h.UpdateProjectStatus)
			r.Put("/{id}/details", h.UpdateProjectDetails)
			r.Delete("/{id}/details", h.ClearProjectDetails)
			r.Get("/{id}/notes", h.ListProjectNotes)
			r.Post("/{id}/notes", h.CreateProjectNote)
			r.Get("/{id}/activity", h.ListProjectActivity)
			r.Get("/{id}/invoices", h.ListProjectInvoices)
			r.Post("/{id}/invoices", h.CreateProjectInvoice)
		})

		// Invoice routes
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", h.ListInvoices)
			r.Get("/{id}", h.GetInvoice)
			r.Put("/{id}/status", h.UpdateInvoiceStatus)
			r.Patch("/{id}", h.UpdateInvoice)
		})

		// Feed and overview
		r.Get("/activity", h.ListActivity)
		r.Get("/dashboard", h.GetDashboard)

		// Settings
		r.Route("/settings", func(r chi.Router) {
			r.Post("/reset", h.ResetDemoData)
			r.Post("/clear-activity", h.ClearActivity)
		})
	})

	// Landing page for anyone hitting the API root in a browser.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Arc Portal API</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Arc Portal API</h1>
<p>Demo business-portal backend. State lives in a persisted session store.</p>
<h2>Endpoints</h2>
<ul>
<li><a href="/api/projects">/api/projects</a> - List projects</li>
<li><a href="/api/invoices">/api/invoices</a> - List invoices</li>
<li><a href="/api/activity">/api/activity</a> - Activity feed</li>
<li><a href="/api/dashboard">/api/dashboard</a> - Derived overview</li>
</ul>
</body>
</html>`))
	})

	return r
}
