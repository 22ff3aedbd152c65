// Package router sets up all HTTP routes and middleware chains for the
// portfolio server. It organizes routes into a public read API and an admin
// API with the appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"folio/internal/handlers"
	"folio/internal/middleware"
)

// Options controls cross-origin access and cookie security.
type Options struct {
	// CORSOrigins lists origins allowed to call the API from a browser.
	// Empty disables CORS handling.
	CORSOrigins []string

	// SecureCookies sets the Secure flag on the CSRF cookie.
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. live serves the WebSocket change feed.
func New(opts Options, gate middleware.Authorizer, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public, live http.Handler, loginLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", middleware.CSRFHeaderName},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check: no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Public read API.
	r.Route("/api", func(r chi.Router) {
		r.Get("/portfolio", public.Portfolio)
		r.Get("/projects", public.Projects)
		r.Get("/projects/categories", public.ProjectCategories)
		r.Get("/skills", public.Skills)
		r.Handle("/live", live)
	})

	// Admin API: never cached, CSRF-protected.
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		// Session endpoints, accessible without a login.
		r.With(loginLimiter.Middleware).Post("/login", auth.Login)
		r.With(loginLimiter.Middleware).Post("/2fa/verify", auth.VerifyTwoFactor)
		r.Post("/logout", auth.Logout)
		r.Get("/session", auth.Session)

		// Authenticated admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(gate))

			r.Post("/password", auth.ChangePassword)
			r.Post("/2fa/setup", auth.SetupTwoFactor)
			r.Post("/2fa/confirm", auth.ConfirmTwoFactor)
			r.Post("/2fa/disable", auth.DisableTwoFactor)

			r.Get("/document", admin.Document)
			r.Get("/export", admin.Export)
			r.Post("/import", admin.Import)
			r.Post("/reset", admin.Reset)

			r.Put("/personal-info", admin.UpdatePersonalInfo)
			r.Put("/social-links", admin.UpdateSocialLinks)
			r.Put("/settings", admin.UpdateSettings)

			r.Mount("/skills", admin.Skills().Routes())
			r.Mount("/projects", admin.Projects().Routes())
			r.Mount("/certifications", admin.Certifications().Routes())
			r.Mount("/education", admin.Education().Routes())
			r.Mount("/experience", admin.Experience().Routes())

			r.Post("/media", admin.MediaUpload)
			r.Delete("/media", admin.MediaDelete)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
