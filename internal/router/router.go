// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for
// PartnerPress. It organizes routes into public and admin groups with
// appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"partnerpress/internal/handlers"
	"partnerpress/internal/middleware"
	"partnerpress/internal/session"
	"partnerpress/internal/taxonomy"
)

// Deps are the collaborators the router wires into routes.
type Deps struct {
	Sessions     *session.Store
	Taxonomies   *taxonomy.Registry
	Admin        *handlers.Admin
	Auth         *handlers.Auth
	Public       *handlers.Public
	LoginLimiter *middleware.RateLimiter // nil disables login throttling
	Static       fs.FS                   // served under /static/, may be nil
	ImageOrigins []string                // object store origins allowed as image sources
	SecureCookie bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(d.ImageOrigins...))
	r.Use(middleware.LoadSession(d.Sessions))

	// Health check, no auth, no CSRF.
	r.Get("/health", healthHandler)

	if d.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(d.Static))))
	}

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NewCSRF(d.SecureCookie))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
		})

		// Auth pages, accessible without a session.
		r.Group(func(r chi.Router) {
			if d.LoginLimiter != nil {
				r.Use(d.LoginLimiter.Middleware)
			}
			r.Get("/login", d.Auth.LoginPage)
			r.Post("/login", d.Auth.LoginSubmit)
		})
		r.Post("/logout", d.Auth.Logout)

		// 2FA requires a session but not a completed second factor.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", d.Auth.TwoFASetupPage)
			r.Post("/2fa/setup", d.Auth.TwoFAVerifySubmit)
			r.Get("/2fa/verify", d.Auth.TwoFAVerifyPage)
			r.Post("/2fa/verify", d.Auth.TwoFAVerifySubmit)
		})

		// Authenticated, 2FA-verified editors.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)
			r.Use(middleware.RequireEditContent)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", d.Admin.PostsList)
				r.Get("/new", d.Admin.PostNew)
				r.Post("/", d.Admin.PostCreate)
				r.Get("/{id}", d.Admin.PostEdit)
				r.Post("/{id}", d.Admin.PostUpdate)
				r.Post("/{id}/delete", d.Admin.PostDelete)
			})

			r.Route("/terms/{taxonomy}", func(r chi.Router) {
				r.Get("/", d.Admin.TermsList)
				r.Post("/", d.Admin.TermCreate)
				r.Get("/{id}", d.Admin.TermEdit)
				r.Post("/{id}", d.Admin.TermUpdate)
				r.Post("/{id}/delete", d.Admin.TermDelete)
			})

			r.Route("/media", func(r chi.Router) {
				r.Get("/", d.Admin.MediaLibrary)
				r.Post("/", d.Admin.MediaUpload)
				r.Post("/{id}/delete", d.Admin.MediaDelete)
			})
		})
	})

	// Public routes: one archive route per public taxonomy, then pages.
	r.Get("/", d.Public.Homepage)
	for _, def := range d.Taxonomies.Definitions() {
		if def.Public && def.Rewrite != "" {
			r.Get("/"+def.Rewrite+"/{slug}", d.Public.Archive(def))
		}
	}
	r.Get("/{slug}", d.Public.Page)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
