// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the admin interface.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"partnerpress/internal/middleware"
	"partnerpress/internal/session"
	"partnerpress/internal/taxonomy"
)

//go:embed templates/admin/*.html
var adminFS embed.FS

// PageData holds all data passed to admin templates.
type PageData struct {
	Title     string         // <title> and page heading
	Section   string         // active nav entry, e.g. "posts" or a taxonomy name
	Session   *session.Data  // nil when unauthenticated
	CSRFToken string         // hidden field value for forms
	Data      map[string]any // page-specific data
	Flashes   []Flash
}

// Flash is a one-time notification shown above the page content.
type Flash struct {
	Type    string // "success", "error"
	Message string
}

// Renderer parses and executes the admin page templates.
type Renderer struct {
	templates map[string]*template.Template
}

// standaloneTemplates render without the base layout.
var standaloneTemplates = map[string]bool{
	"login":      true,
	"2fa_setup":  true,
	"2fa_verify": true,
}

// New parses every admin page template, pairing each with base.html unless
// it is standalone. The taxonomy registry feeds the navigation.
func New(devMode bool, taxonomies *taxonomy.Registry) (*Renderer, error) {
	funcMap := template.FuncMap{
		"activeClass": func(current, target string) string {
			if current == target {
				return "active"
			}
			return ""
		},
		"isDev": func() bool { return devMode },
		"taxonomies": func() []taxonomy.Definition {
			return taxonomies.Definitions()
		},
		// termIndent prefixes a term name with dashes for its depth, like
		// hierarchical term lists in the admin.
		"termIndent": func(depth int, name string) string {
			if depth <= 0 {
				return name
			}
			return strings.Repeat("— ", depth) + name
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"int64Eq": func(ptr *int64, v int64) bool {
			return ptr != nil && *ptr == v
		},
	}

	entries, err := fs.ReadDir(adminFS, "templates/admin")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	r := &Renderer{templates: make(map[string]*template.Template)}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || !strings.HasSuffix(name, ".html") {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		var tmpl *template.Template
		if standaloneTemplates[tmplName] {
			tmpl, err = template.New(name).Funcs(funcMap).ParseFS(adminFS, "templates/admin/"+name)
		} else {
			tmpl, err = template.New("base.html").Funcs(funcMap).ParseFS(adminFS,
				"templates/admin/base.html", "templates/admin/"+name)
		}
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Has reports whether a page template with this name was parsed.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// Page renders a full admin page. The CSRF token and session are taken
// from the request context. Output is buffered so a template error yields
// a clean 500.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus is Page with an explicit status code, used to re-render forms
// with validation errors.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		slog.Error("admin template not found", "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		slog.Error("admin template execution failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
