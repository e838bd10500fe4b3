// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"partnerpress/internal/models"
	"partnerpress/internal/render"
	"partnerpress/internal/slug"
	"partnerpress/internal/taxonomy"
)

// termForm echoes the add form back after a validation error.
type termForm struct {
	Name        string
	Slug        string
	Description string
}

// lookupTaxonomy resolves the {taxonomy} URL parameter.
func (a *Admin) lookupTaxonomy(w http.ResponseWriter, r *http.Request) (taxonomy.Definition, bool) {
	def, ok := a.taxonomies.Lookup(chi.URLParam(r, "taxonomy"))
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
	}
	return def, ok
}

func (a *Admin) addFields(name string) template.HTML {
	if h := a.termHooks[name]; h.AddFields != nil {
		return h.AddFields()
	}
	return ""
}

func (a *Admin) editFields(ctx context.Context, name string, termID int64) template.HTML {
	if h := a.termHooks[name]; h.EditFields != nil {
		return h.EditFields(ctx, termID)
	}
	return ""
}

// runSaved fires the taxonomy's save hook. Hook failures are logged; the
// term itself is already stored.
func (a *Admin) runSaved(r *http.Request, name string, termID int64) {
	h := a.termHooks[name]
	if h.Saved == nil {
		return
	}
	if err := h.Saved(r.Context(), termID, r.PostForm); err != nil {
		slog.Error("term save hook failed", "taxonomy", name, "term_id", termID, "error", err)
	}
}

// TermsList renders the term table and the add form of a taxonomy.
func (a *Admin) TermsList(w http.ResponseWriter, r *http.Request) {
	def, ok := a.lookupTaxonomy(w, r)
	if !ok {
		return
	}
	a.renderTerms(w, r, http.StatusOK, def, termForm{}, "")
}

func (a *Admin) renderTerms(w http.ResponseWriter, r *http.Request, status int, def taxonomy.Definition, form termForm, errMsg string) {
	terms, err := a.termStore.FlatTree(r.Context(), def.Name)
	if err != nil {
		slog.Error("list terms failed", "taxonomy", def.Name, "error", err)
	}
	a.renderer.PageStatus(w, r, status, "terms", &render.PageData{
		Title:   def.Labels.Name,
		Section: def.Name,
		Data: map[string]any{
			"Taxonomy":    def,
			"Terms":       terms,
			"Form":        form,
			"ExtraFields": a.addFields(def.Name),
			"Error":       errMsg,
		},
	})
}

// termInput is the parsed and validated core of a term form.
type termInput struct {
	form     termForm
	parentID *int64
}

// parseTermForm validates name, slug, description and parent. selfID is
// the term being edited, 0 on create.
func (a *Admin) parseTermForm(ctx context.Context, r *http.Request, def taxonomy.Definition, selfID int64) (termInput, string) {
	in := termInput{form: termForm{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Slug:        strings.TrimSpace(r.PostFormValue("slug")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}}

	if msg := validateTerm(in.form.Name, in.form.Slug, in.form.Description); msg != "" {
		return in, msg
	}

	raw := in.form.Slug
	if raw == "" {
		raw = in.form.Name
	}
	in.form.Slug = slug.Generate(raw)
	if in.form.Slug == "" {
		return in, "The slug must contain at least one letter or digit."
	}

	existing, err := a.termStore.FindBySlug(ctx, def.Name, in.form.Slug)
	if err != nil {
		slog.Error("term slug lookup failed", "error", err)
		return in, "An unexpected error occurred."
	}
	if existing != nil && existing.ID != selfID {
		return in, fmt.Sprintf("A term with the slug %q already exists.", in.form.Slug)
	}

	if p := r.PostFormValue("parent"); p != "" && def.Hierarchical {
		pid, err := strconv.ParseInt(p, 10, 64)
		if err != nil || pid <= 0 || pid == selfID {
			return in, "Invalid parent."
		}
		parent, err := a.termStore.FindByID(ctx, pid)
		if err != nil || parent == nil || parent.Taxonomy != def.Name {
			return in, "Invalid parent."
		}
		in.parentID = &pid
	}
	return in, ""
}

// TermCreate handles the add form. On success the taxonomy's save hook
// receives the submitted form, which is how partner metadata is stored.
func (a *Admin) TermCreate(w http.ResponseWriter, r *http.Request) {
	def, ok := a.lookupTaxonomy(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	in, msg := a.parseTermForm(ctx, r, def, 0)
	if msg != "" {
		a.renderTerms(w, r, http.StatusUnprocessableEntity, def, in.form, msg)
		return
	}

	created, err := a.termStore.Create(ctx, &models.Term{
		Taxonomy:    def.Name,
		Name:        in.form.Name,
		Slug:        in.form.Slug,
		Description: in.form.Description,
		ParentID:    in.parentID,
	})
	if err != nil {
		slog.Error("create term failed", "taxonomy", def.Name, "error", err)
		a.renderTerms(w, r, http.StatusInternalServerError, def, in.form, "Failed to create the term.")
		return
	}

	a.runSaved(r, def.Name, created.ID)
	a.pageCache.InvalidateAll(ctx)
	slog.Info("term created", "taxonomy", def.Name, "term_id", created.ID, "slug", created.Slug)
	http.Redirect(w, r, "/admin/terms/"+def.Name, http.StatusSeeOther)
}

// loadTerm resolves {id} to a term of the given taxonomy.
func (a *Admin) loadTerm(w http.ResponseWriter, r *http.Request, def taxonomy.Definition) *models.Term {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil
	}
	t, err := a.termStore.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find term failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if t == nil || t.Taxonomy != def.Name {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil
	}
	return t
}

// parentChoices lists the terms that may become t's parent: everything in
// the taxonomy except t and its descendants.
func (a *Admin) parentChoices(ctx context.Context, t *models.Term) []models.Term {
	flat, err := a.termStore.FlatTree(ctx, t.Taxonomy)
	if err != nil {
		slog.Error("list parent terms failed", "error", err)
		return nil
	}
	var out []models.Term
	skipDepth := -1
	for _, c := range flat {
		if skipDepth >= 0 {
			if c.Depth > skipDepth {
				continue
			}
			skipDepth = -1
		}
		if c.ID == t.ID {
			skipDepth = c.Depth
			continue
		}
		out = append(out, c)
	}
	return out
}

func (a *Admin) renderTermForm(w http.ResponseWriter, r *http.Request, status int, def taxonomy.Definition, t *models.Term, errMsg string) {
	ctx := r.Context()
	a.renderer.PageStatus(w, r, status, "term_form", &render.PageData{
		Title:   def.Labels.EditItem,
		Section: def.Name,
		Data: map[string]any{
			"Taxonomy":    def,
			"Term":        t,
			"Parents":     a.parentChoices(ctx, t),
			"ExtraFields": a.editFields(ctx, def.Name, t.ID),
			"Error":       errMsg,
		},
	})
}

// TermEdit renders the edit form of a term.
func (a *Admin) TermEdit(w http.ResponseWriter, r *http.Request) {
	def, ok := a.lookupTaxonomy(w, r)
	if !ok {
		return
	}
	t := a.loadTerm(w, r, def)
	if t == nil {
		return
	}
	a.renderTermForm(w, r, http.StatusOK, def, t, "")
}

// TermUpdate handles the edit form and then runs the save hook.
func (a *Admin) TermUpdate(w http.ResponseWriter, r *http.Request) {
	def, ok := a.lookupTaxonomy(w, r)
	if !ok {
		return
	}
	t := a.loadTerm(w, r, def)
	if t == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	in, msg := a.parseTermForm(ctx, r, def, t.ID)
	if msg != "" {
		a.renderTermForm(w, r, http.StatusUnprocessableEntity, def, t, msg)
		return
	}
	if in.parentID != nil && a.isDescendant(ctx, t, *in.parentID) {
		a.renderTermForm(w, r, http.StatusUnprocessableEntity, def, t, "A term cannot be moved under its own descendant.")
		return
	}

	t.Name = in.form.Name
	t.Slug = in.form.Slug
	t.Description = in.form.Description
	t.ParentID = in.parentID
	if err := a.termStore.Update(ctx, t); err != nil {
		slog.Error("update term failed", "term_id", t.ID, "error", err)
		a.renderTermForm(w, r, http.StatusInternalServerError, def, t, "Failed to update the term.")
		return
	}

	a.runSaved(r, def.Name, t.ID)
	a.pageCache.InvalidateAll(ctx)
	http.Redirect(w, r, "/admin/terms/"+def.Name, http.StatusSeeOther)
}

// isDescendant reports whether candidate lies in t's subtree.
func (a *Admin) isDescendant(ctx context.Context, t *models.Term, candidate int64) bool {
	for _, c := range a.parentChoices(ctx, t) {
		if c.ID == candidate {
			return false
		}
	}
	return true
}

// TermDelete removes a term. Its metadata and post assignments cascade.
func (a *Admin) TermDelete(w http.ResponseWriter, r *http.Request) {
	def, ok := a.lookupTaxonomy(w, r)
	if !ok {
		return
	}
	t := a.loadTerm(w, r, def)
	if t == nil {
		return
	}
	ctx := r.Context()
	if err := a.termStore.Delete(ctx, t.ID); err != nil {
		slog.Error("delete term failed", "term_id", t.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.pageCache.InvalidateAll(ctx)
	http.Redirect(w, r, "/admin/terms/"+def.Name, http.StatusSeeOther)
}
