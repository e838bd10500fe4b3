// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for PartnerPress.
// Handlers are grouped by concern (admin, public, auth) and receive
// their dependencies through the handler struct.
package handlers

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"partnerpress/internal/cache"
	"partnerpress/internal/media"
	"partnerpress/internal/middleware"
	"partnerpress/internal/models"
	"partnerpress/internal/render"
	"partnerpress/internal/slug"
	"partnerpress/internal/storage"
	"partnerpress/internal/store"
	"partnerpress/internal/taxonomy"
)

// TermHooks extends the term screens of one taxonomy with extra fields.
// Any hook may be nil.
type TermHooks struct {
	// AddFields renders extra inputs for the "add term" form.
	AddFields func() template.HTML
	// EditFields renders extra rows for the edit form of an existing term.
	EditFields func(ctx context.Context, termID int64) template.HTML
	// Saved runs after a term is created or updated, with the submitted form.
	Saved func(ctx context.Context, termID int64, form url.Values) error
}

// Admin groups all admin panel HTTP handlers and their dependencies.
type Admin struct {
	renderer      *render.Renderer
	taxonomies    *taxonomy.Registry
	contentStore  *store.ContentStore
	termStore     *store.TermStore
	mediaStore    *store.MediaStore
	storageClient *storage.Client
	resolver      *media.Resolver
	pageCache     *cache.PageCache
	termHooks     map[string]TermHooks
}

// NewAdmin creates a new Admin handler group. storageClient may be nil if
// S3 is not configured; pageCache may be nil to disable invalidation.
func NewAdmin(renderer *render.Renderer, taxonomies *taxonomy.Registry, contentStore *store.ContentStore, termStore *store.TermStore, mediaStore *store.MediaStore, storageClient *storage.Client, resolver *media.Resolver, pageCache *cache.PageCache) *Admin {
	return &Admin{
		renderer:      renderer,
		taxonomies:    taxonomies,
		contentStore:  contentStore,
		termStore:     termStore,
		mediaStore:    mediaStore,
		storageClient: storageClient,
		resolver:      resolver,
		pageCache:     pageCache,
		termHooks:     make(map[string]TermHooks),
	}
}

// RegisterTermHooks attaches form and save hooks to a taxonomy's term
// screens. Call during startup, before serving.
func (a *Admin) RegisterTermHooks(taxonomyName string, hooks TermHooks) {
	a.termHooks[taxonomyName] = hooks
}

// --- Posts CRUD ---

// postRow is one line of the posts table: the post plus its term names for
// every taxonomy shown as an admin column.
type postRow struct {
	Item  models.Content
	Terms []string
}

// termOption is a checkbox in a post form's taxonomy box.
type termOption struct {
	Term     models.Term
	Selected bool
}

// termBox groups the checkboxes of one taxonomy.
type termBox struct {
	Taxonomy taxonomy.Definition
	Options  []termOption
}

// adminColumns returns the taxonomies displayed as columns on the posts list.
func (a *Admin) adminColumns() []taxonomy.Definition {
	var cols []taxonomy.Definition
	for _, d := range a.taxonomies.Definitions() {
		if d.ShowAdminColumn {
			cols = append(cols, d)
		}
	}
	return cols
}

// PostsList renders the posts management page.
func (a *Admin) PostsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	posts, err := a.contentStore.ListByType(ctx, models.ContentTypePost)
	if err != nil {
		slog.Error("list posts failed", "error", err)
	}

	cols := a.adminColumns()
	rows := make([]postRow, 0, len(posts))
	for _, p := range posts {
		row := postRow{Item: p, Terms: make([]string, len(cols))}
		for i, def := range cols {
			row.Terms[i] = a.termNames(ctx, p.ID, def.Name)
		}
		rows = append(rows, row)
	}

	a.renderer.Page(w, r, "posts", &render.PageData{
		Title:   "Posts",
		Section: "posts",
		Data: map[string]any{
			"Columns": cols,
			"Rows":    rows,
		},
	})
}

// termNames joins a post's term names for one taxonomy, "—" when none.
func (a *Admin) termNames(ctx context.Context, contentID uuid.UUID, taxonomyName string) string {
	terms, err := a.termStore.TermsForContent(ctx, contentID, taxonomyName)
	if err != nil {
		slog.Warn("load post terms failed", "content_id", contentID, "taxonomy", taxonomyName, "error", err)
	}
	if len(terms) == 0 {
		return "—"
	}
	names := make([]string, len(terms))
	for i, t := range terms {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

// termBoxes builds the taxonomy checkboxes for a post form. selected maps
// taxonomy name to the term IDs currently assigned.
func (a *Admin) termBoxes(ctx context.Context, selected map[string][]int64) []termBox {
	var boxes []termBox
	for _, def := range a.taxonomies.Definitions() {
		terms, err := a.termStore.FlatTree(ctx, def.Name)
		if err != nil {
			slog.Error("load terms for post form failed", "taxonomy", def.Name, "error", err)
		}
		box := termBox{Taxonomy: def}
		for _, t := range terms {
			box.Options = append(box.Options, termOption{Term: t, Selected: containsID(selected[def.Name], t.ID)})
		}
		boxes = append(boxes, box)
	}
	return boxes
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// selectedTerms reads the submitted term IDs for every taxonomy, keeping
// the order the browser sent them in.
func (a *Admin) selectedTerms(form url.Values) map[string][]int64 {
	out := make(map[string][]int64)
	for _, def := range a.taxonomies.Definitions() {
		out[def.Name] = parseIDs(form["tax_"+def.Name])
	}
	return out
}

// parseIDs converts form values to positive IDs, dropping junk and
// duplicates.
func parseIDs(values []string) []int64 {
	var ids []int64
	for _, v := range values {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || id <= 0 || containsID(ids, id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// PostNew renders the new post form.
func (a *Admin) PostNew(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "post_form", &render.PageData{
		Title:   "Add New Post",
		Section: "posts",
		Data: map[string]any{
			"IsNew":     true,
			"TermBoxes": a.termBoxes(r.Context(), nil),
		},
	})
}

// postFromForm applies the submitted fields to c.
func postFromForm(r *http.Request, c *models.Content) {
	c.Title = strings.TrimSpace(r.FormValue("title"))
	c.Slug = strings.TrimSpace(r.FormValue("slug"))
	c.Body = r.FormValue("body")
	c.Status = models.ContentStatusDraft
	if models.ContentStatus(r.FormValue("status")) == models.ContentStatusPublished {
		c.Status = models.ContentStatusPublished
	}
	c.BodyFormat = models.BodyFormatMarkdown
	if models.BodyFormat(r.FormValue("body_format")) == models.BodyFormatHTML {
		c.BodyFormat = models.BodyFormatHTML
	}
	c.Excerpt = nil
	if excerpt := strings.TrimSpace(r.FormValue("excerpt")); excerpt != "" {
		c.Excerpt = &excerpt
	}
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Title)
	}
}

// PostCreate handles the new post form submission.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	sess := middleware.SessionFromCtx(ctx)

	c := &models.Content{Type: models.ContentTypePost, AuthorID: sess.UserID}
	postFromForm(r, c)
	selected := a.selectedTerms(r.PostForm)

	renderError := func(msg string) {
		a.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "post_form", &render.PageData{
			Title:   "Add New Post",
			Section: "posts",
			Data: map[string]any{
				"IsNew":     true,
				"Item":      c,
				"TermBoxes": a.termBoxes(ctx, selected),
				"Error":     msg,
			},
		})
	}

	if msg := validateContent(c.Title, c.Slug, c.Body); msg != "" {
		renderError(msg)
		return
	}
	if msg := validateExcerpt(c.Excerpt); msg != "" {
		renderError(msg)
		return
	}

	created, err := a.contentStore.Create(ctx, c)
	if err != nil {
		slog.Error("create post failed", "error", err)
		renderError("Failed to create. The slug may already exist.")
		return
	}

	a.saveTerms(ctx, created.ID, selected)
	a.invalidatePost(ctx, created)
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

// saveTerms replaces the post's assignments in every taxonomy.
func (a *Admin) saveTerms(ctx context.Context, contentID uuid.UUID, selected map[string][]int64) {
	for _, def := range a.taxonomies.Definitions() {
		if err := a.termStore.SetContentTerms(ctx, contentID, def.Name, selected[def.Name]); err != nil {
			slog.Error("save post terms failed", "content_id", contentID, "taxonomy", def.Name, "error", err)
		}
	}
}

// loadPost resolves the {id} URL parameter to a post.
func (a *Admin) loadPost(w http.ResponseWriter, r *http.Request) *models.Content {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil
	}
	item, err := a.contentStore.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find post failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if item == nil || item.Type != models.ContentTypePost {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil
	}
	return item
}

// assignedTerms returns the post's current term IDs per taxonomy.
func (a *Admin) assignedTerms(ctx context.Context, contentID uuid.UUID) map[string][]int64 {
	out := make(map[string][]int64)
	for _, def := range a.taxonomies.Definitions() {
		terms, err := a.termStore.TermsForContent(ctx, contentID, def.Name)
		if err != nil {
			slog.Warn("load post terms failed", "content_id", contentID, "error", err)
			continue
		}
		for _, t := range terms {
			out[def.Name] = append(out[def.Name], t.ID)
		}
	}
	return out
}

// PostEdit renders the edit form for a post.
func (a *Admin) PostEdit(w http.ResponseWriter, r *http.Request) {
	item := a.loadPost(w, r)
	if item == nil {
		return
	}
	a.renderer.Page(w, r, "post_form", &render.PageData{
		Title:   "Edit Post",
		Section: "posts",
		Data: map[string]any{
			"IsNew":     false,
			"Item":      item,
			"TermBoxes": a.termBoxes(r.Context(), a.assignedTerms(r.Context(), item.ID)),
		},
	})
}

// PostUpdate handles the edit form submission.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	item := a.loadPost(w, r)
	if item == nil {
		return
	}
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	oldSlug := item.Slug
	postFromForm(r, item)
	selected := a.selectedTerms(r.PostForm)

	renderError := func(msg string) {
		a.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "post_form", &render.PageData{
			Title:   "Edit Post",
			Section: "posts",
			Data: map[string]any{
				"IsNew":     false,
				"Item":      item,
				"TermBoxes": a.termBoxes(ctx, selected),
				"Error":     msg,
			},
		})
	}

	if msg := validateContent(item.Title, item.Slug, item.Body); msg != "" {
		renderError(msg)
		return
	}
	if msg := validateExcerpt(item.Excerpt); msg != "" {
		renderError(msg)
		return
	}

	// Archives of terms being removed must be refreshed too.
	a.invalidatePost(ctx, item)

	if err := a.contentStore.Update(ctx, item); err != nil {
		slog.Error("update post failed", "id", item.ID, "error", err)
		renderError("Failed to update. The slug may already exist.")
		return
	}

	a.saveTerms(ctx, item.ID, selected)
	a.invalidatePost(ctx, item)
	a.pageCache.Invalidate(ctx, cache.PostKey(oldSlug))
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

// PostDelete removes a post.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	item := a.loadPost(w, r)
	if item == nil {
		return
	}
	ctx := r.Context()

	a.invalidatePost(ctx, item)
	if err := a.contentStore.Delete(ctx, item.ID); err != nil {
		slog.Error("delete post failed", "id", item.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

// invalidatePost drops the cached homepage, the post itself and the
// archives of every term it is currently filed under.
func (a *Admin) invalidatePost(ctx context.Context, c *models.Content) {
	if a.pageCache == nil {
		return
	}
	keys := []string{cache.HomepageKey(), cache.PostKey(c.Slug)}
	for _, def := range a.taxonomies.Definitions() {
		if !def.Public {
			continue
		}
		terms, err := a.termStore.TermsForContent(ctx, c.ID, def.Name)
		if err != nil {
			continue
		}
		for _, t := range terms {
			keys = append(keys, cache.ArchiveKey(def.Rewrite, t.Slug))
		}
	}
	a.pageCache.Invalidate(ctx, keys...)
}
