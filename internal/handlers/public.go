// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"partnerpress/internal/cache"
	"partnerpress/internal/engine"
	"partnerpress/internal/models"
	"partnerpress/internal/store"
	"partnerpress/internal/taxonomy"
)

// Public serves the public site. Rendered pages go through the Valkey page
// cache; a miss renders through the engine, whose pipeline applies the
// partner badge and [partners] shortcode.
type Public struct {
	engine       *engine.Engine
	contentStore *store.ContentStore
	termStore    *store.TermStore
	pageCache    *cache.PageCache
}

// NewPublic creates a new Public handler group. pageCache may be nil.
func NewPublic(eng *engine.Engine, contentStore *store.ContentStore, termStore *store.TermStore, pageCache *cache.PageCache) *Public {
	return &Public{
		engine:       eng,
		contentStore: contentStore,
		termStore:    termStore,
		pageCache:    pageCache,
	}
}

// serveCached writes a cached page and reports whether there was one.
func (p *Public) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	cached, ok := p.pageCache.Get(r.Context(), key)
	if !ok {
		return false
	}
	writeHTML(w, cached)
	return true
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

// Homepage lists the latest published posts.
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if p.serveCached(w, r, cache.HomepageKey()) {
		return
	}

	posts, err := p.contentStore.ListPublishedByType(ctx, models.ContentTypePost)
	if err != nil {
		slog.Error("list published posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rendered, err := p.engine.RenderPostList("Latest stories", "", posts)
	if err != nil {
		slog.Error("render homepage failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	p.pageCache.Set(ctx, cache.HomepageKey(), rendered)
	writeHTML(w, rendered)
}

// Page renders a published post or page by its slug.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")
	key := cache.PostKey(slugParam)
	if p.serveCached(w, r, key) {
		return
	}

	content, err := p.contentStore.FindBySlug(ctx, slugParam)
	if err != nil {
		slog.Error("find content by slug failed", "slug", slugParam, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if content == nil {
		http.NotFound(w, r)
		return
	}

	rendered, err := p.engine.RenderPage(ctx, content)
	if err != nil {
		slog.Error("render page failed", "slug", slugParam, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	p.pageCache.Set(ctx, key, rendered)
	writeHTML(w, rendered)
}

// Archive returns the handler for /{rewrite}/{slug} of one public
// taxonomy: the published posts filed under the term.
func (p *Public) Archive(def taxonomy.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		termSlug := chi.URLParam(r, "slug")
		key := cache.ArchiveKey(def.Rewrite, termSlug)
		if p.serveCached(w, r, key) {
			return
		}

		term, err := p.termStore.FindBySlug(ctx, def.Name, termSlug)
		if err != nil {
			slog.Error("find term failed", "taxonomy", def.Name, "slug", termSlug, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if term == nil {
			http.NotFound(w, r)
			return
		}

		posts, err := p.contentStore.ListPublishedByTerm(ctx, term.ID)
		if err != nil {
			slog.Error("list term posts failed", "term_id", term.ID, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		rendered, err := p.engine.RenderPostList(def.Labels.SingularName+": "+term.Name, term.Description, posts)
		if err != nil {
			slog.Error("render archive failed", "term_id", term.ID, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		p.pageCache.Set(ctx, key, rendered)
		writeHTML(w, rendered)
	}
}
