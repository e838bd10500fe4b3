// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine renders public pages. Bodies go through the content
// Pipeline (Markdown, shortcodes, content filters) and are laid out with
// the embedded site templates.
package engine

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"

	"partnerpress/internal/models"
	"partnerpress/internal/taxonomy"
)

//go:embed templates/*.html
var templateFS embed.FS

// TermLink is a taxonomy term shown under a post title.
type TermLink struct {
	Name string
	URL  string
}

// PageData holds the variables available to page.html.
type PageData struct {
	SiteName    string
	Title       string
	Body        template.HTML // pipeline output
	Slug        string
	PublishedAt string
	Terms       []TermLink
	Year        int
}

// PostItem is one entry in a listing.
type PostItem struct {
	Title       string
	Slug        string
	Excerpt     string
	PublishedAt string
}

// ListData holds the variables available to list.html.
type ListData struct {
	SiteName    string
	Title       string
	Description string
	Posts       []PostItem
	Year        int
}

// TermLister reads a content item's terms for one taxonomy.
type TermLister interface {
	TermsForContent(ctx context.Context, contentID uuid.UUID, taxonomy string) ([]models.Term, error)
}

// Engine renders public pages.
type Engine struct {
	pipeline   *Pipeline
	taxonomies *taxonomy.Registry
	terms      TermLister
	siteName   string
	page       *template.Template
	list       *template.Template
}

// New parses the embedded site templates.
func New(pipeline *Pipeline, taxonomies *taxonomy.Registry, terms TermLister, siteName string) (*Engine, error) {
	page, err := template.ParseFS(templateFS, "templates/layout.html", "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	list, err := template.ParseFS(templateFS, "templates/layout.html", "templates/list.html")
	if err != nil {
		return nil, fmt.Errorf("parse list template: %w", err)
	}
	return &Engine{
		pipeline:   pipeline,
		taxonomies: taxonomies,
		terms:      terms,
		siteName:   siteName,
		page:       page,
		list:       list,
	}, nil
}

// Pipeline returns the content pipeline used for bodies.
func (e *Engine) Pipeline() *Pipeline {
	return e.pipeline
}

// RenderPage renders a single post or page.
func (e *Engine) RenderPage(ctx context.Context, c *models.Content) ([]byte, error) {
	data := PageData{
		SiteName: e.siteName,
		Title:    c.Title,
		Body:     template.HTML(e.pipeline.Content(ctx, c)),
		Slug:     c.Slug,
		Year:     time.Now().Year(),
	}
	if c.PublishedAt != nil {
		data.PublishedAt = c.PublishedAt.Format("January 2, 2006")
	}
	if c.Type == models.ContentTypePost {
		data.Terms = e.termLinks(ctx, c)
	}
	return execute(e.page, data)
}

// termLinks collects archive links for every public taxonomy the post is
// filed under. Lookup failures drop the links rather than the page.
func (e *Engine) termLinks(ctx context.Context, c *models.Content) []TermLink {
	if e.terms == nil || e.taxonomies == nil {
		return nil
	}
	var links []TermLink
	for _, def := range e.taxonomies.Definitions() {
		if !def.Public {
			continue
		}
		terms, err := e.terms.TermsForContent(ctx, c.ID, def.Name)
		if err != nil {
			continue
		}
		for _, t := range terms {
			links = append(links, TermLink{Name: t.Name, URL: "/" + def.Rewrite + "/" + t.Slug})
		}
	}
	return links
}

// RenderPostList renders a listing of posts under a heading.
func (e *Engine) RenderPostList(title, description string, posts []models.Content) ([]byte, error) {
	items := make([]PostItem, 0, len(posts))
	for _, p := range posts {
		item := PostItem{Title: p.Title, Slug: p.Slug}
		if p.Excerpt != nil {
			item.Excerpt = *p.Excerpt
		}
		if p.PublishedAt != nil {
			item.PublishedAt = p.PublishedAt.Format("January 2, 2006")
		}
		items = append(items, item)
	}

	return execute(e.list, ListData{
		SiteName:    e.siteName,
		Title:       title,
		Description: description,
		Posts:       items,
		Year:        time.Now().Year(),
	})
}

func execute(t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return buf.Bytes(), nil
}
