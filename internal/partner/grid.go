// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package partner

import (
	"context"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"partnerpress/internal/models"
	"partnerpress/internal/taxonomy"
)

// gridColumns is the number of columns partners are dealt into.
const gridColumns = 3

// columnPolicy is the allow-list each column passes through before it is
// emitted: text blocks, links, images, captions and separators, with class
// attributes. No scripts, styles or event handlers survive.
var columnPolicy = newColumnPolicy()

func newColumnPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")

	p.AllowElements("p", "br", "strong", "em", "b", "i", "figure", "figcaption", "hr")
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowAttrs("src", "alt", "width", "height", "loading").OnElements("img")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[\w\s-]*$`)).Globally()
	return p
}

// RenderGrid lists every partner term, including ones without posts, in a
// three-column layout. Partners are dealt round-robin in the order the
// term source returns them: the i-th partner lands in column i mod 3.
// With no partners the three columns are empty.
func RenderGrid(ctx context.Context, terms TermSource, assets Assets) string {
	partners, err := terms.ListByTaxonomy(ctx, taxonomy.Partner, false)
	if err != nil {
		slog.Warn("list partners failed", "error", err)
		partners = nil
	}

	var columns [gridColumns]strings.Builder
	current := 0
	for _, p := range partners {
		columns[current].WriteString(partnerBlock(ctx, terms, assets, p))
		current = (current + 1) % gridColumns
	}

	var out strings.Builder
	out.WriteString(`<div class="wp-block-columns is-style-borders">`)
	for i := range columns {
		out.WriteString(`<div class="wp-block-column">`)
		out.WriteString(columnPolicy.Sanitize(columns[i].String()))
		out.WriteString(`</div>`)
	}
	out.WriteString(`</div>`)
	return out.String()
}

// partnerBlock renders one grid entry: the logo (linked when a homepage is
// known), the name (likewise linked), and a separator.
func partnerBlock(ctx context.Context, meta MetaReader, assets Assets, p models.Term) string {
	m := loadMeta(ctx, meta, p.ID)

	var b strings.Builder
	if m.logo != 0 {
		if src := assets.ImageURL(ctx, m.logo, 0, 0); src != "" {
			logo := `<figure class="wp-block-image"><img class="aligncenter" src="` + html.EscapeString(src) + `" /></figure>`
			b.WriteString(wrapLink(logo, m.url))
		}
	}

	b.WriteString(`<p class="has-text-align-center">`)
	b.WriteString(wrapLink(html.EscapeString(p.Name), m.url))
	b.WriteString(`</p>`)
	b.WriteString(`<hr class="wp-block-separator is-style-wide">`)
	return b.String()
}

// wrapLink wraps inner in a link to href, or returns it unchanged when
// href is empty.
func wrapLink(inner, href string) string {
	if href == "" {
		return inner
	}
	return `<a href="` + html.EscapeString(href) + `">` + inner + `</a>`
}
