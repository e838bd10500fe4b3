// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"context"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"partnerpress/internal/markdown"
	"partnerpress/internal/models"
)

// HookContent is the filter hook applied to every rendered post body.
const HookContent = "the_content"

// Filter transforms a rendered body. c is the content item being rendered.
type Filter func(ctx context.Context, c *models.Content, body string) string

// Shortcode expands one inline macro. inner is the enclosed text for the
// [tag]...[/tag] form and empty otherwise.
type Shortcode func(ctx context.Context, attrs map[string]string, inner string) string

// Pipeline turns a stored content body into display HTML: Markdown
// conversion, the named content filters in registration order, then
// shortcode expansion. Filters see shortcodes unexpanded. Registration normally happens once at startup, but
// the pipeline is safe for concurrent use either way.
type Pipeline struct {
	mu         sync.RWMutex
	filters    map[string][]Filter
	shortcodes map[string]Shortcode
}

// NewPipeline returns an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		filters:    make(map[string][]Filter),
		shortcodes: make(map[string]Shortcode),
	}
}

// AddFilter appends fn to the filters run for hook.
func (p *Pipeline) AddFilter(hook string, fn Filter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filters[hook] = append(p.filters[hook], fn)
}

// AddShortcode registers the handler for [tag]. A later registration for
// the same tag replaces the earlier one.
func (p *Pipeline) AddShortcode(tag string, fn Shortcode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shortcodes[strings.ToLower(tag)] = fn
}

// HasShortcode reports whether tag is registered.
func (p *Pipeline) HasShortcode(tag string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.shortcodes[strings.ToLower(tag)]
	return ok
}

// ApplyFilters runs every filter registered for hook over body.
func (p *Pipeline) ApplyFilters(ctx context.Context, hook string, c *models.Content, body string) string {
	p.mu.RLock()
	filters := p.filters[hook]
	p.mu.RUnlock()

	for _, fn := range filters {
		body = fn(ctx, c, body)
	}
	return body
}

// Content renders a content item's body for display.
func (p *Pipeline) Content(ctx context.Context, c *models.Content) string {
	body := c.Body
	if c.BodyFormat == models.BodyFormatMarkdown {
		rendered, err := markdown.ToHTML(body)
		if err != nil {
			slog.Warn("markdown conversion failed, using raw body", "content_id", c.ID, "error", err)
		} else {
			body = unwrapShortcodes(rendered)
		}
	}
	body = p.ApplyFilters(ctx, HookContent, c, body)
	return p.DoShortcodes(ctx, body)
}

// shortcodeRe matches an opening tag: [tag], [tag attr="v"], [tag /], and
// the escaped form [[tag]].
var shortcodeRe = regexp.MustCompile(`\[(\[?)([A-Za-z0-9_-]+)((?:\s[^\[\]]*?)?)\s*(/?)\](\]?)`)

// attrRe matches name="value", name='value' and name=value pairs.
var attrRe = regexp.MustCompile(`([\w-]+)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"']+))`)

// loneShortcodeRe matches a paragraph that holds nothing but a shortcode.
var loneShortcodeRe = regexp.MustCompile(`<p>\s*(\[[A-Za-z0-9_-][^\[\]]*\])\s*</p>`)

// unwrapShortcodes drops the <p> Markdown puts around a shortcode that
// stands on its own line, so block-level output is not nested in a <p>.
func unwrapShortcodes(body string) string {
	return loneShortcodeRe.ReplaceAllString(body, "$1")
}

// DoShortcodes expands every registered shortcode in body. Unknown tags are
// left as written; [[tag]] renders literally as [tag].
func (p *Pipeline) DoShortcodes(ctx context.Context, body string) string {
	if !strings.Contains(body, "[") {
		return body
	}

	var out strings.Builder
	pos := 0
	for pos < len(body) {
		loc := shortcodeRe.FindStringSubmatchIndex(body[pos:])
		if loc == nil {
			break
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}

		start, end := loc[0], loc[1]
		escOpen := body[loc[2]:loc[3]]
		tag := strings.ToLower(body[loc[4]:loc[5]])
		rawAttrs := body[loc[6]:loc[7]]
		selfClosing := loc[9] > loc[8]
		escClose := body[loc[10]:loc[11]]

		p.mu.RLock()
		fn, ok := p.shortcodes[tag]
		p.mu.RUnlock()

		out.WriteString(body[pos:start])

		if !ok {
			// Resume just past the '[' so a registered tag nested in an
			// unknown one's brackets is still found.
			out.WriteString(body[start : start+1])
			pos = start + 1
			continue
		}

		if escOpen == "[" && escClose == "]" {
			out.WriteString(body[start+1 : end-1])
			pos = end
			continue
		}
		if escOpen == "[" {
			out.WriteString("[")
		}

		inner := ""
		next := end
		if escClose == "]" {
			// The trailing bracket belongs to the surrounding text.
			next--
		} else if !selfClosing {
			closing := "[/" + tag + "]"
			if idx := strings.Index(strings.ToLower(body[end:]), closing); idx >= 0 {
				inner = body[end : end+idx]
				next = end + idx + len(closing)
			}
		}

		out.WriteString(fn(ctx, parseAttrs(rawAttrs), inner))
		pos = next
	}
	out.WriteString(body[pos:])
	return out.String()
}

// parseAttrs reads shortcode attributes into a map with lower-cased keys.
// Markdown output entity-encodes the quotes, so entities are decoded first.
func parseAttrs(raw string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(html.UnescapeString(raw), -1) {
		value := m[2]
		if m[3] != "" {
			value = m[3]
		} else if m[4] != "" {
			value = m[4]
		}
		attrs[strings.ToLower(m[1])] = value
	}
	return attrs
}
