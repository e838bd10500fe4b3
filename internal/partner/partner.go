// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package partner attaches media-partner metadata to terms of the partner
// taxonomy and projects it onto content.
//
// Two metadata keys are recognised on each partner term: a logo (an
// integer media ID) and a homepage URL. Editors set them through extra
// fields on the term forms (SaveMeta, AddFormFields, EditFormFields).
// Readers see them in two places: the [partners] shortcode lays every
// partner out in a three-column grid (RenderGrid), and the content filter
// floats a "This story also appeared in ..." badge for a post's first
// partner after its opening paragraph (InjectBadge).
//
// Nothing here fails a render. Missing metadata, unresolvable logos and
// store errors all degrade to leaving the affected fragment out.
package partner

import (
	"context"

	"github.com/google/uuid"

	"partnerpress/internal/engine"
	"partnerpress/internal/models"
)

// Metadata keys stored on partner terms.
const (
	MetaLogo        = "logo"
	MetaHomepageURL = "partner_homepage_url"
)

// Form field names read on term create and edit.
const (
	FieldLogo = "partner_logo"
	FieldURL  = "partner_url"
)

// ShortcodeTag is the inline macro that renders the partner grid.
const ShortcodeTag = "partners"

// MetaReader reads term metadata. ok is false when the key was never set.
type MetaReader interface {
	GetMeta(ctx context.Context, termID int64, key string) (value string, ok bool, err error)
}

// MetaWriter stores term metadata, replacing any previous value.
type MetaWriter interface {
	SetMeta(ctx context.Context, termID int64, key, value string) error
}

// TermSource is the read side of the taxonomy service.
type TermSource interface {
	MetaReader
	ListByTaxonomy(ctx context.Context, taxonomy string, hideEmpty bool) ([]models.Term, error)
	TermsForContent(ctx context.Context, contentID uuid.UUID, taxonomy string) ([]models.Term, error)
}

// Assets resolves media references. Both methods return "" for missing or
// invalid references. width and height are size hints; 0 means unconstrained.
type Assets interface {
	ImageURL(ctx context.Context, id int64, width, height int) string
	ImageTag(ctx context.Context, id int64, width, height int) string
}

// Authorizer answers whether the acting user may edit content.
type Authorizer interface {
	CanEditContent(ctx context.Context) bool
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context) bool

// CanEditContent calls f(ctx).
func (f AuthorizerFunc) CanEditContent(ctx context.Context) bool { return f(ctx) }

// Pipeline is where the content filter and shortcode get registered.
type Pipeline interface {
	AddFilter(hook string, fn engine.Filter)
	AddShortcode(tag string, fn engine.Shortcode)
}

// Deps are the collaborators the rendering side needs.
type Deps struct {
	Terms  TermSource
	Assets Assets
}

// Register installs the partner grid shortcode and the badge content
// filter on p.
func Register(p Pipeline, d Deps) {
	p.AddShortcode(ShortcodeTag, func(ctx context.Context, _ map[string]string, _ string) string {
		return RenderGrid(ctx, d.Terms, d.Assets)
	})
	p.AddFilter(engine.HookContent, func(ctx context.Context, c *models.Content, body string) string {
		if c == nil {
			return body
		}
		return InjectBadge(ctx, d.Terms, d.Assets, c.ID, body)
	})
}
