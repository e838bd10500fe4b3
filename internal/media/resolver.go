// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package media resolves stored media references into public URLs and
// ready-to-embed <img> elements. Unknown, deleted, or non-image references
// resolve to the empty string so callers can omit the fragment.
package media

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"partnerpress/internal/imaging"
	"partnerpress/internal/models"
)

// Finder loads media rows by ID.
type Finder interface {
	FindByID(ctx context.Context, id int64) (*models.Media, error)
}

// URLBuilder turns an object key into a public URL.
type URLBuilder interface {
	FileURL(key string) string
}

// Resolver implements asset resolution over the media table and the
// object store.
type Resolver struct {
	media   Finder
	storage URLBuilder
}

// NewResolver creates a Resolver. storage may be nil when uploads are
// disabled, in which case every lookup resolves to "".
func NewResolver(media Finder, storage URLBuilder) *Resolver {
	return &Resolver{media: media, storage: storage}
}

// image is a resolved rendition of a media item.
type image struct {
	url           string
	width, height int
	alt           string
}

// lookup picks the rendition for a size hint. A width hint at or below the
// badge width prefers the badge variant when one exists.
func (r *Resolver) lookup(ctx context.Context, id int64, width int) (image, bool) {
	if id <= 0 || r.storage == nil || r.media == nil {
		return image{}, false
	}
	m, err := r.media.FindByID(ctx, id)
	if err != nil {
		slog.Warn("media lookup failed", "media_id", id, "error", err)
		return image{}, false
	}
	if m == nil || !m.IsImage() {
		return image{}, false
	}

	img := image{url: r.storage.FileURL(m.S3Key), width: m.Width, height: m.Height}
	if m.AltText != nil {
		img.alt = *m.AltText
	}
	if width > 0 && width <= imaging.Badge.Width && m.BadgeS3Key != nil {
		img.url = r.storage.FileURL(*m.BadgeS3Key)
		img.width, img.height = imaging.FitWidth(m.Width, m.Height, imaging.Badge.Width)
	}
	return img, true
}

// ImageURL returns the URL of the media item for the given size hint
// (0 means full size), or "" when it cannot be resolved.
func (r *Resolver) ImageURL(ctx context.Context, id int64, width, height int) string {
	img, ok := r.lookup(ctx, id, width)
	if !ok {
		return ""
	}
	return img.url
}

// ImageTag returns an <img> element constrained to fit inside width x height
// (0 leaves that side unconstrained), or "" when the item cannot be resolved.
func (r *Resolver) ImageTag(ctx context.Context, id int64, width, height int) string {
	img, ok := r.lookup(ctx, id, width)
	if !ok {
		return ""
	}

	w, h := constrain(img.width, img.height, width, height)
	size := "full"
	if width > 0 || height > 0 {
		size = fmt.Sprintf("%dx%d", width, height)
	}

	dims := ""
	if w > 0 && h > 0 {
		dims = fmt.Sprintf(`width="%d" height="%d" `, w, h)
	}
	return fmt.Sprintf(`<img %ssrc="%s" class="attachment-%s size-%s" alt="%s" loading="lazy" />`,
		dims, html.EscapeString(img.url), size, size, html.EscapeString(img.alt))
}

// constrain shrinks w x h proportionally to fit inside maxW x maxH.
func constrain(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	w, h = imaging.FitWidth(w, h, maxW)
	if maxH > 0 && h > maxH {
		w, h = imaging.FitWidth(h, w, maxH)
		w, h = h, w
	}
	return w, h
}
