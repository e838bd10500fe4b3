// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package partner

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"partnerpress/internal/taxonomy"
)

// Badge logo size hint: at most 200px wide, height unconstrained.
const (
	badgeWidth  = 200
	badgeHeight = 999
)

// paragraphEnd is the marker the badge is spliced after.
const paragraphEnd = "</p>"

var badgeTmpl = template.Must(template.New("badge").Parse(
	`<div class="wp-block-group alignright"><div class="wp-block-group__inner-container">` +
		`<figure class="wp-block-image size-full is-resized">{{.Image}}` +
		`<figcaption>This story also appeared in {{.Name}}</figcaption>` +
		`</figure></div></div>`))

// InjectBadge floats a badge for the content's first partner right after
// the first closing paragraph tag, or at the very start when there is
// none. Content without partners is returned unchanged.
func InjectBadge(ctx context.Context, terms TermSource, assets Assets, contentID uuid.UUID, content string) string {
	partners, err := terms.TermsForContent(ctx, contentID, taxonomy.Partner)
	if err != nil {
		slog.Warn("load content partners failed", "content_id", contentID, "error", err)
		return content
	}
	if len(partners) == 0 {
		return content
	}

	first := partners[0]
	image := ""
	if m := loadMeta(ctx, terms, first.ID); m.logo != 0 {
		image = assets.ImageTag(ctx, m.logo, badgeWidth, badgeHeight)
	}

	badge, err := renderBadge(image, first.Name)
	if err != nil {
		slog.Warn("render partner badge failed", "term_id", first.ID, "error", err)
		return content
	}

	before, after, found := strings.Cut(content, paragraphEnd)
	if !found {
		return badge + content
	}
	return before + paragraphEnd + badge + after
}

// renderBadge builds the badge markup. image is trusted HTML from the
// asset resolver; name is escaped.
func renderBadge(image, name string) (string, error) {
	var buf bytes.Buffer
	err := badgeTmpl.Execute(&buf, struct {
		Image template.HTML
		Name  string
	}{template.HTML(image), name})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
