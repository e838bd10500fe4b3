// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package partner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// SaveMeta stores the partner fields submitted with a term form. It does
// nothing unless auth grants the edit-content capability. A field that is
// missing or sanitizes to nothing leaves the stored value as it was, so a
// saved logo or URL cannot be cleared from the form.
func SaveMeta(ctx context.Context, meta MetaWriter, auth Authorizer, termID int64, form url.Values) error {
	if auth == nil || !auth.CanEditContent(ctx) {
		return nil
	}

	var errs []error
	if logo := leadingInt(sanitizeNumber(form.Get(FieldLogo))); logo > 0 {
		if err := meta.SetMeta(ctx, termID, MetaLogo, strconv.FormatInt(logo, 10)); err != nil {
			errs = append(errs, fmt.Errorf("save partner logo: %w", err))
		}
	}
	if u := cleanURL(sanitizeText(form.Get(FieldURL))); u != "" {
		if err := meta.SetMeta(ctx, termID, MetaHomepageURL, u); err != nil {
			errs = append(errs, fmt.Errorf("save partner url: %w", err))
		}
	}
	return errors.Join(errs...)
}

// partnerMeta is the metadata of one partner as the renderers use it.
type partnerMeta struct {
	logo int64  // 0 when unset or not a number
	url  string // cleaned, "" when unset or unusable
}

// loadMeta reads both partner keys. Read errors are logged and treated as
// absent values.
func loadMeta(ctx context.Context, r MetaReader, termID int64) partnerMeta {
	var m partnerMeta
	if v, ok, err := r.GetMeta(ctx, termID, MetaLogo); err != nil {
		slog.Warn("read partner logo failed", "term_id", termID, "error", err)
	} else if ok {
		if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && id > 0 {
			m.logo = id
		}
	}
	if v, ok, err := r.GetMeta(ctx, termID, MetaHomepageURL); err != nil {
		slog.Warn("read partner url failed", "term_id", termID, "error", err)
	} else if ok {
		m.url = cleanURL(v)
	}
	return m
}

// sanitizeNumber keeps digits and sign characters only.
func sanitizeNumber(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '+' || r == '-' {
			return r
		}
		return -1
	}, s)
}

// leadingInt parses the optionally signed integer at the start of s and
// ignores whatever follows it. No leading number, or overflow, yields 0.
func leadingInt(s string) int64 {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

var tagRe = regexp.MustCompile(`<[^>]*>?`)

// sanitizeText strips markup and encodes quotes, leaving plain text.
func sanitizeText(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, `"`, "&#34;")
	s = strings.ReplaceAll(s, `'`, "&#39;")
	return strings.TrimSpace(s)
}

// urlDisallowed matches characters never kept in a URL.
var urlDisallowed = regexp.MustCompile(`[^a-zA-Z0-9\-~+_.?#=!&;,/:%@$|*'()\[\]\x{80}-\x{10FFFF}]`)

// schemeRe matches a leading URL scheme.
var schemeRe = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.\-]*):`)

var allowedSchemes = map[string]bool{
	"http": true, "https": true, "ftp": true, "ftps": true, "mailto": true,
	"news": true, "irc": true, "ircs": true, "gopher": true, "nntp": true,
	"feed": true, "telnet": true, "mms": true, "rtsp": true, "sms": true,
	"svn": true, "tel": true, "fax": true, "xmpp": true, "webcal": true, "urn": true,
}

// quoteEncoder percent-encodes quotes, including the entity forms
// sanitizeText leaves behind.
var quoteEncoder = strings.NewReplacer(
	"&#34;", "%22", "&#034;", "%22", "&quot;", "%22", `"`, "%22",
	"&#39;", "%27", "&#039;", "%27", "&apos;", "%27", "'", "%27",
	" ", "%20",
)

// cleanURL normalizes a user supplied URL. Spaces and quotes are
// percent-encoded, stray characters dropped, scheme-less hosts get
// http://, and anything with a scheme outside the allow-list comes back
// as "". The result is not HTML-escaped.
func cleanURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	u = quoteEncoder.Replace(u)
	u = urlDisallowed.ReplaceAllString(u, "")
	for _, bad := range []string{"%0d", "%0D", "%0a", "%0A", "%00"} {
		u = strings.ReplaceAll(u, bad, "")
	}
	if u == "" {
		return ""
	}

	if m := schemeRe.FindStringSubmatch(u); m != nil {
		if !allowedSchemes[strings.ToLower(m[1])] {
			return ""
		}
	} else if !strings.ContainsRune(u, ':') && !strings.ContainsAny(u[:1], "/#?") {
		u = "http://" + u
	}

	if _, err := url.Parse(u); err != nil {
		return ""
	}
	return u
}
