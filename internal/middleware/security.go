// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
)

// contentSecurityPolicy builds the policy for the given image origins.
// Partner logos are served from the object store, so its origin must be
// listed; with none given any https origin is allowed. Inline style
// attributes stay allowed for the logo preview markup.
func contentSecurityPolicy(imageOrigins []string) string {
	img := []string{"'self'", "data:"}
	var extra int
	for _, o := range imageOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			img = append(img, o)
			extra++
		}
	}
	if extra == 0 {
		img = append(img, "https:")
	}
	return "default-src 'self'; img-src " + strings.Join(img, " ") +
		"; style-src 'self' 'unsafe-inline'; object-src 'none'; base-uri 'self'; frame-ancestors 'self'"
}

// SecureHeaders returns middleware adding security-related HTTP headers
// to every response.
func SecureHeaders(imageOrigins ...string) func(http.Handler) http.Handler {
	csp := contentSecurityPolicy(imageOrigins)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("X-XSS-Protection", "0")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "interest-cohort=()")
			h.Set("Content-Security-Policy", csp)
			next.ServeHTTP(w, r)
		})
	}
}
