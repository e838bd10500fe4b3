// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validation limits for post and term fields.
const (
	maxTitleLen    = 300
	maxSlugLen     = 200
	maxBodyLen     = 100_000
	maxExcerptLen  = 1_000
	maxTermNameLen = 200
	maxTermDescLen = 2_000
)

// validateContent checks post form inputs and returns the first error found.
func validateContent(title, slug, body string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if msg := tooLong("Title", title, maxTitleLen); msg != "" {
		return msg
	}
	if msg := tooLong("Slug", slug, maxSlugLen); msg != "" {
		return msg
	}
	return tooLong("Body", body, maxBodyLen)
}

func validateExcerpt(excerpt *string) string {
	if excerpt == nil {
		return ""
	}
	return tooLong("Excerpt", *excerpt, maxExcerptLen)
}

// validateTerm checks the core term fields.
func validateTerm(name, slug, description string) string {
	if strings.TrimSpace(name) == "" {
		return "Name is required."
	}
	if msg := tooLong("Name", name, maxTermNameLen); msg != "" {
		return msg
	}
	if msg := tooLong("Slug", slug, maxSlugLen); msg != "" {
		return msg
	}
	return tooLong("Description", description, maxTermDescLen)
}

func tooLong(field, value string, limit int) string {
	if utf8.RuneCountInString(value) > limit {
		return fmt.Sprintf("%s is too long (max %d characters).", field, limit)
	}
	return ""
}
