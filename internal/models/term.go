// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Term is a node in a hierarchical taxonomy tree ("Partner", "Special Report").
// Terms are assigned to posts through the content_terms join table.
type Term struct {
	ID          int64     `json:"id"`
	Taxonomy    string    `json:"taxonomy"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ParentID    *int64    `json:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Virtual fields populated by store methods.
	Depth     int `json:"depth"`
	PostCount int `json:"post_count"`
}

// HasParent reports whether the term sits below another term.
func (t *Term) HasParent() bool {
	return t.ParentID != nil
}
