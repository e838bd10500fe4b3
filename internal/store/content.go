// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"partnerpress/internal/models"
)

// ContentStore handles all content-related database operations.
// It serves both posts and pages through the unified content table.
type ContentStore struct {
	db *sql.DB
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

const contentColumns = `id, type, title, slug, body, body_format, excerpt, status,
	author_id, published_at, created_at, updated_at`

func scanContent(scanner interface{ Scan(...any) error }) (*models.Content, error) {
	var c models.Content
	err := scanner.Scan(
		&c.ID, &c.Type, &c.Title, &c.Slug, &c.Body, &c.BodyFormat, &c.Excerpt,
		&c.Status, &c.AuthorID, &c.PublishedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ContentStore) list(ctx context.Context, query string, args ...any) ([]models.Content, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ListByType returns all content items of the given type, newest first.
func (s *ContentStore) ListByType(ctx context.Context, contentType models.ContentType) ([]models.Content, error) {
	items, err := s.list(ctx, `
		SELECT `+contentColumns+` FROM content
		WHERE type = $1
		ORDER BY created_at DESC
	`, contentType)
	if err != nil {
		return nil, fmt.Errorf("list content by type: %w", err)
	}
	return items, nil
}

// ListPublishedByType returns published content of the given type, ordered
// by published date descending.
func (s *ContentStore) ListPublishedByType(ctx context.Context, contentType models.ContentType) ([]models.Content, error) {
	items, err := s.list(ctx, `
		SELECT `+contentColumns+` FROM content
		WHERE type = $1 AND status = 'published'
		ORDER BY published_at DESC NULLS LAST
	`, contentType)
	if err != nil {
		return nil, fmt.Errorf("list published content: %w", err)
	}
	return items, nil
}

// ListPublishedByTerm returns published posts assigned to a term. Used by
// the public taxonomy archives.
func (s *ContentStore) ListPublishedByTerm(ctx context.Context, termID int64) ([]models.Content, error) {
	items, err := s.list(ctx, `
		SELECT c.id, c.type, c.title, c.slug, c.body, c.body_format, c.excerpt, c.status,
		       c.author_id, c.published_at, c.created_at, c.updated_at
		FROM content c
		JOIN content_terms ct ON ct.content_id = c.id
		WHERE ct.term_id = $1 AND c.type = 'post' AND c.status = 'published'
		ORDER BY c.published_at DESC NULLS LAST
	`, termID)
	if err != nil {
		return nil, fmt.Errorf("list published content by term: %w", err)
	}
	return items, nil
}

// FindByID retrieves a content item by its UUID. Returns nil if not found.
func (s *ContentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	c, err := scanContent(s.db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM content WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a published content item by its slug.
func (s *ContentStore) FindBySlug(ctx context.Context, slug string) (*models.Content, error) {
	c, err := scanContent(s.db.QueryRowContext(ctx, `
		SELECT `+contentColumns+` FROM content WHERE slug = $1 AND status = 'published'
	`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new content item and returns it with the generated ID.
func (s *ContentStore) Create(ctx context.Context, c *models.Content) (*models.Content, error) {
	if c.Status == models.ContentStatusPublished && c.PublishedAt == nil {
		now := time.Now()
		c.PublishedAt = &now
	}
	if c.BodyFormat == "" {
		c.BodyFormat = models.BodyFormatHTML
	}

	result, err := scanContent(s.db.QueryRowContext(ctx, `
		INSERT INTO content (type, title, slug, body, body_format, excerpt, status, author_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+contentColumns,
		c.Type, c.Title, c.Slug, c.Body, c.BodyFormat, c.Excerpt, c.Status, c.AuthorID, c.PublishedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return result, nil
}

// Update modifies an existing content item.
func (s *ContentStore) Update(ctx context.Context, c *models.Content) error {
	if c.Status == models.ContentStatusPublished && c.PublishedAt == nil {
		now := time.Now()
		c.PublishedAt = &now
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE content SET
			title = $1, slug = $2, body = $3, body_format = $4, excerpt = $5,
			status = $6, published_at = $7, updated_at = NOW()
		WHERE id = $8
	`, c.Title, c.Slug, c.Body, c.BodyFormat, c.Excerpt, c.Status, c.PublishedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	return nil
}

// Delete removes a content item by ID. Term assignments cascade.
func (s *ContentStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}
