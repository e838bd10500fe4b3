// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"partnerpress/internal/models"
)

// TermStore manages taxonomy terms, their key/value metadata, and their
// assignment to content items.
type TermStore struct {
	db *sql.DB
}

// NewTermStore returns a new TermStore.
func NewTermStore(db *sql.DB) *TermStore {
	return &TermStore{db: db}
}

const termColumns = `id, taxonomy, name, slug, description, parent_id, created_at, updated_at`

func scanTerm(scanner interface{ Scan(...any) error }) (*models.Term, error) {
	var t models.Term
	err := scanner.Scan(
		&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.Description,
		&t.ParentID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByTaxonomy returns the terms of a taxonomy in creation order, with
// post counts. When hideEmpty is set, terms without posts are left out.
func (s *TermStore) ListByTaxonomy(ctx context.Context, taxonomy string, hideEmpty bool) ([]models.Term, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.taxonomy, t.name, t.slug, t.description, t.parent_id,
		       t.created_at, t.updated_at,
		       COUNT(ct.content_id) AS post_count
		FROM terms t
		LEFT JOIN content_terms ct ON ct.term_id = t.id
		WHERE t.taxonomy = $1
		GROUP BY t.id
		HAVING NOT $2 OR COUNT(ct.content_id) > 0
		ORDER BY t.id
	`, taxonomy, hideEmpty)
	if err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	defer rows.Close()

	var items []models.Term
	for rows.Next() {
		var t models.Term
		if err := rows.Scan(
			&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.Description,
			&t.ParentID, &t.CreatedAt, &t.UpdatedAt, &t.PostCount,
		); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// FlatTree returns a taxonomy's terms ordered depth-first with Depth set,
// for indented parent pickers in the admin.
func (s *TermStore) FlatTree(ctx context.Context, taxonomy string) ([]models.Term, error) {
	flat, err := s.ListByTaxonomy(ctx, taxonomy, false)
	if err != nil {
		return nil, err
	}
	var result []models.Term
	appendSubtree(flat, nil, 0, &result)
	return result, nil
}

// appendSubtree walks the children of parentID depth-first.
func appendSubtree(flat []models.Term, parentID *int64, depth int, result *[]models.Term) {
	for _, t := range flat {
		if !sameParent(t.ParentID, parentID) {
			continue
		}
		t.Depth = depth
		*result = append(*result, t)
		appendSubtree(flat, &t.ID, depth+1, result)
	}
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// FindByID retrieves a term by ID. Returns nil if not found.
func (s *TermStore) FindByID(ctx context.Context, id int64) (*models.Term, error) {
	t, err := scanTerm(s.db.QueryRowContext(ctx, `SELECT `+termColumns+` FROM terms WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find term by id: %w", err)
	}
	return t, nil
}

// FindBySlug retrieves a term by taxonomy and slug. Returns nil if not found.
func (s *TermStore) FindBySlug(ctx context.Context, taxonomy, slug string) (*models.Term, error) {
	t, err := scanTerm(s.db.QueryRowContext(ctx,
		`SELECT `+termColumns+` FROM terms WHERE taxonomy = $1 AND slug = $2`, taxonomy, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find term by slug: %w", err)
	}
	return t, nil
}

// Create inserts a new term and returns it.
func (s *TermStore) Create(ctx context.Context, t *models.Term) (*models.Term, error) {
	created, err := scanTerm(s.db.QueryRowContext(ctx, `
		INSERT INTO terms (taxonomy, name, slug, description, parent_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+termColumns,
		t.Taxonomy, t.Name, t.Slug, t.Description, t.ParentID,
	))
	if err != nil {
		return nil, fmt.Errorf("create term: %w", err)
	}
	return created, nil
}

// Update modifies a term's name, slug, description, and parent.
func (s *TermStore) Update(ctx context.Context, t *models.Term) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE terms SET name = $1, slug = $2, description = $3, parent_id = $4, updated_at = NOW()
		WHERE id = $5
	`, t.Name, t.Slug, t.Description, t.ParentID, t.ID)
	if err != nil {
		return fmt.Errorf("update term: %w", err)
	}
	return nil
}

// Delete removes a term. Children are re-parented to the root, metadata
// and content assignments cascade.
func (s *TermStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM terms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete term: %w", err)
	}
	return nil
}

// GetMeta reads one metadata value. The boolean is false when the key has
// never been set for the term.
func (s *TermStore) GetMeta(ctx context.Context, termID int64, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT meta_value FROM term_meta WHERE term_id = $1 AND meta_key = $2
	`, termID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get term meta %s: %w", key, err)
	}
	return value, true, nil
}

// SetMeta inserts or replaces one metadata value.
func (s *TermStore) SetMeta(ctx context.Context, termID int64, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO term_meta (term_id, meta_key, meta_value) VALUES ($1, $2, $3)
		ON CONFLICT (term_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value
	`, termID, key, value)
	if err != nil {
		return fmt.Errorf("set term meta %s: %w", key, err)
	}
	return nil
}

// AllMeta returns every metadata pair stored for a term.
func (s *TermStore) AllMeta(ctx context.Context, termID int64) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT meta_key, meta_value FROM term_meta WHERE term_id = $1`, termID)
	if err != nil {
		return nil, fmt.Errorf("list term meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan term meta: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

// TermsForContent returns the terms of one taxonomy assigned to a content
// item, in the order they were assigned.
func (s *TermStore) TermsForContent(ctx context.Context, contentID uuid.UUID, taxonomy string) ([]models.Term, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.taxonomy, t.name, t.slug, t.description, t.parent_id, t.created_at, t.updated_at
		FROM terms t
		JOIN content_terms ct ON ct.term_id = t.id
		WHERE ct.content_id = $1 AND t.taxonomy = $2
		ORDER BY ct.term_order, t.id
	`, contentID, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("terms for content: %w", err)
	}
	defer rows.Close()

	var items []models.Term
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// SetContentTerms replaces a content item's assignments within one
// taxonomy. termIDs are stored in the given order. IDs that belong to a
// different taxonomy are ignored.
func (s *TermStore) SetContentTerms(ctx context.Context, contentID uuid.UUID, taxonomy string, termIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM content_terms
		WHERE content_id = $1 AND term_id IN (SELECT id FROM terms WHERE taxonomy = $2)
	`, contentID, taxonomy); err != nil {
		return fmt.Errorf("clear content terms: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO content_terms (content_id, term_id, term_order)
		SELECT $1, id, $3 FROM terms WHERE id = $2 AND taxonomy = $4
		ON CONFLICT (content_id, term_id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("prepare content terms: %w", err)
	}
	defer stmt.Close()

	for i, id := range termIDs {
		if _, err := stmt.ExecContext(ctx, contentID, id, i, taxonomy); err != nil {
			return fmt.Errorf("assign term %d: %w", id, err)
		}
	}

	return tx.Commit()
}
