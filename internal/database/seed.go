// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// seedPartners are created on an empty database so the partners page and
// the cross-publication badge have something to show in development.
var seedPartners = []struct {
	name, slug, url string
}{
	{"The Hechinger Report", "the-hechinger-report", "https://hechingerreport.org"},
	{"Chalkbeat", "chalkbeat", "https://www.chalkbeat.org"},
	{"EdSource", "edsource", "https://edsource.org"},
}

// Seed populates the database with initial development data: a default
// admin user, a handful of partner terms, a "partners" page using the
// [partners] shortcode, and one post cross-published with a partner.
// Each step is skipped when its data already exists.
func Seed(db *sql.DB) error {
	adminID, err := seedAdmin(db)
	if err != nil {
		return err
	}
	return seedPartnerContent(db, adminID)
}

func seedAdmin(db *sql.DB) (string, error) {
	var id string
	err := db.QueryRow(`SELECT id FROM users ORDER BY created_at LIMIT 1`).Scan(&id)
	if err == nil {
		slog.Info("database already has users, skipping admin seed")
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("seed check users: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("seed bcrypt: %w", err)
	}

	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "admin@partnerpress.local", string(hash), "Admin", "admin", false).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@partnerpress.local",
		"password", "admin",
	)
	return id, nil
}

func seedPartnerContent(db *sql.DB, authorID string) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM terms WHERE taxonomy = 'partner'`).Scan(&count); err != nil {
		return fmt.Errorf("seed check partners: %w", err)
	}
	if count > 0 {
		slog.Info("partners already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var firstPartner int64
	for i, p := range seedPartners {
		var id int64
		if err := tx.QueryRow(`
			INSERT INTO terms (taxonomy, name, slug) VALUES ('partner', $1, $2) RETURNING id
		`, p.name, p.slug).Scan(&id); err != nil {
			return fmt.Errorf("seed partner %s: %w", p.slug, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO term_meta (term_id, meta_key, meta_value) VALUES ($1, 'partner_homepage_url', $2)
		`, id, p.url); err != nil {
			return fmt.Errorf("seed partner meta %s: %w", p.slug, err)
		}
		if i == 0 {
			firstPartner = id
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO content (type, title, slug, body, status, author_id, published_at)
		VALUES ('page', 'Our Partners', 'our-partners',
		        '<p>We publish stories together with these newsrooms.</p>[partners]',
		        'published', $1, NOW())
		ON CONFLICT (slug) DO NOTHING
	`, authorID); err != nil {
		return fmt.Errorf("seed partners page: %w", err)
	}

	var postID string
	err = tx.QueryRow(`
		INSERT INTO content (type, title, slug, body, status, author_id, published_at)
		VALUES ('post', 'A story told with a partner', 'a-story-told-with-a-partner',
		        '<p>The first paragraph sets the scene.</p><p>The second one carries on.</p>',
		        'published', $1, NOW())
		ON CONFLICT (slug) DO NOTHING
		RETURNING id
	`, authorID).Scan(&postID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("seed sample post: %w", err)
	}
	if postID != "" {
		if _, err := tx.Exec(`
			INSERT INTO content_terms (content_id, term_id, term_order) VALUES ($1, $2, 0)
		`, postID, firstPartner); err != nil {
			return fmt.Errorf("seed sample post partner: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with partner content", "partners", len(seedPartners))
	return nil
}
