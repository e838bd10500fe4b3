// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"partnerpress/internal/cache"
	"partnerpress/internal/database"
	"partnerpress/internal/engine"
	"partnerpress/internal/media"
	"partnerpress/internal/middleware"
	"partnerpress/internal/models"
	"partnerpress/internal/partner"
	"partnerpress/internal/render"
	"partnerpress/internal/session"
	"partnerpress/internal/store"
	"partnerpress/internal/taxonomy"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "postgres://" + envOr("POSTGRES_USER", "partnerpress") + ":" + envOr("POSTGRES_PASSWORD", "changeme") +
		"@" + envOr("POSTGRES_HOST", "localhost") + ":" + envOr("POSTGRES_PORT", "5432") +
		"/" + envOr("POSTGRES_DB", "partnerpress") + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a client on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client, err := cache.ConnectValkey(context.Background(),
		envOr("VALKEY_HOST", "localhost")+":"+envOr("VALKEY_PORT", "6379"), os.Getenv("VALKEY_PASSWORD"), 15)
	if err != nil {
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	ctx := context.Background()
	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})
	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB           *sql.DB
	Taxonomies   *taxonomy.Registry
	Sessions     *session.Store
	ContentStore *store.ContentStore
	TermStore    *store.TermStore
	UserStore    *store.UserStore
	MediaStore   *store.MediaStore
	PageCache    *cache.PageCache
	Admin        *Admin
	Auth         *Auth
	Public       *Public
}

// newTestEnv wires the handlers the way main does, without S3.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	taxonomies := taxonomy.NewRegistry(taxonomy.LabelsMedia)
	renderer, err := render.New(true, taxonomies)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	contentStore := store.NewContentStore(db)
	termStore := store.NewTermStore(db)
	userStore := store.NewUserStore(db)
	mediaStore := store.NewMediaStore(db)
	resolver := media.NewResolver(mediaStore, nil)
	pageCache := cache.NewPageCache(vk, time.Minute)

	pipeline := engine.NewPipeline()
	partner.Register(pipeline, partner.Deps{Terms: termStore, Assets: resolver})
	eng, err := engine.New(pipeline, taxonomies, termStore, "PartnerPress Test")
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	admin := NewAdmin(renderer, taxonomies, contentStore, termStore, mediaStore, nil, resolver, pageCache)
	admin.RegisterTermHooks(taxonomy.Partner, PartnerTermHooks(termStore, resolver))

	return &testEnv{
		DB:           db,
		Taxonomies:   taxonomies,
		Sessions:     sessions,
		ContentStore: contentStore,
		TermStore:    termStore,
		UserStore:    userStore,
		MediaStore:   mediaStore,
		PageCache:    pageCache,
		Admin:        admin,
		Auth:         NewAuth(renderer, sessions, userStore),
		Public:       NewPublic(eng, contentStore, termStore, pageCache),
	}
}

// testUser creates a user with the given role and removes it afterwards.
func testUser(t *testing.T, env *testEnv, role models.Role, password string) *models.User {
	t.Helper()
	email := "handler-" + uuid.NewString()[:8] + "@test.local"
	u, err := env.UserStore.Create(context.Background(), email, password, "Handler Test", role)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM content WHERE author_id = $1", u.ID)
		env.DB.Exec("DELETE FROM users WHERE id = $1", u.ID)
	})
	return u
}

// testSession is a fully authenticated session for u.
func testSession(u *models.User) *session.Data {
	return &session.Data{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		TwoFADone:   true,
	}
}

// cleanTermsBySlug removes test terms; metadata and assignments cascade.
func cleanTermsBySlug(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, s := range slugs {
			db.Exec("DELETE FROM terms WHERE slug = $1", s)
		}
	})
}

// request builds a request carrying chi URL params and an optional session.
func request(method, target string, form url.Values, sess *session.Data, params ...string) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if sess != nil {
		ctx = middleware.WithSession(ctx, sess)
	}
	return req.WithContext(ctx)
}
