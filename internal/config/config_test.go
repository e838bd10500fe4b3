// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"strings"
	"testing"
	"time"
)

// TestLoadFrom_Defaults verifies development defaults when nothing is set.
func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom() returned unexpected error: %v", err)
	}

	checks := map[string][2]string{
		"Host":          {cfg.Host, "0.0.0.0"},
		"Port":          {cfg.Port, "8080"},
		"Env":           {cfg.Env, "development"},
		"SiteName":      {cfg.SiteName, "PartnerPress"},
		"DBUser":        {cfg.DBUser, "partnerpress"},
		"DBPassword":    {cfg.DBPassword, "changeme"},
		"DBName":        {cfg.DBName, "partnerpress"},
		"ValkeyHost":    {cfg.ValkeyHost, "localhost"},
		"ValkeyPort":    {cfg.ValkeyPort, "6379"},
		"S3Region":      {cfg.S3Region, "us-east-1"},
		"S3Bucket":      {cfg.S3Bucket, "partnerpress-media"},
		"S3Endpoint":    {cfg.S3Endpoint, ""},
		"PartnerLabels": {cfg.PartnerLabels, "media"},
	}
	for field, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", field, c[0], c[1])
		}
	}
	if cfg.PageCacheTTL != 5*time.Minute {
		t.Errorf("PageCacheTTL = %v, want 5m", cfg.PageCacheTTL)
	}
	if !cfg.IsDev() {
		t.Error("IsDev() = false, want true")
	}
}

// TestLoadFrom_Overrides verifies that set variables replace defaults.
func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"APP_HOST":          "127.0.0.1",
		"APP_PORT":          "9000",
		"APP_ENV":           "production",
		"POSTGRES_PASSWORD": "s3cret",
		"POSTGRES_HOST":     "db",
		"VALKEY_HOST":       "cache",
		"VALKEY_PORT":       "6380",
		"PARTNER_LABELS":    "hechinger",
		"PAGE_CACHE_TTL":    "90s",
	})
	if err != nil {
		t.Fatalf("LoadFrom() returned unexpected error: %v", err)
	}
	if got := cfg.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q", got)
	}
	if got := cfg.ValkeyAddr(); got != "cache:6380" {
		t.Errorf("ValkeyAddr() = %q", got)
	}
	if got := cfg.DSN(); got != "postgres://partnerpress:s3cret@db:5432/partnerpress?sslmode=disable" {
		t.Errorf("DSN() = %q", got)
	}
	if cfg.PartnerLabels != "hechinger" {
		t.Errorf("PartnerLabels = %q", cfg.PartnerLabels)
	}
	if cfg.PageCacheTTL != 90*time.Second {
		t.Errorf("PageCacheTTL = %v", cfg.PageCacheTTL)
	}
	if cfg.IsDev() {
		t.Error("IsDev() = true in production")
	}
}

// TestLoadFrom_ProductionRequiresPassword verifies the default DB password
// is rejected in production.
func TestLoadFrom_ProductionRequiresPassword(t *testing.T) {
	_, err := LoadFrom(map[string]string{"APP_ENV": "production"})
	if err == nil {
		t.Fatal("expected error for default password in production")
	}
	if !strings.Contains(err.Error(), "POSTGRES_PASSWORD") {
		t.Errorf("error = %v, want mention of POSTGRES_PASSWORD", err)
	}
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"labels": {"PARTNER_LABELS": "newspaper"},
		"ttl":    {"PAGE_CACHE_TTL": "soon"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFrom(vars); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// TestLoad_ProcessEnv verifies Load reads the real environment.
func TestLoad_ProcessEnv(t *testing.T) {
	t.Setenv("SITE_NAME", "The Hechinger Report")
	t.Setenv("APP_ENV", "testing")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.SiteName != "The Hechinger Report" {
		t.Errorf("SiteName = %q", cfg.SiteName)
	}
}
