package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kids")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.ProfilesCacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m cache ttl, got %s", cfg.ProfilesCacheTTL)
	}
	if cfg.ProfilesFetchTimeout != 15*time.Second {
		t.Fatalf("expected 15s fetch timeout, got %s", cfg.ProfilesFetchTimeout)
	}
	if len(cfg.AllowOrigins) != 1 || cfg.AllowOrigins[0] != "*" {
		t.Fatalf("expected wildcard origins, got %v", cfg.AllowOrigins)
	}
	if len(cfg.ElasticsearchURLs) != 0 {
		t.Fatalf("expected no elasticsearch urls, got %v", cfg.ElasticsearchURLs)
	}
	if cfg.MinIOEnabled() {
		t.Fatalf("expected minio to be disabled without an endpoint")
	}
	if cfg.DebugLog {
		t.Fatalf("expected debug log to be off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kids")
	t.Setenv("ALLOW_ORIGINS", " https://kids.events , https://admin.kids.events ,")
	t.Setenv("ELASTICSEARCH_URLS", "http://es1:9200,http://es2:9200")
	t.Setenv("PROFILES_CACHE_TTL", "90s")
	t.Setenv("PROFILES_FETCH_TIMEOUT", "bogus")
	t.Setenv("PROFILES_REFRESH_RPS", "2.5")
	t.Setenv("DB_MAX_OPEN_CONNS", "-3")
	t.Setenv("DEBUG_LOG", "1")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")

	cfg := Load()
	if len(cfg.AllowOrigins) != 2 || cfg.AllowOrigins[1] != "https://admin.kids.events" {
		t.Fatalf("unexpected origins %v", cfg.AllowOrigins)
	}
	if len(cfg.ElasticsearchURLs) != 2 {
		t.Fatalf("unexpected elasticsearch urls %v", cfg.ElasticsearchURLs)
	}
	if cfg.ProfilesCacheTTL != 90*time.Second {
		t.Fatalf("expected 90s ttl, got %s", cfg.ProfilesCacheTTL)
	}
	if cfg.ProfilesFetchTimeout != 15*time.Second {
		t.Fatalf("expected invalid timeout to fall back, got %s", cfg.ProfilesFetchTimeout)
	}
	if cfg.ProfilesRefreshRPS != 2.5 {
		t.Fatalf("expected refresh rps 2.5, got %v", cfg.ProfilesRefreshRPS)
	}
	if cfg.DBMaxOpenConns != 10 {
		t.Fatalf("expected negative pool size to fall back, got %d", cfg.DBMaxOpenConns)
	}
	if !cfg.DebugLog || !cfg.MinIOEnabled() {
		t.Fatalf("expected debug log and minio to be enabled")
	}
}

func TestMustPanicsOnMissingKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for missing DATABASE_URL")
		}
	}()
	Load()
}
