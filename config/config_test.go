package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "SESSION_TTL", "REDIS_ADDR", "REDIS_SENTINEL_ADDRS", "SEED_PRODUCTS", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	if cfg.HTTPAddr != ":3000" {
		t.Fatalf("expected :3000, got %q", cfg.HTTPAddr)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected 24h session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.UseRedis() {
		t.Fatalf("expected in-memory sessions by default")
	}
	if !cfg.SeedProducts {
		t.Fatalf("expected seeding on by default")
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"*"}) {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadFromEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "REDIS_ADDR=localhost:6379\nCATALOG_CACHE_SIZE=16\nHTTP_ADDR=:9999\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("CART_REQUIRE_AUTH", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("REDIS_DB", "not-a-number")
	// keys the file sets; cleared here so t.Setenv restores them afterwards
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("CATALOG_CACHE_SIZE", "")
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("CATALOG_CACHE_SIZE")

	cfg := Load(envFile)

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("environment should win over file, got %q", cfg.HTTPAddr)
	}
	if cfg.RedisAddr != "localhost:6379" || !cfg.UseRedis() {
		t.Fatalf("expected redis addr from file, got %q", cfg.RedisAddr)
	}
	if cfg.CatalogCacheSize != 16 {
		t.Fatalf("expected cache size 16, got %d", cfg.CatalogCacheSize)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("expected 30m, got %v", cfg.SessionTTL)
	}
	if !cfg.CartRequireAuth {
		t.Fatalf("expected CART_REQUIRE_AUTH=true")
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("expected fallback db 0 for bad value, got %d", cfg.RedisDB)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"http://a.test", "http://b.test"}) {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
}

func TestCatalogCacheSizeMustBePositive(t *testing.T) {
	for _, v := range []string{"0", "-5", "lots"} {
		t.Setenv("CATALOG_CACHE_SIZE", v)
		cfg := Load(filepath.Join(t.TempDir(), "missing.env"))
		if cfg.CatalogCacheSize != 128 {
			t.Fatalf("CATALOG_CACHE_SIZE=%s: expected default 128, got %d", v, cfg.CatalogCacheSize)
		}
	}
}
