package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("expected memory backend, got %s", cfg.Store.Backend)
	}
	if cfg.Store.ReviewsKey != "manaklal_reviews_v1" {
		t.Errorf("unexpected reviews key %q", cfg.Store.ReviewsKey)
	}
	if cfg.Site.FallbackLocale != "hi" {
		t.Errorf("expected fallback hi, got %s", cfg.Site.FallbackLocale)
	}
	if len(cfg.Site.Locales) != 2 {
		t.Errorf("expected default locales, got %v", cfg.Site.Locales)
	}
	if cfg.Site.Location().String() != "Asia/Kolkata" && cfg.Site.Location() != time.UTC {
		t.Errorf("unexpected location %s", cfg.Site.Location())
	}
	if len(cfg.Gallery.Categories) == 0 {
		t.Errorf("expected default gallery categories")
	}
	if cfg.Session.Secure {
		t.Errorf("expected insecure cookies outside prod")
	}
	if cfg.Server.LogLevel != "info" || cfg.Analytics.GA4MeasurementID != "" {
		t.Errorf("unexpected log level %q or analytics %+v", cfg.Server.LogLevel, cfg.Analytics)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"PORT":                            "7070",
		"MANAKLAL_WEB_PORT":               "9090",
		"MANAKLAL_WEB_STORE":              "Redis",
		"MANAKLAL_WEB_REDIS_ADDR":         "localhost:6379",
		"MANAKLAL_WEB_REDIS_DB":           "2",
		"MANAKLAL_WEB_REDIS_TTL":          "720h",
		"MANAKLAL_WEB_LOCALES":            "en, hi",
		"MANAKLAL_WEB_FALLBACK_LOCALE":    "EN",
		"MANAKLAL_WEB_ENV":                "prod",
		"MANAKLAL_WEB_DEV":                "yes",
		"MANAKLAL_WEB_WRITE_RPS":          "0.5",
		"MANAKLAL_WEB_GALLERY_CATEGORIES": "Blouse,Suit",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected MANAKLAL_WEB_PORT to win, got %s", cfg.Server.Port)
	}
	if cfg.Server.Addr() != ":9090" {
		t.Errorf("unexpected addr %s", cfg.Server.Addr())
	}
	if !cfg.Server.DevMode {
		t.Errorf("expected dev mode")
	}
	if cfg.Store.Backend != BackendRedis {
		t.Errorf("expected redis backend, got %s", cfg.Store.Backend)
	}
	if cfg.Store.Redis.DB != 2 || cfg.Store.Redis.TTL != 720*time.Hour {
		t.Errorf("unexpected redis config %+v", cfg.Store.Redis)
	}
	if cfg.Site.FallbackLocale != "en" {
		t.Errorf("expected fallback en, got %s", cfg.Site.FallbackLocale)
	}
	if !cfg.Session.Secure {
		t.Errorf("expected secure cookies in prod")
	}
	if cfg.RateLimit.WritesPerSecond != 0.5 {
		t.Errorf("unexpected write rps %v", cfg.RateLimit.WritesPerSecond)
	}
	if len(cfg.Gallery.Categories) != 2 || cfg.Gallery.Categories[0] != "blouse" {
		t.Errorf("unexpected categories %v", cfg.Gallery.Categories)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	env := map[string]string{
		"MANAKLAL_WEB_STORE":           "redis",
		"MANAKLAL_WEB_FALLBACK_LOCALE": "fr",
	}
	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := vErr.Fields()
	want := map[string]bool{"Store.Redis.Addr": true, "Site.FallbackLocale": true}
	if len(fields) != len(want) {
		t.Fatalf("unexpected fields %v", fields)
	}
	for _, f := range fields {
		if !want[f] {
			t.Errorf("unexpected field %s", f)
		}
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	_, err := Load(context.Background(), WithEnvMap(map[string]string{"MANAKLAL_WEB_STORE": "cassandra"}), WithoutSystemEnv(), WithEnvFile(""))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nexport MANAKLAL_WEB_STORE=file\nMANAKLAL_WEB_STORE_DIR=\"/tmp/kv\"\nMANAKLAL_WEB_TIMEZONE=UTC\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}

	cfg, err := Load(context.Background(), WithEnvFile(path), WithoutSystemEnv(), WithEnvMap(map[string]string{"MANAKLAL_WEB_TIMEZONE": "Asia/Kolkata"}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Store.Backend != BackendFile || cfg.Store.Dir != "/tmp/kv" {
		t.Errorf("expected dotenv store settings, got %+v", cfg.Store)
	}
	if cfg.Site.Timezone != "Asia/Kolkata" {
		t.Errorf("expected env map to override dotenv, got %s", cfg.Site.Timezone)
	}
}
