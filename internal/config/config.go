package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile        = ".env"
	defaultPort           = "8080"
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
	defaultStoreBackend   = "memory"
	defaultStoreDir       = "data/kv"
	defaultSQLitePath     = "data/reviews.db"
	defaultFirestoreColl  = "kv"
	defaultTemplatesDir   = "templates"
	defaultPublicDir      = "public"
	defaultLocalesDir     = "locales"
	defaultContentDir     = "content"
	defaultGalleryDir     = "public/gallery"
	defaultGalleryPrefix  = "gallery/"
	defaultFallbackLocale = "hi"
	defaultTimezone       = "Asia/Kolkata"
	defaultWriteRPS       = 1.0
	defaultWriteBurst     = 5
)

// Supported storage backends for the review board.
const (
	BackendMemory    = "memory"
	BackendFile      = "file"
	BackendSQLite    = "sqlite"
	BackendRedis     = "redis"
	BackendFirestore = "firestore"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Site      SiteConfig
	Gallery   GalleryConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Analytics AnalyticsConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	DevMode      bool
	LogLevel     string
}

// StoreConfig selects and parameterises the key-value backend behind the review board.
type StoreConfig struct {
	Backend string
	// ReviewsKey is the fixed key the review collection is persisted under.
	ReviewsKey string
	Dir        string
	SQLitePath string
	Redis      RedisConfig
	Firestore  FirestoreConfig
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	Collection   string
	EmulatorHost string
}

// SiteConfig groups filesystem locations and presentation defaults.
type SiteConfig struct {
	TemplatesDir   string
	PublicDir      string
	LocalesDir     string
	ContentDir     string
	FallbackLocale string
	Locales        []string
	Timezone       string
	BaseURL        string
	BusinessName   string
	Phone          string
}

// GalleryConfig selects where gallery images come from.
type GalleryConfig struct {
	Dir        string
	Bucket     string
	Prefix     string
	Categories []string
}

// SessionConfig controls the visitor cookie.
type SessionConfig struct {
	SigningKey string
	Secure     bool
}

// RateLimitConfig throttles review writes per client IP.
type RateLimitConfig struct {
	WritesPerSecond float64
	WriteBurst      int
}

// AnalyticsConfig holds client instrumentation IDs surfaced to templates.
type AnalyticsConfig struct {
	GA4MeasurementID string
	Debug            bool
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// environment variables and explicit maps.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	// Port resolution: prefer MANAKLAL_WEB_PORT, then Cloud Run's PORT.
	port := stringWithDefault(lookup, "MANAKLAL_WEB_PORT", "")
	if port == "" {
		port = stringWithDefault(lookup, "PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         port,
			ReadTimeout:  durationWithDefault(lookup, "MANAKLAL_WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "MANAKLAL_WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "MANAKLAL_WEB_IDLE_TIMEOUT", defaultIdleTimeout),
			DevMode:      boolWithDefault(lookup, "MANAKLAL_WEB_DEV", false),
			LogLevel:     stringWithDefault(lookup, "LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend:    strings.ToLower(stringWithDefault(lookup, "MANAKLAL_WEB_STORE", defaultStoreBackend)),
			ReviewsKey: stringWithDefault(lookup, "MANAKLAL_WEB_REVIEWS_KEY", "manaklal_reviews_v1"),
			Dir:        stringWithDefault(lookup, "MANAKLAL_WEB_STORE_DIR", defaultStoreDir),
			SQLitePath: stringWithDefault(lookup, "MANAKLAL_WEB_SQLITE_PATH", defaultSQLitePath),
			Redis: RedisConfig{
				Addr:     stringWithDefault(lookup, "MANAKLAL_WEB_REDIS_ADDR", ""),
				Password: stringWithDefault(lookup, "MANAKLAL_WEB_REDIS_PASSWORD", ""),
				DB:       intWithDefault(lookup, "MANAKLAL_WEB_REDIS_DB", 0),
				TTL:      durationWithDefault(lookup, "MANAKLAL_WEB_REDIS_TTL", 0),
			},
			Firestore: FirestoreConfig{
				ProjectID:    stringWithDefault(lookup, "MANAKLAL_WEB_FIRESTORE_PROJECT_ID", stringWithDefault(lookup, "GOOGLE_CLOUD_PROJECT", "")),
				Collection:   stringWithDefault(lookup, "MANAKLAL_WEB_FIRESTORE_COLLECTION", defaultFirestoreColl),
				EmulatorHost: stringWithDefault(lookup, "FIRESTORE_EMULATOR_HOST", ""),
			},
		},
		Site: SiteConfig{
			TemplatesDir:   stringWithDefault(lookup, "MANAKLAL_WEB_TEMPLATES_DIR", defaultTemplatesDir),
			PublicDir:      stringWithDefault(lookup, "MANAKLAL_WEB_PUBLIC_DIR", defaultPublicDir),
			LocalesDir:     stringWithDefault(lookup, "MANAKLAL_WEB_LOCALES_DIR", defaultLocalesDir),
			ContentDir:     stringWithDefault(lookup, "MANAKLAL_WEB_CONTENT_DIR", defaultContentDir),
			FallbackLocale: strings.ToLower(stringWithDefault(lookup, "MANAKLAL_WEB_FALLBACK_LOCALE", defaultFallbackLocale)),
			Locales:        csvWithDefault(lookup, "MANAKLAL_WEB_LOCALES"),
			Timezone:       stringWithDefault(lookup, "MANAKLAL_WEB_TIMEZONE", defaultTimezone),
			BaseURL:        strings.TrimRight(stringWithDefault(lookup, "MANAKLAL_WEB_BASE_URL", ""), "/"),
			BusinessName:   stringWithDefault(lookup, "MANAKLAL_WEB_BUSINESS_NAME", "Manak Lal Tailor"),
			Phone:          stringWithDefault(lookup, "MANAKLAL_WEB_PHONE", ""),
		},
		Gallery: GalleryConfig{
			Dir:        stringWithDefault(lookup, "MANAKLAL_WEB_GALLERY_DIR", defaultGalleryDir),
			Bucket:     stringWithDefault(lookup, "MANAKLAL_WEB_GALLERY_BUCKET", ""),
			Prefix:     stringWithDefault(lookup, "MANAKLAL_WEB_GALLERY_PREFIX", defaultGalleryPrefix),
			Categories: csvWithDefault(lookup, "MANAKLAL_WEB_GALLERY_CATEGORIES"),
		},
		Session: SessionConfig{
			SigningKey: stringWithDefault(lookup, "MANAKLAL_WEB_SESSION_SIGNING_KEY", ""),
			Secure:     strings.EqualFold(stringWithDefault(lookup, "MANAKLAL_WEB_ENV", ""), "prod"),
		},
		RateLimit: RateLimitConfig{
			WritesPerSecond: floatWithDefault(lookup, "MANAKLAL_WEB_WRITE_RPS", defaultWriteRPS),
			WriteBurst:      intWithDefault(lookup, "MANAKLAL_WEB_WRITE_BURST", defaultWriteBurst),
		},
		Analytics: AnalyticsConfig{
			GA4MeasurementID: stringWithDefault(lookup, "MANAKLAL_WEB_GA_MEASUREMENT_ID", ""),
			Debug:            boolWithDefault(lookup, "MANAKLAL_WEB_ANALYTICS_DEBUG", false),
		},
	}

	if len(cfg.Site.Locales) == 0 {
		cfg.Site.Locales = []string{"hi", "en"}
	}
	if len(cfg.Gallery.Categories) == 0 {
		cfg.Gallery.Categories = []string{"blouse", "suit", "lehenga", "kurti"}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr returns the listen address for the configured port.
func (c ServerConfig) Addr() string {
	return ":" + c.Port
}

// Location resolves the configured timezone, defaulting to UTC when unknown.
func (c SiteConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if strings.TrimSpace(cfg.Store.ReviewsKey) == "" {
		missing = append(missing, "Store.ReviewsKey")
	}
	switch cfg.Store.Backend {
	case BackendMemory:
	case BackendFile:
		if cfg.Store.Dir == "" {
			missing = append(missing, "Store.Dir")
		}
	case BackendSQLite:
		if cfg.Store.SQLitePath == "" {
			missing = append(missing, "Store.SQLitePath")
		}
	case BackendRedis:
		if cfg.Store.Redis.Addr == "" {
			missing = append(missing, "Store.Redis.Addr")
		}
	case BackendFirestore:
		if cfg.Store.Firestore.ProjectID == "" {
			missing = append(missing, "Store.Firestore.ProjectID")
		}
	default:
		missing = append(missing, "Store.Backend")
	}
	if !contains(cfg.Site.Locales, cfg.Site.FallbackLocale) {
		missing = append(missing, "Site.FallbackLocale")
	}
	if cfg.RateLimit.WritesPerSecond <= 0 {
		missing = append(missing, "RateLimit.WritesPerSecond")
	}
	if cfg.RateLimit.WriteBurst <= 0 {
		missing = append(missing, "RateLimit.WriteBurst")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(parts[1]), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
