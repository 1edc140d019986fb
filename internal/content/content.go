// Package content loads the site's editable copy from markdown files with
// YAML front matter, renders it to sanitized HTML and caches the result.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no language variant of a section exists.
var ErrNotFound = errors.New("content: not found")

const defaultCacheTTL = 5 * time.Minute

// Section is one rendered block of page copy, e.g. the services list.
type Section struct {
	Slug      string
	Lang      string
	Title     string
	Summary   string
	Icon      string
	Order     int
	Body      string
	HTML      template.HTML
	UpdatedAt time.Time
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	Icon      string `yaml:"icon"`
	Order     int    `yaml:"order"`
	UpdatedAt string `yaml:"updated_at"`
}

type cacheEntry struct {
	section Section
	expires time.Time
}

// Library reads sections from <dir>/<lang>/<slug>.md.
type Library struct {
	dir      string
	fallback string
	ttl      time.Duration
	md       goldmark.Markdown
	policy   *bluemonday.Policy
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewLibrary builds a library rooted at dir. Sections missing in the
// requested language are served from fallback.
func NewLibrary(dir, fallback string, logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Library{
		dir:      dir,
		fallback: fallback,
		ttl:      defaultCacheTTL,
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Table, extension.Strikethrough),
		),
		policy: bluemonday.UGCPolicy(),
		logger: logger,
		now:    time.Now,
		cache:  map[string]cacheEntry{},
	}
}

// SetCacheTTL overrides how long rendered sections are kept.
func (l *Library) SetCacheTTL(d time.Duration) {
	if d <= 0 {
		d = time.Minute
	}
	l.ttl = d
}

// Dir returns the content root.
func (l *Library) Dir() string { return l.dir }

// Section returns the rendered section for lang, falling back to the
// default language.
func (l *Library) Section(lang, slug string) (Section, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Section{}, ErrNotFound
	}
	candidates := []string{lang}
	if lang != l.fallback {
		candidates = append(candidates, l.fallback)
	}
	for _, candidate := range candidates {
		key := candidate + "/" + slug
		if s, ok := l.cached(key); ok {
			return s, nil
		}
		s, err := l.read(candidate, slug)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return Section{}, err
		}
		l.store(key, s)
		return s, nil
	}
	return Section{}, ErrNotFound
}

// Sections returns every section found for slugs, sorted by front matter
// order. Missing or broken sections are logged and skipped.
func (l *Library) Sections(lang string, slugs ...string) []Section {
	out := make([]Section, 0, len(slugs))
	for _, slug := range slugs {
		s, err := l.Section(lang, slug)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				l.logger.Warn("content: section unavailable", zap.String("slug", slug), zap.String("lang", lang), zap.Error(err))
			}
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Invalidate drops every cached section.
func (l *Library) Invalidate() {
	l.mu.Lock()
	l.cache = map[string]cacheEntry{}
	l.mu.Unlock()
}

func (l *Library) read(lang, slug string) (Section, error) {
	file := filepath.Join(l.dir, lang, slug+".md")
	data, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return Section{}, ErrNotFound
	}
	if err != nil {
		return Section{}, fmt.Errorf("content: read %s: %w", file, err)
	}

	fm, body := splitFrontMatter(string(data))
	var front frontMatter
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Section{}, fmt.Errorf("content: parse front matter %s: %w", file, err)
		}
	}

	var buf bytes.Buffer
	if err := l.md.Convert([]byte(body), &buf); err != nil {
		return Section{}, fmt.Errorf("content: render %s: %w", file, err)
	}

	s := Section{
		Slug:      slug,
		Lang:      lang,
		Title:     strings.TrimSpace(front.Title),
		Summary:   strings.TrimSpace(front.Summary),
		Icon:      strings.TrimSpace(front.Icon),
		Order:     front.Order,
		Body:      body,
		HTML:      template.HTML(l.policy.SanitizeBytes(buf.Bytes())),
		UpdatedAt: parseDate(front.UpdatedAt),
	}
	if s.UpdatedAt.IsZero() {
		if info, err := os.Stat(file); err == nil {
			s.UpdatedAt = info.ModTime()
		}
	}
	if s.Title == "" {
		s.Title = prettifySlug(slug)
	}
	return s, nil
}

func (l *Library) cached(key string) (Section, bool) {
	l.mu.RLock()
	entry, ok := l.cache[key]
	l.mu.RUnlock()
	if !ok || l.now().After(entry.expires) {
		return Section{}, false
	}
	return entry.section, true
}

func (l *Library) store(key string, s Section) {
	l.mu.Lock()
	l.cache[key] = cacheEntry{section: s, expires: l.now().Add(l.ttl)}
	l.mu.Unlock()
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimPrefix(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006/01/02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

func sanitizeSlug(slug string) string {
	slug = strings.Trim(strings.TrimSpace(strings.ToLower(slug)), "/")
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}
