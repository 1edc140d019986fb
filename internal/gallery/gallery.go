// Package gallery lists the shop's design photos per category.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"
)

// DefaultDownloadName is offered when an image URL has no usable file name.
const DefaultDownloadName = "design.jpg"

// ErrUnknownCategory is returned for categories the gallery does not offer.
var ErrUnknownCategory = errors.New("gallery: unknown category")

// Source lists image URLs for a category.
type Source interface {
	List(ctx context.Context, category string) ([]string, error)
}

// Image is a single lightbox entry.
type Image struct {
	URL          string
	Alt          string
	DownloadName string
}

// View is what a category tab renders. Empty means the placeholder is shown.
type View struct {
	Categories []Category
	Active     string
	Images     []Image
}

// Empty reports whether the placeholder should be shown.
func (v View) Empty() bool { return len(v.Images) == 0 }

// Category is a filter tab.
type Category struct {
	Slug   string
	Active bool
}

// Gallery combines a Source with the configured categories.
type Gallery struct {
	source     Source
	categories []string
	logger     *zap.Logger
}

// New builds a gallery. The first category is the default tab.
func New(source Source, categories []string, logger *zap.Logger) *Gallery {
	if logger == nil {
		logger = zap.NewNop()
	}
	cats := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = normalizeCategory(c); c != "" {
			cats = append(cats, c)
		}
	}
	return &Gallery{source: source, categories: cats, logger: logger}
}

// Categories returns the configured category slugs.
func (g *Gallery) Categories() []string {
	return append([]string(nil), g.categories...)
}

// View returns the images for category. An empty category selects the
// first one. Source failures degrade to the placeholder state.
func (g *Gallery) View(ctx context.Context, category string) (View, error) {
	category = normalizeCategory(category)
	if category == "" && len(g.categories) > 0 {
		category = g.categories[0]
	}
	if !g.known(category) {
		return View{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	view := View{Active: category}
	for _, c := range g.categories {
		view.Categories = append(view.Categories, Category{Slug: c, Active: c == category})
	}
	if g.source == nil {
		return view, nil
	}

	urls, err := g.source.List(ctx, category)
	if err != nil {
		g.logger.Warn("gallery: list failed", zap.String("category", category), zap.Error(err))
		return view, nil
	}
	for _, u := range urls {
		view.Images = append(view.Images, Image{
			URL:          u,
			Alt:          category + " design",
			DownloadName: DownloadName(u),
		})
	}
	return view, nil
}

func (g *Gallery) known(category string) bool {
	for _, c := range g.categories {
		if c == category {
			return true
		}
	}
	return false
}

// DownloadName returns the last path segment of an image URL, or
// DefaultDownloadName when there is none.
func DownloadName(rawURL string) string {
	u := rawURL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if strings.HasSuffix(u, "/") {
		return DefaultDownloadName
	}
	name := path.Base(u)
	if name == "" || name == "." || name == "/" {
		return DefaultDownloadName
	}
	return name
}

func normalizeCategory(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if strings.ContainsAny(c, `/\`) || strings.Contains(c, "..") {
		return ""
	}
	return c
}
