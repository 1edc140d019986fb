// Package handlers builds the view models the web templates render.
package handlers

import (
	"net/url"
	"time"

	"manaklaltailor.in/web/internal/config"
	"manaklaltailor.in/web/internal/format"
	"manaklaltailor.in/web/internal/nav"
	"manaklaltailor.in/web/internal/seo"
)

// Translator looks up localized copy.
type Translator interface {
	T(lang, key string) string
	Tf(lang, key string, args ...any) string
}

// LangLink switches the page to another language.
type LangLink struct {
	Lang   string
	Href   string
	Active bool
}

// PageData carries the layout fields every full page needs.
type PageData struct {
	Title       string
	Lang        string
	SEO         seo.Meta
	Analytics   Analytics
	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	Languages   []LangLink
	Year        int
	Phone       string
	CSRFToken   string
	CSRFField   string
}

// PageParams are the request specific inputs of NewPageData.
type PageParams struct {
	Lang      string
	Path      string
	Supported []string
	CSRFToken string
	CSRFField string
	Now       time.Time
}

// NewPageData fills the layout fields for a page.
func NewPageData(site config.SiteConfig, analytics config.AnalyticsConfig, tr Translator, p PageParams) PageData {
	title := tr.T(p.Lang, "site.title")
	return PageData{
		Title:       title,
		Lang:        p.Lang,
		SEO:         BuildSEO(site, tr, p.Lang, p.Path, p.Supported),
		Analytics:   AnalyticsFromConfig(analytics),
		Path:        p.Path,
		Nav:         nav.Build(p.Path),
		Breadcrumbs: nav.Breadcrumbs(p.Path),
		Languages:   languageLinks(p.Path, p.Lang, p.Supported),
		Year:        format.Year(p.Now, site.Location()),
		Phone:       site.Phone,
		CSRFToken:   p.CSRFToken,
		CSRFField:   p.CSRFField,
	}
}

func languageLinks(path, current string, supported []string) []LangLink {
	out := make([]LangLink, 0, len(supported))
	for _, l := range supported {
		out = append(out, LangLink{
			Lang:   l,
			Href:   path + "?hl=" + url.QueryEscape(l),
			Active: l == current,
		})
	}
	return out
}
