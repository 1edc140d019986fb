package handlers

import (
	"net/url"

	"manaklaltailor.in/web/internal/config"
	"manaklaltailor.in/web/internal/nav"
	"manaklaltailor.in/web/internal/seo"
)

// BuildSEO assembles meta tags, hreflang alternates and JSON-LD for path.
func BuildSEO(site config.SiteConfig, tr Translator, lang, path string, supported []string) seo.Meta {
	title := tr.T(lang, "site.title")
	desc := tr.T(lang, "site.description")
	canonical := absURL(site.BaseURL, path, "")

	m := seo.Meta{
		Title:       title,
		Description: desc,
		Canonical:   canonical,
		Robots:      "index,follow",
		OG: seo.OpenGraph{
			Title:       title,
			Description: desc,
			Type:        "website",
			URL:         canonical,
			SiteName:    site.BusinessName,
			Locale:      lang,
		},
		Twitter: seo.Twitter{Card: "summary"},
	}
	if site.BaseURL != "" {
		m.OG.Image = site.BaseURL + "/assets/og.jpg"
		m.Twitter.Image = m.OG.Image
	}
	for _, l := range supported {
		m.Alternates = append(m.Alternates, seo.Alternate{Href: absURL(site.BaseURL, path, l), Hreflang: l})
	}

	m.JSONLD = append(m.JSONLD,
		seo.JSON(seo.LocalBusiness(seo.Business{
			Name:      site.BusinessName,
			URL:       site.BaseURL,
			Phone:     site.Phone,
			Country:   "in",
			PriceTier: "₹₹",
			Services: []string{
				tr.T(lang, "gallery.cat.blouse"),
				tr.T(lang, "gallery.cat.suit"),
				tr.T(lang, "gallery.cat.lehenga"),
				tr.T(lang, "gallery.cat.kurti"),
			},
		})),
		seo.JSON(seo.WebSite(site.BusinessName, site.BaseURL, lang)),
	)
	if crumbs := nav.Breadcrumbs(path); len(crumbs) > 1 {
		items := make([]seo.BreadcrumbItem, 0, len(crumbs))
		for _, c := range crumbs {
			name := c.Label
			if c.LabelKey != "" {
				name = tr.T(lang, c.LabelKey)
			}
			items = append(items, seo.BreadcrumbItem{Name: name, Item: absURL(site.BaseURL, c.Href, "")})
		}
		m.JSONLD = append(m.JSONLD, seo.JSON(seo.BreadcrumbList(items)))
	}
	return m
}

func absURL(base, path, lang string) string {
	u := base + path
	if lang != "" {
		u += "?hl=" + url.QueryEscape(lang)
	}
	return u
}
