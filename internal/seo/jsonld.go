package seo

import (
	"encoding/json"
	"strings"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Business describes the shop for the LocalBusiness schema.
type Business struct {
	Name      string
	URL       string
	Phone     string
	Image     string
	Locality  string
	Region    string
	Country   string
	PriceTier string
	Services  []string
}

// LocalBusiness returns a schema.org TailorShop payload, a LocalBusiness subtype.
func LocalBusiness(b Business) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "TailorShop",
		"name":     b.Name,
	}
	if b.URL != "" {
		m["url"] = b.URL
	}
	if b.Phone != "" {
		m["telephone"] = b.Phone
	}
	if b.Image != "" {
		m["image"] = b.Image
	}
	if b.PriceTier != "" {
		m["priceRange"] = b.PriceTier
	}
	if b.Locality != "" || b.Region != "" || b.Country != "" {
		addr := map[string]any{"@type": "PostalAddress"}
		if b.Locality != "" {
			addr["addressLocality"] = b.Locality
		}
		if b.Region != "" {
			addr["addressRegion"] = b.Region
		}
		if b.Country != "" {
			addr["addressCountry"] = strings.ToUpper(b.Country)
		}
		m["address"] = addr
	}
	if len(b.Services) > 0 {
		offers := make([]map[string]any, 0, len(b.Services))
		for _, s := range b.Services {
			offers = append(offers, map[string]any{
				"@type":       "Offer",
				"itemOffered": map[string]any{"@type": "Service", "name": s},
			})
		}
		m["makesOffer"] = offers
	}
	return m
}

// WebSite returns a minimal WebSite schema.
func WebSite(name, url, lang string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if lang != "" {
		m["inLanguage"] = lang
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}
