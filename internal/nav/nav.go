// Package nav describes the one-page site's sections and builds navigation view models.
package nav

import (
	"path"
	"strings"
)

// Section is an in-page anchor on the home page. Page is the standalone route
// that renders the same section on its own, if any.
type Section struct {
	Anchor   string
	Page     string
	LabelKey string
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Sections lists the home page sections in display order.
var Sections = []Section{
	{Anchor: "home", Page: "/", LabelKey: "nav.home"},
	{Anchor: "services", LabelKey: "nav.services"},
	{Anchor: "gallery", Page: "/gallery", LabelKey: "nav.gallery"},
	{Anchor: "reviews", Page: "/reviews", LabelKey: "nav.reviews"},
	{Anchor: "contact", LabelKey: "nav.contact"},
}

// Build renders navigation items for currentPath. On the home page links are
// bare fragments for smooth scrolling; elsewhere they point back to the
// section on the home page.
func Build(currentPath string) []RenderedItem {
	currentPath = normalize(currentPath)
	onHome := currentPath == "/"
	items := make([]RenderedItem, 0, len(Sections))
	for _, s := range Sections {
		href := "/#" + s.Anchor
		if onHome {
			href = "#" + s.Anchor
		}
		items = append(items, RenderedItem{
			Href:     href,
			LabelKey: s.LabelKey,
			Active:   isActive(s.Page, currentPath),
		})
	}
	return items
}

func isActive(page, currentPath string) bool {
	if page == "" {
		return false
	}
	if page == "/" {
		return currentPath == "/"
	}
	return currentPath == page || strings.HasPrefix(currentPath, page+"/")
}

func normalize(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

// Breadcrumbs builds breadcrumb entries from the current path, starting with Home.
func Breadcrumbs(currentPath string) []Crumb {
	currentPath = normalize(currentPath)
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	parts := strings.Split(strings.TrimPrefix(currentPath, "/"), "/")
	href := ""
	for i, seg := range parts {
		href += "/" + seg
		crumb := Crumb{Href: href, Label: titleFromSegment(seg), Active: i == len(parts)-1}
		if i == 0 {
			for _, s := range Sections {
				if s.Page == href {
					crumb.LabelKey = s.LabelKey
					break
				}
			}
		}
		crumbs = append(crumbs, crumb)
	}
	return crumbs
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
