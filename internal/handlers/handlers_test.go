package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"manaklaltailor.in/web/internal/config"
	"manaklaltailor.in/web/internal/reviews"
)

type mapTranslator map[string]string

func (m mapTranslator) T(lang, key string) string {
	if v, ok := m[lang+":"+key]; ok {
		return v
	}
	return key
}

func (m mapTranslator) Tf(lang, key string, args ...any) string {
	return fmt.Sprintf(m.T(lang, key), args...)
}

var tr = mapTranslator{
	"en:site.title":             "Manak Lal Tailor",
	"en:reviews.empty":          "No reviews yet",
	"en:reviews.average":        "Average %s (%s)",
	"hi:reviews.error.required": "कृपया नाम और review भरें।",
	"hi:reviews.error.rating":   "रेटिंग चुनें",
	"hi:reviews.error.too_long": "बहुत लंबा",
}

func TestBuildBoard(t *testing.T) {
	empty := BuildBoard(reviews.Project(nil, nil), tr, "en")
	if !empty.Empty || empty.Placeholder != "No reviews yet" || len(empty.Reviews) != 0 {
		t.Fatalf("unexpected empty board %+v", empty)
	}

	c := reviews.Collection{
		{Name: "A", Text: "t", Rating: 5, Time: 1},
		{Name: "B", Text: "t", Rating: 3, Time: 2},
	}
	v := BuildBoard(reviews.Project(c, nil), tr, "en")
	if v.Empty || v.StatsLine != "Average 4.0 (2)" {
		t.Fatalf("unexpected board %+v", v)
	}
	var names []string
	for _, e := range v.Reviews {
		names = append(names, e.Name)
	}
	if diff := cmp.Diff([]string{"B", "A"}, names); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestRejectedFormMessage(t *testing.T) {
	board, err := reviews.NewBoard(reviews.BoardDeps{
		Store:  reviews.NewStore(nil, "", nil),
		Target: reviews.TargetFunc(func(context.Context, []reviews.Entry) error { return nil }),
	})
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	sub := reviews.Submission{Name: "", Text: "good", Rating: 9}
	_, err = board.Submit(context.Background(), sub)
	var verr *reviews.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	f := RejectedForm(sub, verr, tr, "hi")
	if f.Message != "कृपया नाम और review भरें।" {
		t.Fatalf("unexpected message %q", f.Message)
	}
	if diff := cmp.Diff(map[string]bool{"name": true, "rating": true}, f.Errors); diff != "" {
		t.Fatalf("unexpected errors (-want +got):\n%s", diff)
	}
	if f.Text != "good" || !f.Selected(5) {
		t.Fatalf("form must keep input and default the rating: %+v", f)
	}
}

func TestRejectedFormTooLong(t *testing.T) {
	board, err := reviews.NewBoard(reviews.BoardDeps{
		Store:  reviews.NewStore(nil, "", nil),
		Target: reviews.TargetFunc(func(context.Context, []reviews.Entry) error { return nil }),
	})
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	sub := reviews.Submission{Name: "Asha", Text: strings.Repeat("x", reviews.MaxTextRunes+1), Rating: 9}
	_, err = board.Submit(context.Background(), sub)
	var verr *reviews.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	f := RejectedForm(sub, verr, tr, "hi")
	if f.Message != "बहुत लंबा" {
		t.Fatalf("unexpected message %q", f.Message)
	}
	if diff := cmp.Diff(map[string]bool{"text": true, "rating": true}, f.Errors); diff != "" {
		t.Fatalf("unexpected errors (-want +got):\n%s", diff)
	}
}

func TestNewPageData(t *testing.T) {
	site := config.SiteConfig{BaseURL: "https://manaklaltailor.in", BusinessName: "Manak Lal Tailor", Timezone: "UTC"}
	p := NewPageData(site, config.AnalyticsConfig{GA4MeasurementID: "G-TEST"}, tr, PageParams{
		Lang:      "en",
		Path:      "/gallery",
		Supported: []string{"en", "hi"},
		CSRFToken: "tok",
		CSRFField: "csrf_token",
		Now:       time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC),
	})
	if p.Year != 2025 {
		t.Fatalf("unexpected footer year %d", p.Year)
	}
	if !p.Analytics.Enabled() || p.Title != "Manak Lal Tailor" {
		t.Fatalf("unexpected page %+v", p)
	}
	if p.SEO.Canonical != "https://manaklaltailor.in/gallery" || len(p.SEO.Alternates) != 2 {
		t.Fatalf("unexpected seo %+v", p.SEO)
	}
	if len(p.SEO.JSONLD) != 3 || !strings.Contains(p.SEO.JSONLD[2], "BreadcrumbList") {
		t.Fatalf("expected business, website and breadcrumb json-ld, got %v", p.SEO.JSONLD)
	}
	want := []LangLink{{Lang: "en", Href: "/gallery?hl=en", Active: true}, {Lang: "hi", Href: "/gallery?hl=hi"}}
	if diff := cmp.Diff(want, p.Languages); diff != "" {
		t.Fatalf("unexpected language links (-want +got):\n%s", diff)
	}
}
