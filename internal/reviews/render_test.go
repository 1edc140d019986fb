package reviews

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestEscape(t *testing.T) {
	tests := map[string]string{
		"<b>O'Reilly & Co.</b>": "&lt;b&gt;O&#39;Reilly &amp; Co.&lt;/b&gt;",
		`say "hi"`:              "say &quot;hi&quot;",
		"&amp;":                 "&amp;amp;",
		"plain text":            "plain text",
		"बहुत अच्छी सिलाई":      "बहुत अच्छी सिलाई",
		"":                      "",
	}
	for in, want := range tests {
		if got := Escape(in); got != want {
			t.Fatalf("Escape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeLeavesNoRawSpecialCharacters(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	specials := gen.OneConstOf("&", "<", ">", `"`, "'", "a", " ", "&amp;")

	properties.Property("escaped output holds no raw markup characters", prop.ForAll(
		func(parts []string) bool {
			out := Escape(strings.Join(parts, ""))
			if strings.ContainsAny(out, `<>"'`) {
				return false
			}
			// every ampersand must start one of the emitted references
			for i := strings.IndexByte(out, '&'); i >= 0; {
				rest := out[i:]
				if !strings.HasPrefix(rest, "&amp;") && !strings.HasPrefix(rest, "&lt;") &&
					!strings.HasPrefix(rest, "&gt;") && !strings.HasPrefix(rest, "&quot;") &&
					!strings.HasPrefix(rest, "&#39;") {
					return false
				}
				next := strings.IndexByte(out[i+1:], '&')
				if next < 0 {
					break
				}
				i += next + 1
			}
			return true
		},
		gen.SliceOf(specials, reflect.TypeOf("")),
	))

	properties.TestingRun(t)
}

func TestStars(t *testing.T) {
	tests := map[int]string{
		1: "★☆☆☆☆",
		3: "★★★☆☆",
		5: "★★★★★",
		0: "☆☆☆☆☆",
		7: "★★★★★",
	}
	for rating, want := range tests {
		if got := Stars(rating); got != want {
			t.Fatalf("Stars(%d) = %q, want %q", rating, got, want)
		}
	}
}

func TestProjectEmptyCollectionIsPlaceholderOnly(t *testing.T) {
	for _, c := range []Collection{nil, {}} {
		entries := Project(c, nil)
		if len(entries) != 1 || entries[0].Kind != EntryPlaceholder {
			t.Fatalf("expected single placeholder, got %+v", entries)
		}
	}
}

func TestProjectDisplayOrder(t *testing.T) {
	c := Collection{
		{Name: "A", Text: "first", Rating: 5, Time: 1000, Seq: 1},
		{Name: "B", Text: "second", Rating: 3, Time: 2000, Seq: 2},
	}
	entries := Project(c, func(t time.Time) string { return t.Format(time.RFC3339) })

	if entries[0].Kind != EntryStats {
		t.Fatalf("expected stats entry first, got %s", entries[0].Kind)
	}
	if entries[0].AverageText != "4.0" || entries[0].Count != 2 {
		t.Fatalf("unexpected stats %+v", entries[0])
	}

	got := make([]string, 0, 2)
	for _, e := range Reviews(entries) {
		got = append(got, e.Name)
	}
	if diff := cmp.Diff([]string{"B", "A"}, got); diff != "" {
		t.Fatalf("unexpected display order (-want +got):\n%s", diff)
	}
}

func TestProjectEscapesAndFormats(t *testing.T) {
	at := time.Date(2024, 3, 9, 18, 30, 5, 0, time.UTC)
	c := Collection{{
		Name:   `<script>alert("x")</script>`,
		Text:   "Tom & Jerry's shop",
		Rating: 4,
		Time:   at.UnixMilli(),
		ID:     "rev_1",
	}}

	entries := Project(c, nil)
	want := Entry{
		Kind:     EntryReview,
		ID:       "rev_1",
		Name:     "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;",
		Text:     "Tom &amp; Jerry&#39;s shop",
		Rating:   4,
		Stars:    "★★★★☆",
		Time:     at,
		TimeText: "09/03/2024, 18:30:05",
	}
	if diff := cmp.Diff(want, entries[1]); diff != "" {
		t.Fatalf("unexpected entry (-want +got):\n%s", diff)
	}
	if string(entries[1].NameHTML()) != want.Name || string(entries[1].TextHTML()) != want.Text {
		t.Fatalf("html accessors must return the escaped strings unchanged")
	}
}

func TestEntryKindString(t *testing.T) {
	if EntryStats.String() != "stats" || EntryKind(42).String() != "unknown" {
		t.Fatalf("unexpected kind names")
	}
}
