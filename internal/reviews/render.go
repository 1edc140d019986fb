package reviews

import (
	"html/template"
	"strings"
	"time"
)

const (
	filledStar = "★"
	emptyStar  = "☆"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape replaces & < > " ' with character references. Substitution is done
// in a single pass over the input, so existing references are escaped again
// rather than left alone.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// Stars renders rating filled stars followed by the remaining empty ones.
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > MaxRating {
		rating = MaxRating
	}
	return strings.Repeat(filledStar, rating) + strings.Repeat(emptyStar, MaxRating-rating)
}

// EntryKind distinguishes the rows of a projected board.
type EntryKind int

const (
	EntryPlaceholder EntryKind = iota
	EntryStats
	EntryReview
)

func (k EntryKind) String() string {
	switch k {
	case EntryPlaceholder:
		return "placeholder"
	case EntryStats:
		return "stats"
	case EntryReview:
		return "review"
	default:
		return "unknown"
	}
}

// Entry is one display row. Name and Text are already escaped.
type Entry struct {
	Kind EntryKind

	Average     float64
	AverageText string
	Count       int

	ID       string
	Seq      uint64
	Name     string
	Text     string
	Rating   int
	Stars    string
	Time     time.Time
	TimeText string
}

// NameHTML marks the escaped name as safe for html/template.
func (e Entry) NameHTML() template.HTML {
	return template.HTML(e.Name)
}

// TextHTML marks the escaped body as safe for html/template.
func (e Entry) TextHTML() template.HTML {
	return template.HTML(e.Text)
}

// TimeFormatter renders a submission time for display.
type TimeFormatter func(time.Time) string

// DefaultTimeFormat is used when Project receives no formatter.
func DefaultTimeFormat(t time.Time) string {
	return t.Format("02/01/2006, 15:04:05")
}

// Project turns a collection into display entries. An empty collection gives
// a single placeholder. Otherwise the first entry carries the statistics and
// the records follow newest first.
func Project(c Collection, format TimeFormatter) []Entry {
	if len(c) == 0 {
		return []Entry{{Kind: EntryPlaceholder}}
	}
	if format == nil {
		format = DefaultTimeFormat
	}

	avg := Average(c)
	entries := make([]Entry, 0, len(c)+1)
	entries = append(entries, Entry{
		Kind:        EntryStats,
		Average:     avg,
		AverageText: FormatAverage(avg),
		Count:       Count(c),
	})
	for i := len(c) - 1; i >= 0; i-- {
		r := c[i]
		at := r.SubmittedAt()
		entries = append(entries, Entry{
			Kind:     EntryReview,
			ID:       r.ID,
			Seq:      r.Seq,
			Name:     Escape(r.Name),
			Text:     Escape(r.Text),
			Rating:   r.Rating,
			Stars:    Stars(r.Rating),
			Time:     at,
			TimeText: format(at),
		})
	}
	return entries
}

// Reviews returns only the record entries of a projection.
func Reviews(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Kind == EntryReview {
			out = append(out, e)
		}
	}
	return out
}
