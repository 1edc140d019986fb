// Package format renders dates and numbers the way each site language expects.
package format

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FmtDateTime formats t in loc for a review timestamp.
// Example: FmtDateTime(t, "hi", ist) => "9/3/2024, 6:30:05 pm"
func FmtDateTime(t time.Time, lang string, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	switch strings.ToLower(lang) {
	case "hi":
		return t.Format("2/1/2006, 3:04:05 pm")
	default:
		return t.Format("2 Jan 2006, 3:04 pm")
	}
}

// FmtDate formats time in a locale-friendly short form.
func FmtDate(t time.Time, lang string) string {
	switch strings.ToLower(lang) {
	case "hi":
		return t.Format("2/1/2006")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// FmtCount groups digits according to lang.
func FmtCount(n int, lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag).Sprintf("%d", n)
}

// Year returns the calendar year of now in loc, for footers.
func Year(now time.Time, loc *time.Location) int {
	if loc != nil {
		now = now.In(loc)
	}
	return now.Year()
}
