package handlers

import (
	"manaklaltailor.in/web/internal/format"
	"manaklaltailor.in/web/internal/reviews"
)

// BoardView is the review list as the templates render it.
type BoardView struct {
	Empty       bool
	Placeholder string
	StatsLine   string
	Reviews     []reviews.Entry
}

// BuildBoard localizes projected entries.
func BuildBoard(entries []reviews.Entry, tr Translator, lang string) BoardView {
	var v BoardView
	for _, e := range entries {
		switch e.Kind {
		case reviews.EntryPlaceholder:
			v.Empty = true
			v.Placeholder = tr.T(lang, "reviews.empty")
		case reviews.EntryStats:
			v.StatsLine = tr.Tf(lang, "reviews.average", e.AverageText, format.FmtCount(e.Count, lang))
		case reviews.EntryReview:
			v.Reviews = append(v.Reviews, e)
		}
	}
	return v
}

// FormState re-populates the review form after a rejected submission.
type FormState struct {
	Name    string
	Text    string
	Rating  int
	Errors  map[string]bool
	Message string
}

// Ratings lists the selectable star values, highest first.
func (f FormState) Ratings() []int {
	out := make([]int, 0, reviews.MaxRating)
	for r := reviews.MaxRating; r >= reviews.MinRating; r-- {
		out = append(out, r)
	}
	return out
}

// Selected reports whether r is the chosen rating, defaulting to the top one.
func (f FormState) Selected(r int) bool {
	if f.Rating < reviews.MinRating || f.Rating > reviews.MaxRating {
		return r == reviews.MaxRating
	}
	return f.Rating == r
}

// RejectedForm maps a validation error onto the form.
func RejectedForm(s reviews.Submission, verr *reviews.ValidationError, tr Translator, lang string) FormState {
	f := FormState{Name: s.Name, Text: s.Text, Rating: s.Rating, Errors: map[string]bool{}}
	fields := verr.Fields()
	for field := range fields {
		f.Errors[field] = true
	}
	switch {
	case fields["name"] == reviews.ReasonRequired || fields["text"] == reviews.ReasonRequired:
		f.Message = tr.T(lang, "reviews.error.required")
	case fields["name"] == reviews.ReasonTooLong || fields["text"] == reviews.ReasonTooLong:
		f.Message = tr.T(lang, "reviews.error.too_long")
	case verr.Has("rating"):
		f.Message = tr.T(lang, "reviews.error.rating")
	}
	return f
}
