package handlers

import (
	"manaklaltailor.in/web/internal/content"
	"manaklaltailor.in/web/internal/gallery"
)

// HomeData is the view model for the one-page site.
type HomeData struct {
	PageData
	Intro    *content.Section
	Sections []content.Section
	Gallery  GalleryData
	Board    BoardView
	Form     FormState
}

// GalleryData pairs a gallery view with its localized labels.
type GalleryData struct {
	gallery.View
	Lang string
}

// ReviewsFragment is rendered for htmx swaps of the review section.
type ReviewsFragment struct {
	Lang      string
	Board     BoardView
	Form      FormState
	CSRFToken string
	CSRFField string
}

// ClearData backs the confirmation page of the clear flow.
type ClearData struct {
	PageData
	Prompt string
}

// Reviews returns the review section of the home page.
func (h HomeData) Reviews() ReviewsFragment {
	return ReviewsFragment{
		Lang:      h.Lang,
		Board:     h.Board,
		Form:      h.Form,
		CSRFToken: h.CSRFToken,
		CSRFField: h.CSRFField,
	}
}
