package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"manaklaltailor.in/web/internal/format"
	"manaklaltailor.in/web/internal/handlers"
	"manaklaltailor.in/web/internal/kv"
	mw "manaklaltailor.in/web/internal/middleware"
	"manaklaltailor.in/web/internal/observability"
	"manaklaltailor.in/web/internal/reviews"
)

const (
	maxFormBytes  = 16 << 10
	reviewsAnchor = "/#reviews"
)

// viewTarget keeps the last projection so the handler can render it into
// whichever template the request needs.
type viewTarget struct {
	entries []reviews.Entry
}

func (v *viewTarget) Render(_ context.Context, entries []reviews.Entry) error {
	v.entries = entries
	return nil
}

// board binds a review board to the visitor's namespace of the shared store.
func (a *app) board(r *http.Request, lang string, target reviews.Target) (*reviews.Board, error) {
	backend := kv.Prefixed(a.store, mw.VisitorID(r))
	loc := a.cfg.Site.Location()
	return reviews.NewBoard(reviews.BoardDeps{
		Store:  reviews.NewStore(backend, a.cfg.Store.ReviewsKey, observability.FromContext(r.Context())),
		Target: target,
		Clock:  a.now,
		FormatTime: func(t time.Time) string {
			return format.FmtDateTime(t, lang, loc)
		},
		ClearPrompt: a.bundle.T(lang, "reviews.clear.prompt"),
	})
}

func (a *app) fragment(r *http.Request, lang string, entries []reviews.Entry, form handlers.FormState) handlers.ReviewsFragment {
	return handlers.ReviewsFragment{
		Lang:      lang,
		Board:     handlers.BuildBoard(entries, a.bundle, lang),
		Form:      form,
		CSRFToken: mw.CSRFToken(r),
		CSRFField: mw.CSRFFormField,
	}
}

// reviewsSection serves the board fragment to htmx and the home page to browsers.
func (a *app) reviewsSection(w http.ResponseWriter, r *http.Request) {
	if !mw.IsHTMX(r.Context()) {
		a.home(w, r)
		return
	}
	lang := mw.Lang(r)
	target := &viewTarget{}
	board, err := a.board(r, lang, target)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	if err := board.Refresh(r.Context()); err != nil {
		a.serverError(w, r, err)
		return
	}
	a.views.render(w, r, http.StatusOK, "reviews_section", a.fragment(r, lang, target.entries, handlers.FormState{}))
}

func (a *app) submitReview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		code := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		http.Error(w, http.StatusText(code), code)
		return
	}
	sub := reviews.Submission{
		Name: r.PostFormValue("name"),
		Text: r.PostFormValue("text"),
	}
	// an unparsable rating is reported as out of range
	sub.Rating, _ = strconv.Atoi(strings.TrimSpace(r.PostFormValue("rating")))

	lang := mw.Lang(r)
	target := &viewTarget{}
	board, err := a.board(r, lang, target)
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	a.writeMu.Lock()
	_, err = board.Submit(r.Context(), sub)
	a.writeMu.Unlock()

	var verr *reviews.ValidationError
	switch {
	case errors.As(err, &verr):
		form := handlers.RejectedForm(sub, verr, a.bundle, lang)
		if mw.IsHTMX(r.Context()) {
			a.views.render(w, r, http.StatusUnprocessableEntity, "reviews_section", a.fragment(r, lang, board.Entries(r.Context()), form))
			return
		}
		a.renderHome(w, r, http.StatusUnprocessableEntity, "", form)
		return
	case errors.Is(err, reviews.ErrPersist):
		observability.FromContext(r.Context()).Error("review not saved", zap.Error(err))
		form := handlers.FormState{Name: sub.Name, Text: sub.Text, Rating: sub.Rating, Message: a.bundle.T(lang, "reviews.error.save")}
		if mw.IsHTMX(r.Context()) {
			a.views.render(w, r, http.StatusInternalServerError, "reviews_section", a.fragment(r, lang, board.Entries(r.Context()), form))
			return
		}
		a.renderHome(w, r, http.StatusInternalServerError, "", form)
		return
	case err != nil:
		a.serverError(w, r, err)
		return
	}

	if mw.IsHTMX(r.Context()) {
		a.views.render(w, r, http.StatusOK, "reviews_section", a.fragment(r, lang, target.entries, handlers.FormState{}))
		return
	}
	http.Redirect(w, r, reviewsAnchor, http.StatusSeeOther)
}

// clearConfirm is the no-script fallback of the confirmation dialog.
func (a *app) clearConfirm(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	a.views.render(w, r, http.StatusOK, "clear", handlers.ClearData{
		PageData: a.pageData(r, lang),
		Prompt:   a.bundle.T(lang, "reviews.clear.prompt"),
	})
}

func (a *app) clearReviews(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	target := &viewTarget{}
	board, err := a.board(r, lang, target)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	confirmed := reviews.ConfirmFunc(func(context.Context, string) bool {
		return r.PostFormValue("confirm") == "yes"
	})

	a.writeMu.Lock()
	cleared, err := board.Clear(r.Context(), confirmed)
	a.writeMu.Unlock()
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	if !mw.IsHTMX(r.Context()) {
		http.Redirect(w, r, reviewsAnchor, http.StatusSeeOther)
		return
	}
	entries := target.entries
	if !cleared {
		entries = board.Entries(r.Context())
	}
	a.views.render(w, r, http.StatusOK, "reviews_section", a.fragment(r, lang, entries, handlers.FormState{}))
}
