package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"manaklaltailor.in/web/internal/content"
	"manaklaltailor.in/web/internal/gallery"
	"manaklaltailor.in/web/internal/handlers"
	mw "manaklaltailor.in/web/internal/middleware"
	"manaklaltailor.in/web/internal/observability"
)

var homeSections = []string{"services", "contact"}

func (a *app) pageData(r *http.Request, lang string) handlers.PageData {
	return handlers.NewPageData(a.cfg.Site, a.cfg.Analytics, a.bundle, handlers.PageParams{
		Lang:      lang,
		Path:      r.URL.Path,
		Supported: a.bundle.Supported(),
		CSRFToken: mw.CSRFToken(r),
		CSRFField: mw.CSRFFormField,
		Now:       a.now(),
	})
}

// homeData assembles the one-page site around the given board and form state.
func (a *app) homeData(r *http.Request, lang, category string, board handlers.BoardView, form handlers.FormState) (handlers.HomeData, error) {
	view, err := a.gallery.View(r.Context(), category)
	if err != nil {
		return handlers.HomeData{}, err
	}
	data := handlers.HomeData{
		PageData: a.pageData(r, lang),
		Sections: a.content.Sections(lang, homeSections...),
		Gallery:  handlers.GalleryData{View: view, Lang: lang},
		Board:    board,
		Form:     form,
	}
	if intro, err := a.content.Section(lang, "home"); err == nil {
		data.Intro = &intro
	} else if !errors.Is(err, content.ErrNotFound) {
		observability.FromContext(r.Context()).Warn("intro unavailable", zap.Error(err))
	}
	return data, nil
}

func (a *app) home(w http.ResponseWriter, r *http.Request) {
	a.renderHome(w, r, http.StatusOK, "", handlers.FormState{})
}

func (a *app) renderHome(w http.ResponseWriter, r *http.Request, status int, category string, form handlers.FormState) {
	lang := mw.Lang(r)
	board, err := a.board(r, lang, &viewTarget{})
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	data, err := a.homeData(r, lang, category, handlers.BuildBoard(board.Entries(r.Context()), a.bundle, lang), form)
	if errors.Is(err, gallery.ErrUnknownCategory) {
		a.notFound(w, r)
		return
	}
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.views.render(w, r, status, "home", data)
}

// galleryPage swaps the category grid for htmx and renders the full page otherwise.
func (a *app) galleryPage(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("cat")
	if !mw.IsHTMX(r.Context()) {
		a.renderHome(w, r, http.StatusOK, category, handlers.FormState{})
		return
	}
	view, err := a.gallery.View(r.Context(), category)
	if errors.Is(err, gallery.ErrUnknownCategory) {
		a.notFound(w, r)
		return
	}
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.views.render(w, r, http.StatusOK, "gallery_grid", handlers.GalleryData{View: view, Lang: mw.Lang(r)})
}

func (a *app) notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(a.bundle.T(mw.Lang(r), "error.not_found")))
}

func (a *app) serverError(w http.ResponseWriter, r *http.Request, err error) {
	observability.FromContext(r.Context()).Error("request failed", zap.Error(err))
	http.Error(w, a.bundle.T(mw.Lang(r), "error.generic"), http.StatusInternalServerError)
}
