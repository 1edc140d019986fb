package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"manaklaltailor.in/web/internal/config"
	"manaklaltailor.in/web/internal/content"
	"manaklaltailor.in/web/internal/gallery"
	"manaklaltailor.in/web/internal/i18n"
	"manaklaltailor.in/web/internal/kv"
	mw "manaklaltailor.in/web/internal/middleware"
	"manaklaltailor.in/web/internal/observability"
)

const (
	galleryURLPrefix = "/gallery-images"
	requestTimeout   = 30 * time.Second
)

type app struct {
	cfg      config.Config
	logger   *zap.Logger
	store    kv.Store
	bundle   *i18n.Bundle
	content  *content.Library
	gallery  *gallery.Gallery
	views    *renderer
	sessions *mw.Sessions
	limiter  *mw.RateLimiter
	now      func() time.Time
	closers  []func() error

	// serializes load-modify-save cycles on the shared store
	writeMu sync.Mutex
}

func newApp(ctx context.Context, cfg config.Config, store kv.Store, logger *zap.Logger) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bundle, err := i18n.Load(cfg.Site.LocalesDir, cfg.Site.FallbackLocale, cfg.Site.Locales)
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}
	views, err := newRenderer(cfg.Site.TemplatesDir, cfg.Server.DevMode, bundle)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		bundle:   bundle,
		content:  content.NewLibrary(cfg.Site.ContentDir, bundle.Fallback(), logger),
		views:    views,
		sessions: mw.NewSessions(cfg.Session, logger),
		limiter:  mw.NewRateLimiter(cfg.RateLimit.WritesPerSecond, cfg.RateLimit.WriteBurst),
		now:      time.Now,
	}

	source, err := a.gallerySource(ctx)
	if err != nil {
		return nil, err
	}
	a.gallery = gallery.New(source, cfg.Gallery.Categories, logger)
	return a, nil
}

func (a *app) gallerySource(ctx context.Context) (gallery.Source, error) {
	if a.cfg.Gallery.Bucket == "" {
		return gallery.DirSource{Dir: a.cfg.Gallery.Dir, URLPrefix: galleryURLPrefix}, nil
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gallery storage client: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	return gallery.NewBucketSource(client, a.cfg.Gallery.Bucket, a.cfg.Gallery.Prefix)
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close", zap.Error(err))
		}
	}
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; only deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(observability.InjectLogger(a.logger))
	r.Use(observability.TraceMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(chimw.RequestSize(maxFormBytes))
	r.Use(a.sessions.Middleware)
	r.Use(mw.HTMX)
	r.Use(mw.Logger)
	r.Use(mw.Locale(a.bundle))
	r.Use(mw.VaryLocale)
	r.Use(mw.CSRF(a.cfg.Session.Secure))

	r.Get("/healthz", a.healthz)
	r.Handle("/assets/*", mw.Assets("/assets", filepath.Join(a.cfg.Site.PublicDir, "assets")))
	if a.cfg.Gallery.Bucket == "" {
		r.Handle(galleryURLPrefix+"/*", mw.Assets(galleryURLPrefix, a.cfg.Gallery.Dir))
	}

	r.Get("/", a.home)
	r.Get("/gallery", a.galleryPage)
	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", a.reviewsSection)
		r.Get("/clear", a.clearConfirm)
		r.Group(func(r chi.Router) {
			r.Use(a.limiter.Middleware)
			r.Post("/", a.submitReview)
			r.Post("/clear", a.clearReviews)
		})
	})
	r.NotFound(a.notFound)
	return r
}

func (a *app) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
