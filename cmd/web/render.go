package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"manaklaltailor.in/web/internal/i18n"
	"manaklaltailor.in/web/internal/observability"
)

// renderer parses every .tmpl file under dir into one set. In dev mode the
// set is re-parsed on each render.
type renderer struct {
	dir   string
	dev   bool
	funcs template.FuncMap

	mu    sync.RWMutex
	cache *template.Template
}

func newRenderer(dir string, dev bool, bundle *i18n.Bundle) (*renderer, error) {
	v := &renderer{dir: dir, dev: dev, funcs: templateFuncs(bundle)}
	t, err := v.parse()
	if err != nil {
		return nil, err
	}
	v.cache = t
	return v, nil
}

func templateFuncs(bundle *i18n.Bundle) template.FuncMap {
	return template.FuncMap{
		"t":  bundle.T,
		"tf": bundle.Tf,
		"jsonld": func(s string) template.JS {
			return template.JS(s)
		},
		"stars": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
	}
}

func (v *renderer) parse() (*template.Template, error) {
	var files []string
	if err := filepath.WalkDir(v.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("templates: walk %s: %w", v.dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("templates: none found under %s", v.dir)
	}
	t, err := template.New("_root").Funcs(v.funcs).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("templates: parse: %w", err)
	}
	return t, nil
}

func (v *renderer) templates() (*template.Template, error) {
	if v.dev {
		t, err := v.parse()
		if err != nil {
			return nil, err
		}
		v.mu.Lock()
		v.cache = t
		v.mu.Unlock()
		return t, nil
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cache, nil
}

// render executes name into a buffer so a failing template never leaves a
// half-written response.
func (v *renderer) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	logger := observability.FromContext(r.Context())
	t, err := v.templates()
	if err != nil {
		logger.Error("template parse failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("template exec failed", zap.String("template", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
