package mvc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

const (
	DefaultPrefix = "views/"
	DefaultSuffix = ".html"
)

var ErrEmptyViewName = errors.New("mvc: view model must contain a view name")

// Handler serves a single Controller.
type Handler struct {
	Controller Controller

	// Prefix and Suffix wrap a view name to form its path in Views.
	Prefix string
	Suffix string
	Views  fs.FS
	Funcs  template.FuncMap

	// ContextPath is prepended to redirects that start with "/", for apps
	// mounted below the root.
	ContextPath string

	// Logger is used when the request context carries none.
	Logger *slog.Logger

	templates sync.Map // path -> *template.Template
}

// NewHandler returns a handler with the default prefix and suffix.
func NewHandler(c Controller, views fs.FS) (*Handler, error) {
	if c == nil {
		return nil, errors.New("mvc: controller instance must be configured")
	}

	return &Handler{
		Controller: c,
		Prefix:     DefaultPrefix,
		Suffix:     DefaultSuffix,
		Views:      views,
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Serve(w, r); err != nil {
		h.logger(r.Context()).Error("mvc request failed", "uri", r.RequestURI, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Serve is ServeHTTP that returns failures instead of answering 500. Nothing
// has been written to w when a view fails to resolve or render.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) error {
	vm, err := h.Controller.HandleRequest(w, r)
	if err != nil {
		return fmt.Errorf("unable to invoke controller: %w", err)
	}

	// Controller rendered the response directly.
	if vm == nil {
		return nil
	}

	if vm.ViewName == "" {
		return ErrEmptyViewName
	}

	h.logger(r.Context()).Debug("returning view", "view", vm.ViewName, "uri", r.RequestURI)

	if vm.Redirect {
		h.redirect(w, r, vm.ViewName)
		return nil
	}
	return h.render(w, r, vm)
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, uri string) {
	if strings.HasPrefix(uri, "/") && !strings.HasPrefix(uri, "//") {
		uri = strings.TrimRight(h.ContextPath, "/") + uri
	}
	http.Redirect(w, r, uri, http.StatusFound)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, vm *ViewModel) error {
	tmpl, err := h.lookup(h.toFilePath(vm.ViewName))
	if err != nil {
		return err
	}

	attrs := cloneAttrs(Attributes(r.Context()), len(vm.Model))
	for k, v := range vm.Model {
		if v != nil {
			attrs[k] = v
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, attrs); err != nil {
		return fmt.Errorf("mvc: render %q: %w", vm.ViewName, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err = buf.WriteTo(w)
	return err
}

func (h *Handler) toFilePath(viewName string) string {
	return h.Prefix + viewName + h.Suffix
}

func (h *Handler) lookup(path string) (*template.Template, error) {
	if t, ok := h.templates.Load(path); ok {
		return t.(*template.Template), nil
	}
	if h.Views == nil {
		return nil, errors.New("mvc: no views configured")
	}

	t, err := template.New(pathBase(path)).Funcs(h.Funcs).ParseFS(h.Views, path)
	if err != nil {
		return nil, fmt.Errorf("mvc: resolve view %q: %w", path, err)
	}

	actual, _ := h.templates.LoadOrStore(path, t)
	return actual.(*template.Template), nil
}

func (h *Handler) logger(ctx context.Context) *slog.Logger {
	if h.Logger != nil && slogx.FromContext(ctx) == slog.Default() {
		return h.Logger
	}
	return slogx.FromContext(ctx)
}

func pathBase(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
