package mvc_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/aussiebroadwan/idkit/pkg/mvc"
	"github.com/stretchr/testify/require"
)

var views = fstest.MapFS{
	"views/home.html":   {Data: []byte(`<p>{{.greeting}} {{.user}}</p>{{if .missing}}never{{end}}`)},
	"views/broken.html": {Data: []byte(`{{template "nope" .}}`)},
	"tpl/home.tmpl":     {Data: []byte(`alt {{.greeting}}`)},
}

func serve(t *testing.T, h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func newHandler(t *testing.T, fn mvc.ControllerFunc) *mvc.Handler {
	t.Helper()
	h, err := mvc.NewHandler(fn, views)
	require.NoError(t, err)
	return h
}

func TestNewHandlerRequiresController(t *testing.T) {
	t.Parallel()

	_, err := mvc.NewHandler(nil, views)
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	t.Parallel()

	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
		return mvc.View("home", map[string]any{"greeting": "hello", "missing": nil}), nil
	})
	require.Equal(t, "views/", h.Prefix)
	require.Equal(t, ".html", h.Suffix)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(mvc.WithAttribute(req.Context(), "user", "alice"))

	rec := serve(t, h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "<p>hello alice</p>", rec.Body.String())
}

func TestModelOverridesAttributes(t *testing.T) {
	t.Parallel()

	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
		return mvc.View("home", map[string]any{"greeting": "hi", "user": "bob"}), nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(mvc.WithAttribute(req.Context(), "user", "alice"))
	require.Equal(t, "<p>hi bob</p>", serve(t, h, req).Body.String())
}

func TestCustomPrefixAndSuffix(t *testing.T) {
	t.Parallel()

	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
		return mvc.View("home", map[string]any{"greeting": "yo"}), nil
	})
	h.Prefix, h.Suffix = "tpl/", ".tmpl"

	require.Equal(t, "alt yo", serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String())
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contextPath string
		target      string
		want        string
	}{
		{"context relative", "/app", "/login", "/app/login"},
		{"root context", "", "/login", "/login"},
		{"absolute url", "/app", "https://login.example.com/sso?x=1", "https://login.example.com/sso?x=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHandler(t, func(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
				return mvc.RedirectTo(tt.target), nil
			})
			h.ContextPath = tt.contextPath

			rec := serve(t, h, httptest.NewRequest(http.MethodPost, "/app/forgot", nil))
			require.Equal(t, http.StatusFound, rec.Code)
			require.Equal(t, tt.want, rec.Header().Get("Location"))
		})
	}
}

func TestControllerWroteResponse(t *testing.T) {
	t.Parallel()

	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
		w.WriteHeader(http.StatusTeapot)
		return nil, nil
	})
	require.Equal(t, http.StatusTeapot, serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tests := []struct {
		name string
		fn   mvc.ControllerFunc
		want error
	}{
		{
			name: "controller error",
			fn:   func(http.ResponseWriter, *http.Request) (*mvc.ViewModel, error) { return nil, boom },
			want: boom,
		},
		{
			name: "empty view name",
			fn:   func(http.ResponseWriter, *http.Request) (*mvc.ViewModel, error) { return &mvc.ViewModel{}, nil },
			want: mvc.ErrEmptyViewName,
		},
		{
			name: "unknown view",
			fn: func(http.ResponseWriter, *http.Request) (*mvc.ViewModel, error) {
				return mvc.View("nope", nil), nil
			},
		},
		{
			name: "template error",
			fn: func(http.ResponseWriter, *http.Request) (*mvc.ViewModel, error) {
				return mvc.View("broken", nil), nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHandler(t, tt.fn)

			rec := httptest.NewRecorder()
			err := h.Serve(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Error(t, err)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
			require.Empty(t, rec.Body.String())

			rec = serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusInternalServerError, rec.Code)
		})
	}

	t.Run("controller error is wrapped", func(t *testing.T) {
		t.Parallel()
		h := newHandler(t, tests[0].fn)
		err := h.Serve(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		require.EqualError(t, err, "unable to invoke controller: boom")
	})
}

func TestWithAttributeIgnoresNil(t *testing.T) {
	t.Parallel()

	ctx := mvc.WithAttribute(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "a", nil)
	require.Empty(t, mvc.Attributes(ctx))

	ctx = mvc.WithAttribute(ctx, "a", 1)
	ctx2 := mvc.WithAttribute(ctx, "b", 2)
	require.Len(t, mvc.Attributes(ctx), 1)
	require.Len(t, mvc.Attributes(ctx2), 2)
}
