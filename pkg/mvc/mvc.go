// Package mvc dispatches requests to a Controller and turns the returned
// ViewModel into either a redirect or a rendered html/template view.
//
// A Handler is always the end of a chain: it never calls a next handler.
//
//	h, _ := mvc.NewHandler(mvc.ControllerFunc(home), views)
//	mux.Handle("GET /{$}", h)
//
// View names resolve to Prefix + name + Suffix inside the Views filesystem,
// so with the defaults the view "login" is the file "views/login.html".
package mvc

import (
	"context"
	"net/http"
)

// Controller handles a request and names the view to show. Returning a nil
// ViewModel means the controller wrote the response itself.
type Controller interface {
	HandleRequest(w http.ResponseWriter, r *http.Request) (*ViewModel, error)
}

// ControllerFunc adapts a function to Controller.
type ControllerFunc func(w http.ResponseWriter, r *http.Request) (*ViewModel, error)

func (f ControllerFunc) HandleRequest(w http.ResponseWriter, r *http.Request) (*ViewModel, error) {
	return f(w, r)
}

// ViewModel is the outcome of a controller. When Redirect is set, ViewName
// is the redirect target and Model is ignored.
type ViewModel struct {
	ViewName string
	Model    map[string]any
	Redirect bool
}

// View renders name with model.
func View(name string, model map[string]any) *ViewModel {
	return &ViewModel{ViewName: name, Model: model}
}

// RedirectTo redirects to uri. Paths starting with "/" are relative to the
// handler's ContextPath.
func RedirectTo(uri string) *ViewModel {
	return &ViewModel{ViewName: uri, Redirect: true}
}

type attrsKey struct{}

// WithAttribute returns a context carrying key=value as a request attribute.
// Attributes set by middleware are visible to every rendered view. A nil
// value is ignored.
func WithAttribute(ctx context.Context, key string, value any) context.Context {
	if value == nil {
		return ctx
	}
	attrs := cloneAttrs(Attributes(ctx), 1)
	attrs[key] = value
	return context.WithValue(ctx, attrsKey{}, attrs)
}

// Attributes returns the request attributes in ctx. The map must not be
// modified.
func Attributes(ctx context.Context) map[string]any {
	attrs, _ := ctx.Value(attrsKey{}).(map[string]any)
	return attrs
}

func cloneAttrs(src map[string]any, extra int) map[string]any {
	out := make(map[string]any, len(src)+extra)
	for k, v := range src {
		out[k] = v
	}
	return out
}
