// Package chirouter adapts a chi router to route.Router.
package chirouter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parkhang/parkhang/route"
)

type chiRouter struct {
	router chi.Router
}

var _ route.Router = (*chiRouter)(nil)

// New wraps r. chi understands {name:regexp} parameters natively.
func New(r chi.Router) *chiRouter {
	return &chiRouter{router: r}
}

func (r *chiRouter) HandleMethod(method, path string, handler http.Handler) {
	if method == "ALL" || method == "" {
		r.router.Handle(path, handler)
	} else {
		r.router.Method(method, path, handler)
	}
}

func (r *chiRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
