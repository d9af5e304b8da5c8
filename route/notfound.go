package route

import (
	"net/http"
	"strings"
)

// NotFoundHandler returns a handler for unmatched requests. A GET or HEAD request whose
// path would resolve with a trailing slash appended is redirected there permanently;
// anything else goes to fallback, or http.NotFound when fallback is nil.
func (t *Tree) NotFoundHandler(fallback http.Handler) http.Handler {
	if fallback == nil {
		fallback = http.NotFoundHandler()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			fallback.ServeHTTP(w, r)
			return
		}
		p := r.URL.Path
		if strings.HasSuffix(p, "/") {
			fallback.ServeHTTP(w, r)
			return
		}
		if _, ok := t.Resolve(http.MethodGet, p+"/"); !ok {
			fallback.ServeHTTP(w, r)
			return
		}
		u := *r.URL
		u.Path = p + "/"
		u.RawPath = ""
		http.Redirect(w, r, u.String(), http.StatusMovedPermanently)
	})
}
