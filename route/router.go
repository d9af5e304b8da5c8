package route

import (
	"net/http"
	"strings"
)

// Router is an interface for registering HTTP routes.
// This simplified interface allows route tables to work with different routing implementations.
type Router interface {
	HandleMethod(method, pattern string, handler http.Handler)
}

type stdRouter struct {
	router *http.ServeMux
}

// NewRouter creates a new router that wraps http.ServeMux.
// If router is nil, it uses http.DefaultServeMux.
//
// The mux treats a trailing slash as a subtree, so such patterns are registered with {$}
// to match exactly. Parameter constraints are dropped from the mux pattern; the mounted
// handler checks them and answers 404 when they do not hold.
//
//	mux := http.NewServeMux()
//	_, err := route.New().Mount(route.NewRouter(mux), "/api", texts.Routes{}, st)
func NewRouter(router *http.ServeMux) *stdRouter {
	if router == nil {
		router = http.DefaultServeMux
	}
	return &stdRouter{router: router}
}

func (r *stdRouter) HandleMethod(method, pattern string, handler http.Handler) {
	pattern = muxPattern(pattern)
	if method != methodAll && method != "" {
		pattern = method + " " + pattern
	}
	r.router.Handle(pattern, handler)
}

func (r *stdRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

func muxPattern(pattern string) string {
	segments, err := parseSegments(pattern)
	if err != nil {
		// let the mux report the malformed pattern
		return pattern
	}
	var sb strings.Builder
	for _, seg := range segments {
		switch {
		case seg.name == "{$}":
			sb.WriteString("{$}")
		case seg.wildcard:
			sb.WriteString("{" + seg.name + "...}")
		case seg.param:
			sb.WriteString("{" + seg.name + "}")
		default:
			sb.WriteString(seg.name)
		}
	}
	s := sb.String()
	if strings.HasSuffix(s, "/") {
		s += "{$}"
	}
	return s
}
