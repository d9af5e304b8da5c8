package route

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/jackielii/ctxkey"
)

var (
	treeCtx      = ctxkey.New[*Tree]("route.tree", nil)
	urlParamsCtx = ctxkey.New[map[string]string]("route.urlParams", nil)
)

func withTreeCtx(t *Tree) MiddlewareFunc {
	return func(next http.Handler, node *Node) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := treeCtx.WithValue(r.Context(), t)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractURLParams matches the request path against the node's route and stores the
// parameters in the context and as request path values. Constrained parameters that
// the underlying router could not check are rejected here with 404.
func (t *Tree) extractURLParams(next http.Handler, node *Node) http.Handler {
	m := t.matchers[node]
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, ok := m.match(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}
		for name, value := range params {
			r.SetPathValue(name, value)
		}
		if len(params) > 0 {
			r = r.WithContext(urlParamsCtx.WithValue(r.Context(), params))
		}
		next.ServeHTTP(w, r)
	})
}

// Param returns the path parameter name of the current request, or "".
func Param(ctx context.Context, name string) string {
	return urlParamsCtx.Value(ctx)[name]
}

// URLFor returns the URL for a given page type using the tree stored in ctx.
// If args is provided, it'll replace the path parameters, otherwise parameters of
// the current request are used.
//
// The page can be a handler value, a func(*Node) bool, or a []any joining
// several pages and literal strings:
//
//	URLFor(ctx, []any{TextDetail{}, "?format=json"}, "text_id", 1)
func URLFor(ctx context.Context, page any, args ...any) (string, error) {
	t := treeCtx.Value(ctx)
	if t == nil {
		return "", errors.New("route tree not found in context")
	}
	return t.urlFor(urlParamsCtx.Value(ctx), page, args...)
}

// URLFor is like the package level URLFor without request parameters.
func (t *Tree) URLFor(page any, args ...any) (string, error) {
	return t.urlFor(nil, page, args...)
}

func (t *Tree) urlFor(current map[string]string, page any, args ...any) (string, error) {
	var pattern string
	parts, ok := page.([]any)
	if !ok {
		parts = []any{page}
	}
	for _, part := range parts {
		if s, ok := part.(string); ok {
			pattern += s
			continue
		}
		p, err := t.findRoute(part)
		if err != nil {
			return "", err
		}
		pattern += p
	}
	path, err := formatPathSegments(current, pattern, args...)
	if err != nil {
		return "", fmt.Errorf("urlfor: %w", err)
	}
	return path, nil
}

func (t *Tree) findRoute(v any) (string, error) {
	if f, ok := v.(func(*Node) bool); ok {
		for node := range t.root.All() {
			if f(node) {
				return node.FullRoute(), nil
			}
		}
		return "", errors.New("urlfor: no page node matched predicate")
	}
	ptv := pointerType(reflect.TypeOf(v))
	for node := range t.root.All() {
		if ptv == pointerType(node.Value.Type()) {
			return node.FullRoute(), nil
		}
	}
	return "", fmt.Errorf("urlfor: no page node found for %s", ptv.String())
}

func pointerType(v reflect.Type) reflect.Type {
	if v.Kind() == reflect.Ptr {
		return v
	}
	return reflect.PointerTo(v)
}

// formatPathSegments fills the parameters of pattern. Arguments may be positional,
// key/value pairs, or a single map[string]any. Parameters not given fall back to current.
func formatPathSegments(current map[string]string, pattern string, args ...any) (string, error) {
	segments, err := parseSegments(pattern)
	if err != nil {
		return pattern, err
	}
	var indices []int
	for i, seg := range segments {
		if seg.param {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		return render(segments), nil
	}

	values := make(map[string]string, len(indices))
	for _, idx := range indices {
		if v, ok := current[segments[idx].name]; ok {
			values[segments[idx].name] = v
		}
	}

	switch named, isNamed := namedArgs(segments, indices, args); {
	case isNamed:
		for k, v := range named {
			values[k] = fmt.Sprint(v)
		}
	case len(args) == len(indices):
		for i, idx := range indices {
			values[segments[idx].name] = fmt.Sprint(args[i])
		}
	default:
		var unfilled []int
		for _, idx := range indices {
			if _, ok := values[segments[idx].name]; !ok {
				unfilled = append(unfilled, idx)
			}
		}
		if len(args) < len(unfilled) {
			return pattern, fmt.Errorf("pattern %s: not enough arguments provided, args: %v", pattern, args)
		}
		for i, idx := range unfilled {
			values[segments[idx].name] = fmt.Sprint(args[i])
		}
	}

	for _, idx := range indices {
		seg := &segments[idx]
		v, ok := values[seg.name]
		if !ok || v == "" {
			return pattern, fmt.Errorf("pattern %s: argument %s not found in provided args: %v", pattern, seg.name, args)
		}
		if seg.constraint != "" {
			re, err := regexp.Compile("^(?:" + seg.constraint + ")$")
			if err != nil {
				return pattern, fmt.Errorf("pattern %s: %w", pattern, err)
			}
			if !re.MatchString(v) {
				return pattern, fmt.Errorf("pattern %s: argument %s=%q does not match %s", pattern, seg.name, v, seg.constraint)
			}
		}
		if seg.wildcard {
			seg.value = (&url.URL{Path: v}).EscapedPath()
		} else {
			seg.value = url.PathEscape(v)
		}
	}
	return render(segments), nil
}

// namedArgs reports whether args are a map or key/value pairs naming at least one parameter.
func namedArgs(segments []segment, indices []int, args []any) (map[string]any, bool) {
	if len(args) == 1 {
		m, ok := args[0].(map[string]any)
		return m, ok
	}
	if len(args) < 2 || len(args)%2 != 0 {
		return nil, false
	}
	names := make(map[string]bool, len(indices))
	for _, idx := range indices {
		names[segments[idx].name] = true
	}
	m := make(map[string]any, len(args)/2)
	matched := false
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			return nil, false
		}
		matched = matched || names[key]
		m[key] = args[i+1]
	}
	return m, matched
}

func render(segments []segment) string {
	var sb strings.Builder
	for _, seg := range segments {
		switch {
		case seg.name == "{$}":
		case seg.param:
			sb.WriteString(seg.value)
		default:
			sb.WriteString(seg.name)
		}
	}
	return sb.String()
}

type segment struct {
	name       string
	param      bool
	wildcard   bool
	constraint string
	value      string
}

func (s segment) constraintOr(def string) string {
	if s.constraint == "" {
		return def
	}
	return s.constraint
}

// parseSegments splits a pattern into literal and parameter segments. A parameter is
// {name}, {name...} or {name:regexp}; the regexp may itself contain braces.
func parseSegments(pattern string) (segments []segment, err error) {
	rest := pattern
	for rest != "" {
		start := strings.Index(rest, "{")
		if start == -1 {
			segments = append(segments, segment{name: rest})
			break
		}
		if start > 0 {
			segments = append(segments, segment{name: rest[:start]})
		}
		rest = rest[start+1:]
		end, depth := -1, 0
		for i, c := range rest {
			if c == '{' {
				depth++
			} else if c == '}' {
				if depth == 0 {
					end = i
					break
				}
				depth--
			}
		}
		if end == -1 {
			return nil, fmt.Errorf("pattern %s: unmatched {", pattern)
		}
		body := rest[:end]
		rest = rest[end+1:]
		if body == "$" {
			segments = append(segments, segment{name: "{$}"})
			continue
		}
		seg := segment{param: true}
		if name, constraint, ok := strings.Cut(body, ":"); ok {
			seg.name, seg.constraint = name, constraint
		} else if name, ok := strings.CutSuffix(body, "..."); ok {
			seg.name, seg.wildcard = name, true
		} else {
			seg.name = body
		}
		if seg.name == "" {
			return nil, fmt.Errorf("pattern %s: empty parameter name", pattern)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}
