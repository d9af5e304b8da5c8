package route

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

// MiddlewareFunc wraps the handler of a node. It receives the node so that it can
// use the route pattern rather than the raw request path.
type MiddlewareFunc = func(http.Handler, *Node) http.Handler

// Table mounts route trees onto routers.
type Table struct {
	onError     func(http.ResponseWriter, *http.Request, error)
	middlewares []MiddlewareFunc
}

// Option configures a Table.
type Option func(*Table)

func New(options ...Option) *Table {
	t := &Table{
		onError: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// WithErrorHandler sets the function called when a handler returns an error.
func WithErrorHandler(onError func(http.ResponseWriter, *http.Request, error)) Option {
	return func(t *Table) {
		t.onError = onError
	}
}

// WithMiddlewares adds middlewares applied to every node, outside the node's own.
// The first middleware is the outermost.
func WithMiddlewares(middlewares ...MiddlewareFunc) Option {
	return func(t *Table) {
		t.middlewares = append(t.middlewares, middlewares...)
	}
}

// Mount parses page and registers each node that has a handler on router.
func (t *Table) Mount(router Router, pattern string, page any, args ...any) (*Tree, error) {
	tree, err := Parse(pattern, page, args...)
	if err != nil {
		return nil, err
	}
	if err := t.registerNode(router, tree, tree.root); err != nil {
		return nil, err
	}
	return tree, nil
}

func (t *Table) registerNode(router Router, tree *Tree, node *Node) error {
	if node.Route == "" {
		return errors.New("route is empty: " + node.Name)
	}
	for _, child := range node.Children {
		if err := t.registerNode(router, tree, child); err != nil {
			return err
		}
	}
	if !node.hasHandler() {
		if len(node.Children) == 0 {
			return fmt.Errorf("%s has no handler and no children", node.Name)
		}
		return nil
	}
	handler := t.buildHandler(tree, node)
	if node.Middlewares != nil {
		res, err := tree.callMethod(node, node.Middlewares)
		if err != nil {
			return fmt.Errorf("error calling Middlewares method on %s: %w", node.Name, err)
		}
		res, err = extractError(res)
		if err != nil {
			return fmt.Errorf("error calling Middlewares method on %s: %w", node.Name, err)
		}
		if len(res) != 1 {
			return fmt.Errorf("Middlewares method on %s did not return single result", node.Name)
		}
		middlewares, ok := res[0].Interface().([]MiddlewareFunc)
		if !ok {
			return fmt.Errorf("Middlewares method on %s did not return []func(http.Handler, *Node) http.Handler", node.Name)
		}
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler, node)
		}
	}
	for i := len(t.middlewares) - 1; i >= 0; i-- {
		handler = t.middlewares[i](handler, node)
	}
	handler = tree.extractURLParams(handler, node)
	handler = withTreeCtx(tree)(handler, node)

	full := node.FullRoute()
	router.HandleMethod(node.Method, full, handler)
	if node.OptionalSlash && strings.HasSuffix(full, "/") && full != "/" {
		router.HandleMethod(node.Method, strings.TrimSuffix(full, "/"), handler)
	}
	return nil
}

func (t *Table) buildHandler(tree *Tree, node *Node) http.Handler {
	if h, ok := node.Value.Interface().(http.Handler); ok {
		return h
	}
	method := node.Handler
	returnsError := method.Type.NumOut() > 0
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !returnsError {
			if _, err := tree.callMethod(node, method, reflect.ValueOf(w), reflect.ValueOf(r)); err != nil {
				t.onError(w, r, err)
			}
			return
		}
		bw := newBuffered(w)
		res, err := tree.callMethod(node, method, reflect.ValueOf(http.ResponseWriter(bw)), reflect.ValueOf(r))
		if err == nil {
			_, err = extractError(res)
		}
		if err != nil {
			bw.discard()
			t.onError(w, r, err)
			return
		}
		if err := bw.close(); err != nil {
			t.onError(w, r, err)
		}
	})
}
