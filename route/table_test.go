//lint:file-ignore U1000 Ignore unused code in test file

package route

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemPage struct{}

func (itemPage) ServeHTTP(w http.ResponseWriter, r *http.Request, n *Node) {
	_, _ = fmt.Fprintf(w, "%s %s", n.Name, Param(r.Context(), "id"))
}

type failingPage struct{}

func (failingPage) ServeHTTP(w http.ResponseWriter, r *http.Request) error {
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte("partial"))
	return errors.New("boom")
}

type countPage struct{}

func (countPage) ServeHTTP(w http.ResponseWriter, r *http.Request, c *counter) error {
	c.n++
	_, err := fmt.Fprintf(w, "count %d", c.n)
	return err
}

type needsGreeter struct{}

func (needsGreeter) ServeHTTP(w http.ResponseWriter, r *http.Request, g greeter) error {
	_, err := w.Write([]byte(g.Greet()))
	return err
}

type mwPage struct{ okHandler }

func (mwPage) Middlewares() []MiddlewareFunc {
	return []MiddlewareFunc{trace("n1"), trace("n2")}
}

func trace(name string) MiddlewareFunc {
	return func(next http.Handler, n *Node) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Trace", name+":"+n.Name)
			next.ServeHTTP(w, r)
		})
	}
}

type tablePages struct {
	item    itemPage     `route:"GET /items/{id:[0-9]+}/? Item"`
	fail    failingPage  `route:"/fail"`
	count   countPage    `route:"/count"`
	missing needsGreeter `route:"/missing"`
	mw      mwPage       `route:"/mw"`
}

func mountTable(t *testing.T, opts ...Option) (http.Handler, *counter) {
	t.Helper()
	c := &counter{}
	mux := http.NewServeMux()
	_, err := New(opts...).Mount(NewRouter(mux), "/", &tablePages{}, c)
	require.NoError(t, err)
	return mux, c
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestMount_ExtendedHandler(t *testing.T) {
	h, _ := mountTable(t)
	for _, path := range []string{"/items/12/", "/items/12"} {
		rec := serve(h, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "item 12", rec.Body.String(), path)
	}

	rec := serve(h, http.MethodGet, "/items/abc/")
	assert.Equal(t, http.StatusNotFound, rec.Code, "constraint is checked behind the mux")
}

func TestMount_InjectedArgs(t *testing.T) {
	h, c := mountTable(t)
	serve(h, http.MethodGet, "/count")
	rec := serve(h, http.MethodPost, "/count")
	assert.Equal(t, "count 2", rec.Body.String())
	assert.Equal(t, 2, c.n)
}

func TestMount_ErrorReplacesResponse(t *testing.T) {
	var got []error
	h, _ := mountTable(t, WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
		got = append(got, err)
		http.Error(w, "failed: "+err.Error(), http.StatusTeapot)
	}))

	rec := serve(h, http.MethodGet, "/fail")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "failed: boom\n", rec.Body.String())

	rec = serve(h, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.Len(t, got, 2)
	assert.ErrorContains(t, got[1], "requires argument of type route.greeter")
}

func TestMount_DefaultErrorHandler(t *testing.T) {
	h, _ := mountTable(t)
	rec := serve(h, http.MethodGet, "/fail")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error\n", rec.Body.String())
}

func TestMount_MiddlewareOrder(t *testing.T) {
	h, _ := mountTable(t, WithMiddlewares(trace("g1"), trace("g2")))
	rec := serve(h, http.MethodGet, "/mw")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"g1:mw", "g2:mw", "n1:mw", "n2:mw"}, rec.Header().Values("X-Trace"))

	rec = serve(h, http.MethodGet, "/items/3")
	assert.Equal(t, []string{"g1:item", "g2:item"}, rec.Header().Values("X-Trace"))
}

type badMiddlewares struct{ okHandler }

func (badMiddlewares) Middlewares() []func(http.Handler) http.Handler { return nil }

type failingMiddlewares struct{ okHandler }

func (failingMiddlewares) Middlewares() ([]MiddlewareFunc, error) {
	return nil, errors.New("no middlewares today")
}

func TestMount_Errors(t *testing.T) {
	tests := []struct {
		name    string
		page    any
		wantErr string
	}{
		{
			name: "leaf without handler",
			page: &struct {
				empty struct{} `route:"/empty"`
			}{},
			wantErr: "empty has no handler and no children",
		},
		{
			name: "wrong middleware type",
			page: &struct {
				bad badMiddlewares `route:"/bad"`
			}{},
			wantErr: "did not return []func(http.Handler, *Node) http.Handler",
		},
		{
			name: "middleware error",
			page: &struct {
				bad failingMiddlewares `route:"/bad"`
			}{},
			wantErr: "no middlewares today",
		},
		{name: "parse error", page: nil, wantErr: "nil page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Mount(NewRouter(http.NewServeMux()), "/", tt.page)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
