//lint:file-ignore U1000 Ignore unused code in test file

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkhang/parkhang/route"
)

type itemPage struct{}

func (itemPage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusAccepted)
}

type pages struct {
	item itemPage `route:"GET /items/{id:[0-9]+}/ Item"`
}

func TestMiddleware(t *testing.T) {
	m := New()
	mux := http.NewServeMux()
	_, err := route.New(route.WithMiddlewares(m.Middleware)).Mount(route.NewRouter(mux), "/", &pages{})
	require.NoError(t, err)

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id+"/", nil))
		require.Equal(t, http.StatusAccepted, rec.Code)
	}

	got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "/items/{id:[0-9]+}/", "202"))
	assert.Equal(t, float64(3), got)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "parkhang_http_requests_total")
}
