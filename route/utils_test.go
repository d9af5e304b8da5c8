package route

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffered(t *testing.T) {
	rec := httptest.NewRecorder()
	bw := newBuffered(rec)
	bw.Header().Set("X-Test", "1")
	bw.WriteHeader(http.StatusCreated)
	bw.WriteHeader(http.StatusAccepted)
	_, err := bw.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = bw.Write([]byte("world"))
	require.NoError(t, err)

	assert.Empty(t, rec.Body.String(), "nothing reaches the writer before close")
	assert.Same(t, http.ResponseWriter(rec), bw.Unwrap())

	require.NoError(t, bw.close())
	assert.Equal(t, http.StatusCreated, rec.Code, "first status wins")
	assert.Equal(t, "hello world", rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get("X-Test"))
}

func TestBuffered_Discard(t *testing.T) {
	rec := httptest.NewRecorder()
	bw := newBuffered(rec)
	bw.WriteHeader(http.StatusTeapot)
	_, _ = bw.Write([]byte("partial"))
	bw.discard()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
