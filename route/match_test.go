//lint:file-ignore U1000 Ignore unused code in test file

package route

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileMatcher(t *testing.T) {
	tests := []struct {
		route    string
		optional bool
		wantRe   string
	}{
		{route: "/texts/", wantRe: "^/texts/$"},
		{route: "/texts/", optional: true, wantRe: "^/texts/?$"},
		{route: "/texts/{text_id:[0-9]+}/", wantRe: "^/texts/(?P<text_id>[0-9]+)/$"},
		{route: "/texts/{id}", wantRe: "^/texts/(?P<id>[^/]+)$"},
		{route: "/files/{path...}", wantRe: "^/files/(?P<path>.*)$"},
		{route: "/{$}", wantRe: "^/$"},
		{route: "/a.b+c", wantRe: `^/a\.b\+c$`},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			m, err := compileMatcher(&Node{Route: tt.route, OptionalSlash: tt.optional})
			require.NoError(t, err)
			assert.Equal(t, tt.wantRe, m.re.String())
		})
	}
}

func TestMatcher_match(t *testing.T) {
	m, err := compileMatcher(&Node{Route: "/texts/{text_id:[0-9]+}/", OptionalSlash: true})
	require.NoError(t, err)

	for path, want := range map[string]string{"/texts/1/": "1", "/texts/1": "1", "/texts/0042/": "0042"} {
		params, ok := m.match(path)
		require.True(t, ok, path)
		assert.Equal(t, map[string]string{"text_id": want}, params)
	}
	for _, path := range []string{"/texts/", "/texts//", "/texts/a/", "/texts/1//", "/x/texts/1/", "/texts/1/witnesses/"} {
		_, ok := m.match(path)
		assert.False(t, ok, path)
	}
}

type (
	pageA struct{ okHandler }
	pageB struct{ okHandler }
)

func TestResolve_FirstMatchWins(t *testing.T) {
	type pages struct {
		a pageA `route:"GET /items/{name}/"`
		b pageB `route:"/items/new/"`
	}
	tree, err := Parse("/", &pages{})
	require.NoError(t, err)

	m, ok := tree.Resolve(http.MethodGet, "/items/new/")
	require.True(t, ok)
	assert.Equal(t, "a", m.Node.Name)
	assert.Equal(t, "new", m.Params["name"])

	m, ok = tree.Resolve(http.MethodPost, "/items/new/")
	require.True(t, ok, "ALL accepts any method")
	assert.Equal(t, "b", m.Node.Name)

	_, ok = tree.Resolve(http.MethodGet, "/")
	assert.False(t, ok, "nodes without handlers never match")
}
