package texts

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/angelofallars/htmx-go"
)

// render writes data as JSON, or as HTML for browsers. htmx requests get only the
// fragment, which replaces the content area of the page.
func render(w http.ResponseWriter, r *http.Request, data any, title string, fragment templ.Component) error {
	switch {
	case htmx.IsHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		return htmx.NewResponse().
			Reswap(htmx.SwapInnerHTML).
			Retarget("#content").
			RenderTempl(r.Context(), w, fragment)
	case wantsHTML(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		return page(title, fragment).Render(r.Context(), w)
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(data)
}

// wantsHTML reports whether the client prefers text/html over JSON. Only the order of
// the Accept header is considered, quality values are ignored.
func wantsHTML(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		switch mediaType {
		case "text/html", "application/xhtml+xml":
			return true
		case "application/json", "application/*":
			return false
		}
	}
	return false
}
