package texts

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/parkhang/parkhang/internal/store"
)

func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<script src="https://unpkg.com/htmx.org@2.0.4"></script>
</head>
<body hx-boost="true">
<main id="content">`, templ.EscapeString(title))
		if err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err = io.WriteString(w, "</main>\n</body>\n</html>\n")
		return err
	})
}

func link(w io.Writer, href, text string) error {
	href = templ.EscapeString(href)
	_, err := fmt.Fprintf(w, `<a href="%s" hx-get="%s" hx-target="#content">%s</a>`,
		href, href, templ.EscapeString(text))
	return err
}

func textListView(items []textItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Texts</h1><ul class="texts">`); err != nil {
			return err
		}
		for _, item := range items {
			if _, err := io.WriteString(w, "<li>"); err != nil {
				return err
			}
			if err := link(w, item.URL, item.Name); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "</li>"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>")
		return err
	})
}

func textDetailView(d textDetail) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h1>%s</h1><ul class="text">`, templ.EscapeString(d.Name))
		if err != nil {
			return err
		}
		for _, l := range []struct{ href, text string }{
			{d.WitnessesURL, "Witnesses"},
			{d.AnnotationsURL, "Annotations"},
		} {
			if _, err := io.WriteString(w, "<li>"); err != nil {
				return err
			}
			if err := link(w, l.href, l.text); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "</li>"); err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, "</ul>")
		return err
	})
}

func witnessListView(witnesses []store.Witness) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Witnesses</h1><ul class="witnesses">`); err != nil {
			return err
		}
		for _, wit := range witnesses {
			name := templ.EscapeString(wit.Name)
			if wit.IsBase {
				name += " (base)"
			}
			_, err := fmt.Fprintf(w, `<li id="witness-%d"><h2>%s</h2><p>%s</p></li>`,
				wit.ID, name, templ.EscapeString(wit.Content))
			if err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>")
		return err
	})
}

func annotationListView(annotations []store.Annotation) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<h1>Annotations</h1><table class="annotations">`+
			`<tr><th>Witness</th><th>Start</th><th>Length</th><th>Type</th><th>Content</th></tr>`)
		if err != nil {
			return err
		}
		for _, a := range annotations {
			_, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%d</td><td>%d</td><td>%s</td><td>%s</td></tr>`,
				strconv.FormatUint(a.WitnessID, 10), a.Start, a.Length,
				templ.EscapeString(a.Type), templ.EscapeString(a.Content))
			if err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, "</table>")
		return err
	})
}
