package route

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// PrintRoutes parses page and returns a table of its routes, one line per handler.
func PrintRoutes(pattern string, page any, args ...any) (string, error) {
	tree, err := Parse(pattern, page, args...)
	if err != nil {
		return "", err
	}
	return tree.String(), nil
}

// String lists method, full route and title of each node with a handler.
func (t *Tree) String() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	for node := range t.root.All() {
		if !node.hasHandler() {
			continue
		}
		full := node.FullRoute()
		if node.OptionalSlash {
			full += "?"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", node.Method, full, node.Name, node.Title)
	}
	_ = tw.Flush()
	return sb.String()
}
