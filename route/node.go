package route

import (
	"fmt"
	"iter"
	"reflect"
	"strings"
)

// Node is one entry of a parsed route tree.
type Node struct {
	Name          string
	Title         string
	Method        string
	Route         string
	OptionalSlash bool
	Value         reflect.Value
	Handler       *reflect.Method
	Middlewares   *reflect.Method
	Parent        *Node
	Children      []*Node
}

// FullRoute returns the route joined with all parent routes. Unlike path.Join it
// keeps the trailing slash of the last segment, which is significant for matching.
func (n *Node) FullRoute() string {
	if n.Parent == nil {
		return n.Route
	}
	return joinRoute(n.Parent.FullRoute(), n.Route)
}

// All iterates the node and its descendants in pre-order.
func (n *Node) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		walk(n, yield)
	}
}

func walk(n *Node, yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, child := range n.Children {
		if !walk(child, yield) {
			return false
		}
	}
	return true
}

func joinRoute(parent, child string) string {
	switch {
	case child == "" || child == "/":
		if strings.HasSuffix(parent, "/") {
			return parent
		}
		return parent + child
	case parent == "" || parent == "/":
		return "/" + strings.TrimPrefix(child, "/")
	}
	return strings.TrimSuffix(parent, "/") + "/" + strings.TrimPrefix(child, "/")
}

func (n Node) String() string {
	var sb strings.Builder
	sb.WriteString("Node{")
	sb.WriteString("\n  name: " + n.Name)
	sb.WriteString("\n  title: " + n.Title)
	sb.WriteString("\n  method: " + n.Method)
	sb.WriteString("\n  route: " + n.Route)
	if n.OptionalSlash {
		sb.WriteString("\n  optional slash: true")
	}
	sb.WriteString("\n  middlewares: " + formatMethod(n.Middlewares))
	if n.Value.IsValid() && n.Value.Type().Implements(handlerType) {
		sb.WriteString("\n  is http.Handler: true")
	} else {
		sb.WriteString("\n  handler: " + formatMethod(n.Handler))
	}
	for i, child := range n.Children {
		fmt.Fprintf(&sb, "\n  child %d:", i+1)
		childStr := strings.TrimRight(child.String(), "\n")
		for _, line := range strings.SplitAfter(childStr, "\n") {
			sb.WriteString("  " + line)
		}
	}
	sb.WriteString("\n}")
	return sb.String()
}
