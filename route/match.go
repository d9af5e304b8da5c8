package route

import (
	"fmt"
	"regexp"
	"strings"
)

// Match is the result of resolving a path against a Tree.
type Match struct {
	Node   *Node
	Params map[string]string
}

// Resolve returns the first node, in declaration order, whose full route matches path
// and whose method accepts method. An empty method matches any node.
func (t *Tree) Resolve(method, path string) (*Match, bool) {
	for node := range t.root.All() {
		m := t.matchers[node]
		if m == nil {
			continue
		}
		if method != "" && node.Method != methodAll && node.Method != method {
			continue
		}
		if params, ok := m.match(path); ok {
			return &Match{Node: node, Params: params}, true
		}
	}
	return nil, false
}

type matcher struct {
	re     *regexp.Regexp
	params []string
}

// compileMatcher turns the node's full route into an anchored regular expression.
// Parameters without a constraint match a single non-empty segment.
func compileMatcher(node *Node) (*matcher, error) {
	pattern := node.FullRoute()
	segments, err := parseSegments(pattern)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString("^")
	m := &matcher{}
	for i, seg := range segments {
		switch {
		case seg.name == "{$}":
		case !seg.param:
			lit := seg.name
			last := i == len(segments)-1
			if last && node.OptionalSlash && strings.HasSuffix(lit, "/") {
				sb.WriteString(regexp.QuoteMeta(strings.TrimSuffix(lit, "/")))
				sb.WriteString("/?")
				continue
			}
			sb.WriteString(regexp.QuoteMeta(lit))
		case seg.wildcard:
			fmt.Fprintf(&sb, "(?P<%s>.*)", seg.name)
			m.params = append(m.params, seg.name)
		default:
			fmt.Fprintf(&sb, "(?P<%s>%s)", seg.name, seg.constraintOr("[^/]+"))
			m.params = append(m.params, seg.name)
		}
	}
	sb.WriteString("$")
	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", pattern, err)
	}
	m.re = re
	return m, nil
}

func (m *matcher) match(path string) (map[string]string, bool) {
	sub := m.re.FindStringSubmatch(path)
	if sub == nil {
		return nil, false
	}
	params := make(map[string]string, len(m.params))
	for _, name := range m.params {
		params[name] = sub[m.re.SubexpIndex(name)]
	}
	return params, true
}
