package route

import (
	"cmp"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"runtime"
	"slices"
	"strings"
)

// Tree is a parsed route table.
type Tree struct {
	root     *Node
	args     argRegistry
	matchers map[*Node]*matcher
}

// Parse builds a route tree from page, mounted at pattern. The args are made available
// to Init, Middlewares and ServeHTTP methods by type.
func Parse(pattern string, page any, args ...any) (*Tree, error) {
	if page == nil {
		return nil, errors.New("route: nil page")
	}
	t := &Tree{args: make(argRegistry), matchers: make(map[*Node]*matcher)}
	for _, v := range args {
		if err := t.args.addArg(v); err != nil {
			return nil, fmt.Errorf("error adding argument to registry: %w", err)
		}
	}
	root, err := t.parseNode(pattern, "", page)
	if err != nil {
		return nil, err
	}
	t.root = root
	for node := range root.All() {
		if !node.hasHandler() {
			continue
		}
		m, err := compileMatcher(node)
		if err != nil {
			return nil, err
		}
		t.matchers[node] = m
	}
	return t, nil
}

// Root returns the top node of the tree.
func (t *Tree) Root() *Node { return t.root }

func (t *Tree) parseNode(route, fieldName string, page any) (*Node, error) {
	st := reflect.TypeOf(page) // struct type
	pt := reflect.TypeOf(page) // pointer type
	if st.Kind() == reflect.Ptr {
		st = st.Elem()
	} else {
		pt = reflect.PointerTo(st)
	}
	if st.Kind() != reflect.Struct {
		return nil, fmt.Errorf("route: %s is not a struct", st)
	}
	node := &Node{Value: reflect.ValueOf(page), Name: cmp.Or(fieldName, st.Name())}
	node.Method, node.Route, node.Title = parseTag(route)
	if strings.HasSuffix(node.Route, "/?") {
		node.Route = strings.TrimSuffix(node.Route, "?")
		node.OptionalSlash = true
	}

	for i := range st.NumField() {
		field := st.Field(i)
		tag, ok := field.Tag.Lookup("route")
		if !ok {
			continue
		}
		typ := field.Type
		if typ.Kind() == reflect.Ptr {
			typ = typ.Elem()
		}
		child, err := t.parseNode(tag, field.Name, reflect.New(typ).Interface())
		if err != nil {
			return nil, err
		}
		child.Parent = node
		node.Children = append(node.Children, child)
	}

	for _, typ := range []reflect.Type{st, pt} {
		for i := range typ.NumMethod() {
			method := typ.Method(i)
			if isPromotedMethod(&method) {
				continue
			}
			switch method.Name {
			case "ServeHTTP":
				if node.Handler == nil && isServeHTTP(&method) {
					node.Handler = &method
				}
			case "Middlewares":
				node.Middlewares = &method
			case "Init":
				res, err := t.callMethod(node, &method)
				if err != nil {
					return nil, fmt.Errorf("error calling Init method on %s: %w", node.Name, err)
				}
				if _, err := extractError(res); err != nil {
					return nil, fmt.Errorf("error calling Init method on %s: %w", node.Name, err)
				}
			}
		}
	}
	return node, nil
}

func (n *Node) hasHandler() bool {
	return n.Handler != nil || (n.Value.IsValid() && n.Value.Type().Implements(handlerType))
}

// callMethod calls method with receiver pn.Value and arguments args.
// Parameters beyond args are filled with *Node or values from the registry.
func (t *Tree) callMethod(pn *Node, method *reflect.Method, args ...reflect.Value) ([]reflect.Value, error) {
	v := pn.Value
	receiver := method.Type.In(0)
	// make sure receiver and value match, if method takes a pointer, convert value to pointer
	if receiver.Kind() == reflect.Ptr && v.Kind() != reflect.Ptr {
		if !v.CanAddr() {
			pv := reflect.New(v.Type())
			pv.Elem().Set(v)
			v = pv
		} else {
			v = v.Addr()
		}
	}
	if receiver.Kind() != reflect.Ptr && v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if receiver.Kind() != v.Kind() {
		return nil, fmt.Errorf("method %s receiver type mismatch: expected %s, got %s",
			formatMethod(method), receiver.String(), v.Type().String())
	}
	in := make([]reflect.Value, method.Type.NumIn())
	in[0] = v
	filled := 1
	for i := range min(len(in)-1, len(args)) {
		in[i+1] = args[i]
		filled++
	}
	nodeValue := reflect.ValueOf(pn)
	for i := filled; i < len(in); i++ {
		argType := method.Type.In(i)
		switch argType {
		case nodeValue.Type():
			in[i] = nodeValue
		case nodeValue.Type().Elem():
			in[i] = nodeValue.Elem()
		default:
			val, ok := t.args.getArg(argType)
			if !ok {
				return nil, fmt.Errorf("method %s requires argument of type %s, but not found",
					formatMethod(method), argType.String())
			}
			in[i] = val
		}
	}
	return method.Func.Call(in), nil
}

func parseTag(route string) (method, path, title string) {
	method = methodAll
	parts := strings.Fields(route)
	if len(parts) == 0 {
		path = "/"
		return
	}
	if len(parts) == 1 {
		path = parts[0]
		return
	}
	method = strings.ToUpper(parts[0])
	if slices.Contains(validMethod, method) {
		path = parts[1]
		title = strings.Join(parts[2:], " ")
	} else {
		method = methodAll
		path = parts[0]
		title = strings.Join(parts[1:], " ")
	}
	return
}

const methodAll = "ALL"

var validMethod = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodConnect,
	http.MethodOptions,
	http.MethodTrace,
	methodAll,
}

var (
	errorType          = reflect.TypeOf((*error)(nil)).Elem()
	handlerType        = reflect.TypeOf((*http.Handler)(nil)).Elem()
	responseWriterType = reflect.TypeOf((*http.ResponseWriter)(nil)).Elem()
	requestType        = reflect.TypeOf((*http.Request)(nil))
)

// isServeHTTP reports whether method looks like ServeHTTP(w, r, extra...) [(..., error)].
func isServeHTTP(method *reflect.Method) bool {
	mt := method.Type
	if mt.NumIn() < 3 || mt.In(1) != responseWriterType || mt.In(2) != requestType {
		return false
	}
	if mt.NumOut() == 0 {
		return true
	}
	return mt.Out(mt.NumOut() - 1).AssignableTo(errorType)
}

func extractError(args []reflect.Value) ([]reflect.Value, error) {
	if len(args) == 0 || !args[len(args)-1].Type().AssignableTo(errorType) {
		return args, nil
	}
	last := args[len(args)-1]
	args = args[:len(args)-1]
	if last.IsNil() {
		return args, nil
	}
	return args, last.Interface().(error)
}

func formatMethod(method *reflect.Method) string {
	if method == nil || method.Func == (reflect.Value{}) {
		return "<nil>"
	}
	return fmt.Sprintf("%s.%s", method.Type.In(0).String(), method.Name)
}

func isPromotedMethod(method *reflect.Method) bool {
	// Check if the method is promoted from an embedded type
	// https://github.com/golang/go/issues/73883
	wPC := method.Func.Pointer()
	wFunc := runtime.FuncForPC(wPC)
	wFile, wLine := wFunc.FileLine(wPC)
	return wFile == "<autogenerated>" && wLine == 1
}
