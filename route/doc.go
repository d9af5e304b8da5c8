// Package route provides a way to declare HTTP route tables using struct tags and methods.
// A struct's `route` tagged fields become a tree of [Node] values that can be mounted on an
// [http.ServeMux] or any [Router], resolved against request paths, and reversed with [URLFor].
package route
