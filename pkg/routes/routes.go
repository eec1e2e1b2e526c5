// Package routes declares HTTP endpoints as data so modules can
// describe their surface without touching a mux directly.
package routes

import "net/http"

// Route binds one method and pattern to a handler. Pattern is relative
// to the owning group's prefix and may use path wildcards.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group collects the routes of one domain module under a shared
// prefix. Nested groups inherit the parent prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register mounts every route in the given groups onto mux, joining
// method, accumulated prefix, and pattern into a 1.22 mux pattern.
func Register(mux *http.ServeMux, groups ...Group) {
	type frame struct {
		prefix string
		group  Group
	}

	stack := make([]frame, 0, len(groups))
	for _, g := range groups {
		stack = append(stack, frame{group: g})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		prefix := f.prefix + f.group.Prefix
		for _, r := range f.group.Routes {
			mux.HandleFunc(r.Method+" "+prefix+r.Pattern, r.Handler)
		}
		for _, child := range f.group.Children {
			stack = append(stack, frame{prefix: prefix, group: child})
		}
	}
}
