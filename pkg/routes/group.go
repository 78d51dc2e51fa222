// Package routes declares handler tables that domain packages expose and
// the API module registers on a ServeMux.
package routes

import "net/http"

// Group is a set of routes sharing a path prefix. Children nest beneath
// the group's prefix, e.g. "/{id}/export" under "/templates".
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Walk calls fn for every route in g and its children with the route's
// full path, prefixed by parent.
func (g Group) Walk(parent string, fn func(path string, route Route)) {
	prefix := parent + g.Prefix
	for _, route := range g.Routes {
		fn(prefix+route.Pattern, route)
	}
	for _, child := range g.Children {
		child.Walk(prefix, fn)
	}
}

// Register adds every route in groups to mux as "METHOD /path" patterns.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		group.Walk("", func(path string, route Route) {
			mux.HandleFunc(route.Method+" "+path, route.Handler)
		})
	}
}
