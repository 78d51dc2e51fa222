package routes

import "net/http"

// Route binds a method and a pattern relative to its group to a handler.
// An empty Pattern matches the group prefix itself.
//
// Body and Returns hold zero values of the JSON request and response types
// and only feed the API description. Leave them nil for non-JSON payloads.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	Body    any
	Returns any
}
