// Package module mounts self-contained HTTP surfaces under single-level
// path prefixes, each with its own middleware chain.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/JaimeStill/scrivener/pkg/middleware"
)

// Module serves an inner router beneath a prefix such as "/api". The
// prefix is stripped before dispatch, so the inner router registers
// patterns like "GET /templates".
type Module struct {
	prefix  string
	router  http.Handler
	chain   *middleware.Chain
	handler http.Handler
}

// New creates a Module for a single-level prefix. It panics on an empty,
// relative, or nested prefix.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:  prefix,
		router:  router,
		chain:   middleware.New(),
		handler: router,
	}
}

// Use appends middleware to the module's chain. Call it before the module
// starts serving.
func (m *Module) Use(mws ...middleware.Middleware) {
	m.chain.Use(mws...)
	m.handler = m.chain.Apply(m.router)
}

// Handler returns the inner router wrapped by the module's middleware.
func (m *Module) Handler() http.Handler {
	return m.handler
}

// Prefix returns the module's mount prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Serve strips the prefix from req and dispatches to the wrapped router.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.handler.ServeHTTP(w, stripPrefix(req, m.prefix))
}

func stripPrefix(req *http.Request, prefix string) *http.Request {
	path := strings.TrimPrefix(req.URL.Path, prefix)
	if path == "" {
		path = "/"
	}

	r := new(http.Request)
	*r = *req
	r.URL = new(url.URL)
	*r.URL = *req.URL
	r.URL.Path = path
	r.URL.RawPath = ""
	return r
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case prefix[0] != '/':
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Contains(prefix[1:], "/"):
		return fmt.Errorf("module prefix must be a single path segment: %s", prefix)
	}
	return nil
}
