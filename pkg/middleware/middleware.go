// Package middleware provides the HTTP middleware shared by scrivener's
// modules: panic recovery, CORS, and request logging.
package middleware

import "net/http"

// Middleware wraps a handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain is an ordered middleware stack. The first middleware added is the
// outermost wrapper.
type Chain struct {
	stack []Middleware
}

// New creates an empty Chain.
func New() *Chain {
	return &Chain{}
}

// Use appends middleware to the end of the chain.
func (c *Chain) Use(mws ...Middleware) {
	c.stack = append(c.stack, mws...)
}

// Len reports how many middleware are in the chain.
func (c *Chain) Len() int {
	return len(c.stack)
}

// Apply wraps handler so requests pass through the chain in insertion order.
func (c *Chain) Apply(handler http.Handler) http.Handler {
	for i := len(c.stack) - 1; i >= 0; i-- {
		handler = c.stack[i](handler)
	}
	return handler
}
