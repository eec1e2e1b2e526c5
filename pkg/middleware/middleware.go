// Package middleware provides composable HTTP middleware and the
// stack type modules use to order it.
package middleware

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Stack is an ordered list of middleware. The first middleware added
// is the outermost wrapper at request time.
type Stack struct {
	layers []Middleware
}

// NewStack creates an empty Stack.
func NewStack() *Stack {
	return &Stack{}
}

// Use appends a middleware to the stack.
func (s *Stack) Use(mw Middleware) {
	s.layers = append(s.layers, mw)
}

// Wrap applies the stack to handler, innermost last.
func (s *Stack) Wrap(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(s.layers) - 1; i >= 0; i-- {
		wrapped = s.layers[i](wrapped)
	}
	return wrapped
}
