// Package module mounts self-contained HTTP surfaces under top-level
// path prefixes, each with its own middleware stack.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ziggway/insight/pkg/middleware"
)

// Module is an HTTP handler mounted at a single-level prefix. Requests
// are dispatched to the inner router with the prefix stripped, wrapped
// by the module's middleware stack.
type Module struct {
	prefix string
	inner  http.Handler
	stack  *middleware.Stack
}

// New creates a Module at the given prefix (e.g. "/api"). Panics when
// the prefix is empty, missing a leading slash, or multi-level, since
// these are programming errors caught at wiring time.
func New(prefix string, inner http.Handler) *Module {
	if err := checkPrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix: prefix,
		inner:  inner,
		stack:  middleware.NewStack(),
	}
}

// Use adds middleware to the module's stack.
func (m *Module) Use(mw middleware.Middleware) {
	m.stack.Use(mw)
}

// Prefix returns the module's mount prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Handler returns the inner router wrapped with the middleware stack.
func (m *Module) Handler() http.Handler {
	return m.stack.Wrap(m.inner)
}

// Serve dispatches a request to the inner router with the module
// prefix removed from the URL path.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	stripped := req.URL.Path[len(m.prefix):]
	if stripped == "" {
		stripped = "/"
	}

	// shallow-clone so the original request's URL is untouched
	clone := new(http.Request)
	*clone = *req
	clone.URL = new(url.URL)
	*clone.URL = *req.URL
	clone.URL.Path = stripped
	clone.URL.RawPath = ""

	m.Handler().ServeHTTP(w, clone)
}

func checkPrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be a single-level sub-path: %s", prefix)
	}
	return nil
}
