package server

import (
	"net/http"
	"strings"
)

// BasicRouter is the [Router] behind the OAuth callback server.
//
// Routes are [http.ServeMux] patterns. A route registered for one method answers
// every other method with 405.
type BasicRouter struct {
	mux   *http.ServeMux
	chain []Middleware
}

// NewBasicRouter creates an empty [BasicRouter].
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends middleware. The first middleware added sees the request first.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.chain = append(r.chain, middleware...)
}

// Handle registers handler for method and path. An empty method matches any method.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	pattern := path
	if method != "" {
		pattern = strings.ToUpper(method) + " " + path
	}
	r.mux.Handle(pattern, r.wrap(handler))
}

// Handler registers handler under each of its [Handler.Routes].
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.wrap(handler)
	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

// Redirect answers GET requests for path with a 302 to target.
func (r *BasicRouter) Redirect(path, target string) {
	r.Handle(http.MethodGet, path, http.RedirectHandler(target, http.StatusFound))
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *BasicRouter) wrap(h http.Handler) http.Handler {
	for i := len(r.chain) - 1; i >= 0; i-- {
		h = r.chain[i](h)
	}
	return h
}
