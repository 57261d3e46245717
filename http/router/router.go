package router

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/xy-planning-network/trailhead/http/middleware"
)

// staticMaxAge is how long clients may cache files served by ServeFiles.
const staticMaxAge = "max-age=2592000" // 30 days

// A Route maps a path and HTTP method to an [http.HandlerFunc].
// Additional [middleware.Adapter] can be called when a server handles
// a request matching the Route.
type Route struct {
	Path        string
	Method      string
	Handler     http.HandlerFunc
	Middlewares []middleware.Adapter
}

// Router routes requests for resources to their handlers.
type Router struct {
	everyReqStack []middleware.Adapter
	h             http.Handler
	r             *mux.Router
	sub           bool
}

// New constructs a [*Router].
func New() *Router {
	r := mux.NewRouter()
	return &Router{h: r, r: r}
}

// CatchAll sets up a handler for all routes to funnel to, e.g., maintenance mode.
func (r *Router) CatchAll(handler http.HandlerFunc) {
	r.r.PathPrefix("/").Handler(handler)
}

// Handle applies the [Route] to the [*Router].
func (r *Router) Handle(route Route) {
	r.HandleRoutes([]Route{route})
}

// HandleMethodNotAllowed sets the provided [http.HandlerFunc] as the function
// called when a request matches the path of a Route but not its method.
func (r *Router) HandleMethodNotAllowed(handler http.HandlerFunc) {
	r.r.MethodNotAllowedHandler = handler
}

// HandleNotFound sets the provided [http.HandlerFunc] as the default function
// for when no other registered Route is matched.
func (r *Router) HandleNotFound(handler http.HandlerFunc) {
	r.r.NotFoundHandler = handler
}

// HandleRoutes registers the set of Routes on the Router
// and includes all the [middleware.Adapter] on each Route.
// Any [middleware.Adapter] already assigned to a Route is appended to middlewares,
// so are called after the shared set.
func (r *Router) HandleRoutes(routes []Route, middlewares ...middleware.Adapter) {
	for _, route := range routes {
		mws := make([]middleware.Adapter, 0, len(middlewares)+len(route.Middlewares))
		mws = append(mws, middlewares...)
		mws = append(mws, route.Middlewares...)

		r.r.Handle(route.Path, middleware.Chain(route.Handler, mws...)).Methods(route.Method)
	}
}

// OnEveryRequest appends the middlewares to the existing stack
// that the [*Router] applies to every request.
//
// On a Router constructed with New, the stack runs before routing,
// so even requests matching no Route pass through it.
// On a Subrouter, the stack runs only for requests matching one of its Routes.
func (r *Router) OnEveryRequest(middlewares ...middleware.Adapter) {
	if r.sub {
		for _, mw := range middlewares {
			r.r.Use(mux.MiddlewareFunc(mw))
		}
		return
	}

	r.everyReqStack = append(r.everyReqStack, middlewares...)
	r.h = middleware.Chain(r.r, r.everyReqStack...)
}

// ServeFiles serves the files in fsys to requests for paths beginning with prefix,
// letting clients cache them.
//
// e.g., r.ServeFiles("/assets/", os.DirFS("client/public"))
func (r *Router) ServeFiles(prefix string, fsys fs.FS) {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	r.r.PathPrefix(prefix).Handler(middleware.Chain(
		http.StripPrefix(prefix, http.FileServer(http.FS(fsys))),
		cacheControlMiddleware(),
	))
}

// ServeHTTP responds to an HTTP request.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.h.ServeHTTP(w, req)
}

// Subrouter constructs a [Router] that handles requests to endpoints matching the prefix.
//
// e.g., r.Subrouter("/api/auth") handles requests to endpoints like /api/auth/session
func (r *Router) Subrouter(prefix string) *Router {
	sr := r.r.PathPrefix(prefix).Subrouter()
	return &Router{h: sr, r: sr, sub: true}
}

// cacheControlMiddleware helps by adding a "Cache-Control" header to the response.
func cacheControlMiddleware() middleware.Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", staticMaxAge)
			handler.ServeHTTP(w, r)
		})
	}
}
