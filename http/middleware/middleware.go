package middleware

import (
	"net/http"
)

// An Adapter allows chaining middlewares together.
type Adapter func(http.Handler) http.Handler

// Chain glues the set of adapters to the handler.
// The first adapter is the outermost, seeing a request first.
func Chain(handler http.Handler, adapters ...Adapter) http.Handler {
	//NOTE: Loop in reverse to preserve middleware order
	for i := len(adapters) - 1; i >= 0; i-- {
		handler = adapters[i](handler)
	}

	return handler
}

// NoopAdapter passes the handler through untouched.
// Constructors return it when missing what they need to do anything.
func NoopAdapter(h http.Handler) http.Handler { return h }
