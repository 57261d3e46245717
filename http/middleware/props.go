package middleware

import (
	"net/http"

	"github.com/xy-planning-network/trailhead"
)

// InjectAppProps merges props into those already in the *http.Request.Context.
// resp.Responder.Json includes them in every response body.
//
// If props is empty, NoopAdapter returns and this middleware does nothing.
func InjectAppProps(props trailhead.AppProps) Adapter {
	if len(props) == 0 {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, r.Clone(trailhead.NewAppPropsContext(r.Context(), props)))
		})
	}
}
