package middleware

import (
	"context"
	"net/http"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/session"
)

// InjectSession stores the session.Session associated with the *http.Request
// in *http.Request.Context under trailhead.SessionKey.
//
// A session that cannot be decoded, e.g., after rotating keys, is replaced by a new one.
//
// If store is nil, NoopAdapter returns and this middleware does nothing.
func InjectSession(store session.SessionStorer) Adapter {
	if store == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, _ := store.GetSession(r)
			ctx := context.WithValue(r.Context(), trailhead.SessionKey, s)
			h.ServeHTTP(w, r.Clone(ctx))
		})
	}
}
