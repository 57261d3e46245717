package middleware

import (
	"context"
	"net/http"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/auth"
	"github.com/xy-planning-network/trailhead/http/session"
)

// TokenReader reads the session token accompanying a request
// and can expire it.
type TokenReader interface {
	FromRequest(r *http.Request) (auth.Claims, error)
	ClearCookie(w http.ResponseWriter)
}

// UserFinder defines how to retrieve a User by an ID in the context of middleware.
type UserFinder func(ctx context.Context, id uint) (trailhead.User, error)

// CurrentUser pulls the trailhead.User named by the session token into the *http.Request.Context
// under trailhead.CurrentUserKey.
//
// Requests without a valid token pass through untouched;
// whether they may reach a resource is for GateRequests to determine.
//
// When a validly signed token names a user that cannot be found or has lost access,
// CurrentUser expires the token cookie and passes the request through without a user.
// The session is kept, so a handler can still flash why.
//
// For a user that is found, the expiry of any session injected by InjectSession is reset.
//
// If tokens or find are nil, NoopAdapter returns and this middleware does nothing.
func CurrentUser(tokens TokenReader, find UserFinder) Adapter {
	if tokens == nil || find == nil {
		return NoopAdapter
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := tokens.FromRequest(r)
			if err != nil {
				handler.ServeHTTP(w, r)
				return
			}

			id, err := claims.UserID()
			if err != nil {
				tokens.ClearCookie(w)
				handler.ServeHTTP(w, r)
				return
			}

			user, err := find(r.Context(), id)
			if err != nil || !user.HasAccess() {
				tokens.ClearCookie(w)
				handler.ServeHTTP(w, r)
				return
			}

			if s, ok := r.Context().Value(trailhead.SessionKey).(session.Sessionable); ok {
				if err := s.ResetExpiry(w, r); err != nil {
					_ = s.Delete(w, r) // NOTE: ignore delete error
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
			}

			w.Header().Add("Cache-control", "no-store")
			w.Header().Add("Pragma", "no-cache")

			ctx := context.WithValue(r.Context(), trailhead.CurrentUserKey, user)
			handler.ServeHTTP(w, r.Clone(ctx))
		})
	}
}
