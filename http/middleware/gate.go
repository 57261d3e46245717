package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/xy-planning-network/trailhead/http/gate"
	"github.com/xy-planning-network/trailhead/logger"
)

// GateRequests asks g for a gate.Decision on every request, before routing.
// v reports whether a request has a session.
//
// On gate.Allow, the request continues down the chain.
// On gate.Redirect, GateRequests responds 307 with the Decision's target
// resolved against the URL of the request.
//
// If g is nil, NoopAdapter returns and this middleware does nothing.
// If l is nil, decisions are not logged.
func GateRequests(g *gate.Gate, v gate.SessionVerifier, l logger.Logger) Adapter {
	if g == nil {
		return NoopAdapter
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.Decide(r, v)
			if d.IsAllow() {
				handler.ServeHTTP(w, r)
				return
			}

			if l != nil {
				l.Debug("gate redirecting request", &logger.LogContext{
					Data: map[string]any{"decision": d.String(), "path": r.URL.Path},
				})
			}

			http.Redirect(w, r, resolve(r, d.Target), http.StatusTemporaryRedirect)
		})
	}
}

// resolve makes target an absolute URL on the same origin as r.
func resolve(r *http.Request, target string) string {
	u := &url.URL{
		Scheme: scheme(r),
		Host:   r.Host,
	}

	ref, err := url.Parse(target)
	if err != nil {
		return target
	}

	return u.ResolveReference(ref).String()
}

// scheme reports the scheme a request was made with,
// trusting "X-Forwarded-Proto" set by a proxy in front of the app.
// Behind chained proxies, the first, client-facing, value wins.
// Anything but http or https is ignored.
func scheme(r *http.Request) string {
	proto, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ",")
	switch proto = strings.ToLower(strings.TrimSpace(proto)); proto {
	case "http", "https":
		return proto
	}

	if r.TLS != nil {
		return "https"
	}

	return "http"
}
