package middleware

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/xy-planning-network/trailhead"
)

// ReportPanic recovers from panics in handlers further down the chain,
// reports them to Sentry and responds 500 in their place.
//
// In development, panics are left alone and NoopAdapter returns.
func ReportPanic(env trailhead.Environment) Adapter {
	if env.IsDevelopment() {
		return NoopAdapter
	}

	sh := sentryhttp.New(sentryhttp.Options{
		Repanic:         true,
		WaitForDelivery: true,
	})

	return func(handler http.Handler) http.Handler {
		reported := sh.Handle(handler)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			reported.ServeHTTP(w, r)
		})
	}
}
