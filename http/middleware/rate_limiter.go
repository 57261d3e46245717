package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBurst    = 20
	defaultRate     = 5
	visitorLifetime = 60 * time.Minute
	sweepInterval   = time.Minute
)

// A Visitor tracks a rate limiter and last seen time.
type Visitor struct {
	LastSeen time.Time
	Limiter  *rate.Limiter
}

// A Visitors maps a Visitor to an IP address.
type Visitors struct {
	burst     int
	limit     rate.Limit
	lastSweep time.Time
	now       func() time.Time
	val       map[string]Visitor
	sync.Mutex
}

// NewVisitors constructs Visitors limited to 5 requests every second with bursts of up to 20.
func NewVisitors() *Visitors { return NewVisitorsWithLimit(defaultRate, defaultBurst) }

// NewVisitorsWithLimit constructs Visitors allowing each IP address
// limit requests every second with bursts of up to burst.
func NewVisitorsWithLimit(limit rate.Limit, burst int) *Visitors {
	return &Visitors{burst: burst, limit: limit, now: time.Now, val: make(map[string]Visitor)}
}

// Fetch retrieves the Visitor for the given ip creating a new Visitor if not seen.
func (vs *Visitors) Fetch(ip string) Visitor {
	vs.Lock()
	defer vs.Unlock()

	v, ok := vs.val[ip]
	if !ok {
		v = Visitor{Limiter: rate.NewLimiter(vs.limit, vs.burst)}
	}

	v.LastSeen = vs.now().UTC()
	vs.val[ip] = v
	return v
}

// Len reports how many visitors are being tracked.
func (vs *Visitors) Len() int {
	vs.Lock()
	defer vs.Unlock()
	return len(vs.val)
}

// cleanup deletes a Visitor from Visitors if they have not been seen in over an hour.
// It sweeps at most once a minute; calls in between return immediately.
func (vs *Visitors) cleanup() {
	vs.Lock()
	defer vs.Unlock()

	now := vs.now()
	if now.Sub(vs.lastSweep) < sweepInterval {
		return
	}
	vs.lastSweep = now

	for ip, v := range vs.val {
		if now.Sub(v.LastSeen) > visitorLifetime {
			delete(vs.val, ip)
		}
	}
}

// RateLimit encloses the Visitors map and serves the http.Handler,
// responding 429 to an IP address making requests faster than its limiter allows.
//
// NOTE: implementation found here:
// https://www.alexedwards.net/blog/how-to-rate-limit-http-requests
//
// If visitors is nil, NoopAdapter returns and this middleware does nothing.
func RateLimit(visitors *Visitors) Adapter {
	if visitors == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !visitors.Fetch(RequestIPAddress(r)).Limiter.Allow() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			visitors.cleanup()
			h.ServeHTTP(w, r)
		})
	}
}
