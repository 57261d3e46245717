package middleware

import "time"

// SetNow replaces the clock vs reads.
func (vs *Visitors) SetNow(now func() time.Time) {
	vs.Lock()
	defer vs.Unlock()
	vs.now = now
}

// Cleanup runs the sweep RateLimit runs after each allowed request.
func (vs *Visitors) Cleanup() { vs.cleanup() }
