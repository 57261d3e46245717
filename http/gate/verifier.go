package gate

import "net/http"

// A SessionVerifier reports whether a valid session accompanies a request.
//
// Implementations must answer false whenever they cannot tell,
// e.g., a token fails to parse or a lookup times out.
type SessionVerifier interface {
	VerifySession(r *http.Request) bool
}

// A VerifierFunc adapts a function into a SessionVerifier.
type VerifierFunc func(r *http.Request) bool

// VerifySession calls fn.
func (fn VerifierFunc) VerifySession(r *http.Request) bool { return fn(r) }

// Fallible adapts a session lookup that can fail into a SessionVerifier.
// Any error is treated as no session.
func Fallible(fn func(r *http.Request) (bool, error)) SessionVerifier {
	return VerifierFunc(func(r *http.Request) bool {
		ok, err := fn(r)
		if err != nil {
			return false
		}

		return ok
	})
}

// NoSession is the SessionVerifier for which no request has a session.
var NoSession SessionVerifier = VerifierFunc(func(*http.Request) bool { return false })
