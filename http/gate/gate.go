package gate

import (
	"net/http"
	"strings"
)

// A Gate evaluates requests against its Config.
//
// A Gate holds no mutable state and is safe for concurrent use.
type Gate struct {
	cfg       Config
	protected map[string]struct{}
	entry     map[string]struct{}
}

// New constructs a *Gate from cfg.
// cfg is copied; changing it afterwards does not change the *Gate.
func New(cfg Config) (*Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg = cfg.clone()
	g := &Gate{
		cfg:       cfg,
		protected: toSet(cfg.Rules.ProtectedPaths),
		entry:     toSet(cfg.Rules.AuthEntryPaths),
	}

	return g, nil
}

// Config returns a copy of the Config g was constructed with.
func (g *Gate) Config() Config { return g.cfg.clone() }

// Applies asserts whether path is subject to gating at all.
func (g *Gate) Applies(path string) bool { return g.cfg.Matcher.Applies(path) }

// Evaluate decides what happens to a request for path,
// given whether it carries a session.
//
// The rules 1-5 documented on the package apply in order.
func (g *Gate) Evaluate(path string, hasSession bool) Decision {
	if g.exempt(path) {
		return Allowed
	}

	if _, ok := g.protected[path]; ok && !hasSession {
		return RedirectTo(g.cfg.Rules.SignInPath)
	}

	if _, ok := g.entry[path]; ok && hasSession {
		return RedirectTo(g.cfg.Rules.HomePath)
	}

	return Allowed
}

// Decide gates r.
//
// Paths the Matcher excludes, auth API paths and the root path are allowed
// without consulting v.
// Otherwise, v reports whether r has a session and Evaluate decides.
// A nil v reports no session.
func (g *Gate) Decide(r *http.Request, v SessionVerifier) Decision {
	path := r.URL.Path
	if !g.Applies(path) || g.exempt(path) {
		return Allowed
	}

	if v == nil {
		v = NoSession
	}

	return g.Evaluate(path, v.VerifySession(r))
}

// exempt covers rules 1 and 2, which hold regardless of session.
func (g *Gate) exempt(path string) bool {
	return strings.HasPrefix(path, g.cfg.Rules.AuthAPIPrefix) || path == g.cfg.Rules.RootPath
}

func toSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}

	return set
}
