package gate

import (
	"fmt"
	"strings"
)

// Rules names the paths the policy of a Gate is written in terms of.
type Rules struct {
	// AuthAPIPrefix begins every path belonging to the identity provider's own endpoints:
	// sign in, callbacks, csrf, session and so on.
	AuthAPIPrefix string `yaml:"authApiPrefix"`

	// RootPath is always reachable.
	RootPath string `yaml:"rootPath"`

	// SignInPath is where requests without a session are sent from a protected path.
	SignInPath string `yaml:"signInPath"`

	// HomePath is where requests with a session are sent from an auth-entry path.
	HomePath string `yaml:"homePath"`

	// ProtectedPaths require a session to reach.
	ProtectedPaths []string `yaml:"protectedPaths"`

	// AuthEntryPaths are meaningless to a request with a session: signing in and signing up.
	AuthEntryPaths []string `yaml:"authEntryPaths"`
}

// DefaultRules returns the Rules for a standard trailhead app layout.
func DefaultRules() Rules {
	return Rules{
		AuthAPIPrefix:  "/api/auth",
		RootPath:       "/",
		SignInPath:     "/auth/signin",
		HomePath:       "/",
		ProtectedPaths: []string{"/protected"},
		AuthEntryPaths: []string{"/auth/signin", "/auth/signup"},
	}
}

func (r Rules) validate() error {
	if r.AuthAPIPrefix == "" {
		return fmt.Errorf("%w: authApiPrefix cannot be empty", ErrBadConfig)
	}

	for name, p := range map[string]string{
		"authApiPrefix": r.AuthAPIPrefix,
		"rootPath":      r.RootPath,
		"signInPath":    r.SignInPath,
		"homePath":      r.HomePath,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%w: %s %q must be an absolute path", ErrBadConfig, name, p)
		}
	}

	for _, ps := range [][]string{r.ProtectedPaths, r.AuthEntryPaths} {
		for _, p := range ps {
			if !strings.HasPrefix(p, "/") {
				return fmt.Errorf("%w: %q must be an absolute path", ErrBadConfig, p)
			}
		}
	}

	return nil
}

// A Matcher filters which request paths a Gate runs against at all.
// Static assets, bundled client code, images and the favicon are never worth gating.
//
// Entries are written without a leading slash.
type Matcher struct {
	// ExcludePrefixes skip any path beginning with one of them, e.g., "api" skips "/api/counter".
	ExcludePrefixes []string `yaml:"excludePrefixes"`

	// ExcludeFiles skip paths naming exactly one of them, e.g., "favicon.ico" skips "/favicon.ico".
	ExcludeFiles []string `yaml:"excludeFiles"`
}

// DefaultMatcher returns the Matcher for a standard trailhead app layout.
func DefaultMatcher() Matcher {
	return Matcher{
		ExcludePrefixes: []string{"api", "assets", "client/dist", "images"},
		ExcludeFiles:    []string{"favicon.ico"},
	}
}

// Applies asserts whether path ought to be gated.
func (m Matcher) Applies(path string) bool {
	trimmed := strings.TrimPrefix(path, "/")
	for _, prefix := range m.ExcludePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return false
		}
	}

	for _, file := range m.ExcludeFiles {
		if trimmed == file {
			return false
		}
	}

	return true
}

func (m Matcher) validate() error {
	for _, ps := range [][]string{m.ExcludePrefixes, m.ExcludeFiles} {
		for _, p := range ps {
			if p == "" {
				return fmt.Errorf("%w: matcher entries cannot be empty", ErrBadConfig)
			}

			if strings.HasPrefix(p, "/") {
				return fmt.Errorf("%w: matcher entry %q must not begin with a slash", ErrBadConfig, p)
			}
		}
	}

	return nil
}

// A Config is everything a Gate is constructed with.
type Config struct {
	Rules   Rules   `yaml:"rules"`
	Matcher Matcher `yaml:"matcher"`
}

// DefaultConfig pairs DefaultRules and DefaultMatcher.
func DefaultConfig() Config {
	return Config{Rules: DefaultRules(), Matcher: DefaultMatcher()}
}

// Validate reports the first problem preventing a Gate being built from c.
func (c Config) Validate() error {
	if err := c.Rules.validate(); err != nil {
		return err
	}

	return c.Matcher.validate()
}

// clone deep copies c so later changes to the caller's slices cannot leak into a Gate.
func (c Config) clone() Config {
	return Config{
		Rules: Rules{
			AuthAPIPrefix:  c.Rules.AuthAPIPrefix,
			RootPath:       c.Rules.RootPath,
			SignInPath:     c.Rules.SignInPath,
			HomePath:       c.Rules.HomePath,
			ProtectedPaths: append([]string(nil), c.Rules.ProtectedPaths...),
			AuthEntryPaths: append([]string(nil), c.Rules.AuthEntryPaths...),
		},
		Matcher: Matcher{
			ExcludePrefixes: append([]string(nil), c.Matcher.ExcludePrefixes...),
			ExcludeFiles:    append([]string(nil), c.Matcher.ExcludeFiles...),
		},
	}
}
