package outpost

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/account"
	"github.com/xy-planning-network/trailhead/http/gate"
	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/logger"
	"github.com/xy-planning-network/trailhead/web"
)

// An OutpostOption configures an *Outpost before New fills in defaults
// for everything left unset.
type OutpostOption func(o *Outpost) error

// WithAccountStore backs user accounts with store.
//
// Outside environments allowing service stubs, New requires this option.
func WithAccountStore(store account.Store) OutpostOption {
	return func(o *Outpost) error {
		if store == nil {
			return fmt.Errorf("%w: account.Store cannot be nil", trailhead.ErrBadConfig)
		}

		o.store = store
		return nil
	}
}

// WithContext exposes the provided context.Context to the trailhead app.
// Canceling ctx stops Guide.
func WithContext(ctx context.Context) OutpostOption {
	return func(o *Outpost) error {
		o.ctx = ctx
		return nil
	}
}

// WithEnv casts the provided string into a valid Environment
// and exposes it in the Outpost.
//
// If envVar is not a valid Environment, WithEnv reads the ENVIRONMENT environment variable,
// defaulting to Development.
func WithEnv(envVar string) OutpostOption {
	return func(o *Outpost) error {
		e := trailhead.Environment(envVar)
		if err := e.Valid(); err != nil {
			e = trailhead.EnvVarOrEnv(EnvironmentEnvVar, trailhead.Development)
		}

		o.env = e
		return nil
	}
}

// WithGateConfig gates requests according to cfg instead of the GATE_CONFIG_FILE or defaults.
func WithGateConfig(cfg gate.Config) OutpostOption {
	return func(o *Outpost) error {
		g, err := gate.New(cfg)
		if err != nil {
			return err
		}

		o.gate = g
		return nil
	}
}

// WithIdentityProvider signs users in through idp instead of the Google client
// configured through GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.
func WithIdentityProvider(idp web.IdentityProvider) OutpostOption {
	return func(o *Outpost) error {
		o.idp = idp
		return nil
	}
}

// WithLogger exposes the provided logger.Logger to the trailhead app.
func WithLogger(l logger.Logger) OutpostOption {
	return func(o *Outpost) error {
		o.l = l
		return nil
	}
}

// WithLogOutput sets where the default app and HTTP loggers write to.
// By default, both write to os.Stdout.
func WithLogOutput(w io.Writer) OutpostOption {
	return func(o *Outpost) error {
		o.out = w
		return nil
	}
}

// WithReplayCache stores responses to idempotent requests in cache.
func WithReplayCache(cache middleware.ReplayCacher) OutpostOption {
	return func(o *Outpost) error {
		o.replays = cache
		return nil
	}
}

// WithServer exposes the *http.Server to the trailhead app.
// New sets its Handler.
func WithServer(s *http.Server) OutpostOption {
	return func(o *Outpost) error {
		o.srv = s
		return nil
	}
}

// WithSessionStore exposes the session.SessionStorer to the trailhead app.
func WithSessionStore(store session.SessionStorer) OutpostOption {
	return func(o *Outpost) error {
		o.sessions = store
		return nil
	}
}

// WithStaticFiles serves fsys under prefix,
// replacing any directory served there by default.
func WithStaticFiles(prefix string, fsys fs.FS) OutpostOption {
	return func(o *Outpost) error {
		if o.static == nil {
			o.static = make(map[string]fs.FS)
		}

		o.static[prefix] = fsys
		return nil
	}
}
