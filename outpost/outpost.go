package outpost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/account"
	"github.com/xy-planning-network/trailhead/auth"
	"github.com/xy-planning-network/trailhead/http/gate"
	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/http/router"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/logger"
	"github.com/xy-planning-network/trailhead/web"
)

const shutdownTimeout = 5 * time.Second

// An Outpost manages the lifecycle of a trailhead app:
// its configuration, its middleware stack, its routes and its web server.
type Outpost struct {
	*resp.Responder
	*router.Router

	accounts *account.Service
	cancel   context.CancelFunc
	ctx      context.Context
	env      trailhead.Environment
	gate     *gate.Gate
	httpLog  *slog.Logger
	idp      web.IdentityProvider
	l        logger.Logger
	out      io.Writer
	replays  middleware.ReplayCacher
	sessions session.SessionStorer
	srv      *http.Server
	static   map[string]fs.FS
	store    account.Store
	tokens   *auth.Tokens
	url      *url.URL

	shutdown    sync.Once
	shutdownErr error
}

// New constructs an *Outpost from opts,
// reading the environment variables listed in the package docs
// for whatever opts leave unset.
//
// New registers every page and API of the app,
// so the returned *Outpost is ready to Guide.
func New(opts ...OutpostOption) (*Outpost, error) {
	o := &Outpost{
		env: trailhead.EnvVarOrEnv(EnvironmentEnvVar, trailhead.Development),
		out: os.Stdout,
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, badConfig(err)
		}
	}

	if o.ctx == nil {
		o.ctx = context.Background()
	}
	o.ctx, o.cancel = context.WithCancel(o.ctx)

	if o.l == nil {
		o.l = defaultAppLogger(o.env, o.out)
	}
	o.httpLog = defaultHTTPLogger(o.env, o.out)
	o.url = trailhead.EnvVarOrURL(BaseURLEnvVar, defaultBaseURL)
	title := trailhead.EnvVarOrString(AppTitleEnvVar, defaultAppTitle)

	if err := o.build(title); err != nil {
		o.cancel()
		return nil, badConfig(err)
	}

	o.Responder = defaultResponder(o.l, o.url, trailhead.EnvVarOrString(ContactUsEnvVar, defaultContactUs))

	creds, err := auth.NewCredentials(o.accounts, o.tokens)
	if err != nil {
		o.cancel()
		return nil, badConfig(err)
	}

	cfg := web.Config{
		Accounts:    o.accounts,
		Credentials: creds,
		Google:      o.idp,
		Logger:      o.l,
		Replays:     o.replays,
		Responder:   o.Responder,
		Rules:       o.gate.Config().Rules,
		Tokens:      o.tokens,
	}

	h, err := web.New(cfg)
	if err != nil {
		o.cancel()
		return nil, badConfig(err)
	}

	o.Router = router.New()
	o.OnEveryRequest(o.middlewares(title)...)
	for prefix, fsys := range o.static {
		o.l.Debug(fmt.Sprintf("serving static files at %s", prefix), nil)
		o.ServeFiles(prefix, fsys)
	}
	h.HandleRoutes(o.Router)

	if o.srv == nil {
		o.srv = defaultServer(o.ctx)
	}
	o.srv.Handler = o.Router

	o.l.Debug(fmt.Sprintf("outpost ready in %s at %s", o.env, o.url), nil)

	return o, nil
}

// badConfig marks err as a trailhead.ErrBadConfig,
// keeping whichever package error it already wraps.
func badConfig(err error) error {
	if errors.Is(err, trailhead.ErrBadConfig) {
		return err
	}

	return fmt.Errorf("%w: %w", trailhead.ErrBadConfig, err)
}

// build fills in, from environment variables, the services opts did not provide.
func (o *Outpost) build(title string) error {
	rds, err := defaultRedis()
	if err != nil {
		return err
	}

	if o.sessions == nil {
		o.sessions, err = defaultSessionStore(o.env, title, rds)
		if err != nil {
			return err
		}
	}

	if o.replays == nil {
		o.replays = defaultReplays(rds)
	}

	if o.gate == nil {
		o.gate, err = defaultGate()
		if err != nil {
			return err
		}
	}

	o.tokens, err = defaultTokens(o.env)
	if err != nil {
		return err
	}

	o.accounts, err = defaultAccounts(o.env, o.store, o.l)
	if err != nil {
		return err
	}

	if o.idp == nil {
		g, err := defaultGoogle(o.url, o.gate.Config().Rules)
		if err != nil {
			return err
		}

		if g != nil {
			o.l.Debug("using Google sign in", nil)
			o.idp = g
		}
	}

	if o.static == nil {
		o.static = defaultStatic()
	}

	return nil
}

// middlewares lists the stack run on every request, outermost first.
func (o *Outpost) middlewares(title string) []middleware.Adapter {
	return []middleware.Adapter{
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(o.httpLog),
		middleware.ReportPanic(o.env),
		middleware.ForceHTTPS(o.env),
		middleware.CORS(trailhead.EnvVarOrString(CORSOriginEnvVar, "")),
		middleware.InjectSession(o.sessions),
		middleware.GateRequests(o.gate, o.tokens, o.l),
		middleware.CurrentUser(o.tokens, o.accounts.Find),
		middleware.InjectAppProps(trailhead.AppProps{"appTitle": title}),
	}
}

// Cancel stops Guide, as if the process had been sent an interrupt.
func (o *Outpost) Cancel() { o.cancel() }

// Env is the Environment the trailhead app runs in.
func (o *Outpost) Env() trailhead.Environment { return o.env }

// Logger is the app logger.
func (o *Outpost) Logger() logger.Logger { return o.l }

// Guide begins the web server.
//
// These, and (*Outpost).Cancel, stop Guide:
//
// - os.Interrupt
// - syscall.SIGHUP
// - syscall.SIGINT
// - syscall.SIGQUIT
// - syscall.SIGTERM
//
// Guide also stops when the web server cannot listen,
// returning that error.
func (o *Outpost) Guide() error {
	ch := make(chan os.Signal, 1)
	signal.Notify(
		ch,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer signal.Stop(ch)

	go func() {
		select {
		case s := <-ch:
			o.l.Info(fmt.Sprint("received shutdown signal: ", s), nil)
			o.cancel()
		case <-o.ctx.Done():
		}
	}()

	errs := make(chan error, 1)
	go func() {
		o.l.Info(fmt.Sprintf("running web server at %s", o.srv.Addr), nil)
		if err := o.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("could not listen: %w", err)
		}
	}()

	select {
	case <-o.ctx.Done():
		return o.Shutdown()
	case err := <-errs:
		o.l.Error(err.Error(), &logger.LogContext{Error: err})
		o.cancel()
		return err
	}
}

// Shutdown shuts down the web server, waiting on requests in flight for up to five seconds.
// Calling Shutdown more than once returns the result of the first call.
func (o *Outpost) Shutdown() error {
	o.shutdown.Do(func() {
		defer o.cancel()

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		o.l.Info("shutting down web server", nil)
		err := o.srv.Shutdown(ctx)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			o.shutdownErr = fmt.Errorf("could not shutdown: %w", err)
			return
		}

		o.l.Info("web server shutdown successfully", nil)
	})

	return o.shutdownErr
}
