package outpost

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/securecookie"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/account"
	"github.com/xy-planning-network/trailhead/auth"
	"github.com/xy-planning-network/trailhead/http/gate"
	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/logger"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// Base URL defaults
	BaseURLEnvVar = "BASE_URL"

	// App metadata
	AppTitleEnvVar   = "APP_TITLE"
	defaultAppTitle  = "Trailhead"
	ContactUsEnvVar  = "CONTACT_US_EMAIL"
	defaultContactUs = "hello@xyplanningnetwork.com"

	// CORS defaults
	CORSOriginEnvVar = "CORS_ORIGIN"

	// Environment defaults
	EnvironmentEnvVar = "ENVIRONMENT"

	// Gate defaults
	GateConfigFileEnvVar = "GATE_CONFIG_FILE"

	// Google defaults
	GoogleClientIDEnvVar     = "GOOGLE_CLIENT_ID"
	GoogleClientSecretEnvVar = "GOOGLE_CLIENT_SECRET"

	// Log defaults
	logLevelEnvVar  = "LOG_LEVEL"
	defaultLogLvl   = slog.LevelInfo
	logJSONEnvVar   = "LOG_JSON"
	defaultLogJSON  = false
	sentryDsnEnvVar = "SENTRY_DSN"

	// Redis defaults
	RedisURLEnvVar      = "REDIS_URL"
	RedisPasswordEnvVar = "REDIS_PASSWORD"

	// Web server defaults
	DefaultHost               = "localhost"
	DefaultPort               = ":3000"
	portEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 5 * time.Second

	// Session defaults
	SessionAuthKeyEnvVar    = "SESSION_AUTH_KEY"
	SessionEncryptKeyEnvVar = "SESSION_ENCRYPTION_KEY"
	sessionMaxAge           = 3600 * 24 * 7
	SessionTokenKeyEnvVar   = "SESSION_TOKEN_KEY"
	SessionTokenTTLEnvVar   = "SESSION_TOKEN_TTL"
)

var (
	defaultBaseURL = "http://" + DefaultHost + DefaultPort

	// defaultStaticDirs pairs URL prefixes with the directories served under them.
	defaultStaticDirs = map[string]string{
		"/assets/":      "assets",
		"/client/dist/": "client/dist",
	}
)

// defaultAppLogger constructs a [logger.Logger] configured for use in the application.
func defaultAppLogger(env trailhead.Environment, output io.Writer) logger.Logger {
	slogger := newSlogger(trailhead.AppLogKind, env, output)
	l := logger.New(slogger)
	l.Debug("setting up app logger", nil)
	slog.SetDefault(slogger)

	if dsn := os.Getenv(sentryDsnEnvVar); dsn != "" {
		sl := logger.NewSentryLogger(env, l, dsn)
		sl.Debug("using SentryLogger for app logger", nil)
		return sl
	}

	return l
}

// defaultHTTPLogger constructs a [*log/slog.Logger] for use in HTTP request logging.
func defaultHTTPLogger(env trailhead.Environment, output io.Writer) *slog.Logger {
	sl := newSlogger(trailhead.HTTPLogKind, env, output)
	sl.Debug("setting up HTTP router logger")

	return sl
}

// newSlogger reads LOG_LEVEL and LOG_JSON to construct the [*log/slog.Logger] for kind.
// Outside of development, logs are always JSON.
func newSlogger(kind slog.Value, env trailhead.Environment, out io.Writer) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(trailhead.EnvVarOrLogLevel(logLevelEnvVar, defaultLogLvl))

	useJSON := !env.IsDevelopment() || trailhead.EnvVarOrBool(logJSONEnvVar, defaultLogJSON)

	return logger.NewSlogger(kind, useJSON, lvl, out)
}

// defaultAccounts constructs the [*account.Service] users register and sign in through.
//
// Without a store, defaultAccounts falls back to [account.Stub]
// only in environments that allow service stubs.
func defaultAccounts(env trailhead.Environment, store account.Store, l logger.Logger) (*account.Service, error) {
	if store == nil {
		if !env.CanUseServiceStub() {
			return nil, fmt.Errorf("%w: an account.Store is required in %s", trailhead.ErrBadConfig, env)
		}

		l.Warn("using in-memory account store, accounts will not survive a restart", nil)
		store = account.NewStub()
	}

	return account.NewService(store, bcrypt.DefaultCost), nil
}

// defaultGate constructs the [*gate.Gate] from the YAML file named by GATE_CONFIG_FILE
// or, if unset, [gate.DefaultConfig].
func defaultGate() (*gate.Gate, error) {
	cfg := gate.DefaultConfig()
	if fp := os.Getenv(GateConfigFileEnvVar); fp != "" {
		var err error
		cfg, err = gate.LoadConfigFile(fp)
		if err != nil {
			return nil, err
		}
	}

	return gate.New(cfg)
}

// defaultGoogle constructs an *auth.Google when both GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are set.
// Google redirects agents to the callback under the auth API of base.
func defaultGoogle(base *url.URL, rules gate.Rules) (*auth.Google, error) {
	id := os.Getenv(GoogleClientIDEnvVar)
	secret := os.Getenv(GoogleClientSecretEnvVar)
	if id == "" || secret == "" {
		return nil, nil
	}

	callback := base.JoinPath(rules.AuthAPIPrefix, "callback", "google")

	return auth.NewGoogle(id, secret, callback.String())
}

// defaultRedis reads REDIS_URL and REDIS_PASSWORD.
// If REDIS_URL is unset, nil returns.
func defaultRedis() (*redis.Options, error) {
	uri := os.Getenv(RedisURLEnvVar)
	if uri == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid: %s", trailhead.ErrBadConfig, RedisURLEnvVar, err)
	}

	if pass := os.Getenv(RedisPasswordEnvVar); pass != "" {
		opts.Password = pass
	}

	return opts, nil
}

// defaultReplays stores idempotent responses in Redis when configured
// and in memory otherwise.
func defaultReplays(opts *redis.Options) middleware.ReplayCacher {
	if opts == nil {
		return middleware.NewReplayMap()
	}

	return middleware.NewReplayRedis(opts)
}

// defaultResponder configures the [*resp.Responder] to be used by http.Handlers.
func defaultResponder(l logger.Logger, url *url.URL, contact string) *resp.Responder {
	return resp.NewResponder(
		resp.WithContactErrMsg(fmt.Sprintf(session.ContactUsErr, contact)),
		resp.WithLogger(l),
		resp.WithRootUrl(url.String()),
	)
}

// defaultSessionStore constructs a SessionStorer to be used for storing session data.
//
// defaultSessionStore relies on three env vars:
//   - APP_TITLE
//   - SESSION_AUTH_KEY
//   - SESSION_ENCRYPTION_KEY
//
// Both KEY env vars be valid hex encoded values; cf. [encoding/hex].
// Where service stubs are allowed, missing keys are generated,
// so sessions do not survive a restart.
//
// With Redis configured, sessions are stored there instead of in cookies.
func defaultSessionStore(env trailhead.Environment, appName string, rds *redis.Options) (session.SessionStorer, error) {
	cfg := session.Config{
		AuthKey:     os.Getenv(SessionAuthKeyEnvVar),
		EncryptKey:  os.Getenv(SessionEncryptKeyEnvVar),
		Env:         env,
		SessionName: sessionName(appName),
	}

	if env.CanUseServiceStub() {
		if cfg.AuthKey == "" {
			cfg.AuthKey = randomKey()
		}

		if cfg.EncryptKey == "" {
			cfg.EncryptKey = randomKey()
		}
	}

	if cfg.AuthKey == "" || cfg.EncryptKey == "" {
		return nil, fmt.Errorf("%w: %s and %s are required in %s", trailhead.ErrBadConfig, SessionAuthKeyEnvVar, SessionEncryptKeyEnvVar, env)
	}

	args := []session.ServiceOpt{session.WithMaxAge(sessionMaxAge)}
	if rds != nil {
		args = append(args, session.WithRedis(rds.Addr, rds.Password))
	}

	return session.NewStoreService(cfg, args...)
}

// sessionName lower cases appName and strips punctuation and whitespace from it.
//
// e.g., "Trailhead: Starter App" becomes "trailhead-starter-app"
func sessionName(appName string) string {
	appName = cases.Lower(language.English).String(appName)
	appName = regexp.MustCompile(`[,':]`).ReplaceAllString(appName, "")
	appName = regexp.MustCompile(`\s+`).ReplaceAllString(appName, "-")

	return appName
}

// defaultTokens constructs the *auth.Tokens signing session tokens with SESSION_TOKEN_KEY.
// Where service stubs are allowed, a missing key is generated,
// signing out every user upon a restart.
func defaultTokens(env trailhead.Environment) (*auth.Tokens, error) {
	key := os.Getenv(SessionTokenKeyEnvVar)
	if key == "" && env.CanUseServiceStub() {
		key = randomKey()
	}

	if key == "" {
		return nil, fmt.Errorf("%w: %s is required in %s", trailhead.ErrBadConfig, SessionTokenKeyEnvVar, env)
	}

	return auth.NewTokens(
		key,
		auth.WithSecureCookie(env.SecureCookies()),
		auth.WithTTL(trailhead.EnvVarOrDuration(SessionTokenTTLEnvVar, auth.DefaultTTL)),
	)
}

// defaultStatic pairs each of defaultStaticDirs found in the working directory with its prefix.
func defaultStatic() map[string]fs.FS {
	files := make(map[string]fs.FS)
	for prefix, dir := range defaultStaticDirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			files[prefix] = os.DirFS(dir)
		}
	}

	return files
}

// defaultServer constructs a default [*http.Server].
func defaultServer(ctx context.Context) *http.Server {
	port := trailhead.EnvVarOrString(portEnvVar, DefaultPort)
	if port[0] != ':' {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		IdleTimeout:  trailhead.EnvVarOrDuration(serverIdleTimeoutEnvVar, DefaultServerIdleTimeout),
		ReadTimeout:  trailhead.EnvVarOrDuration(serverReadTimeoutEnvVar, DefaultServerReadTimeout),
		WriteTimeout: trailhead.EnvVarOrDuration(serverWriteTimeoutEnvVar, DefaultServerWriteTimeout),
	}
	if ctx != nil {
		srv.BaseContext = func(_ net.Listener) context.Context { return ctx }
	}

	return srv
}

func randomKey() string { return hex.EncodeToString(securecookie.GenerateRandomKey(32)) }
