package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/auth"
	"github.com/xy-planning-network/trailhead/http/gate"
	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/http/req"
	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/http/router"
	"github.com/xy-planning-network/trailhead/logger"
	"golang.org/x/oauth2"
	goauth2 "google.golang.org/api/oauth2/v2"
)

// Accounts registers users and signs them in through identity providers.
type Accounts interface {
	Register(ctx context.Context, name, email, password string) (trailhead.User, error)
	FindOrCreate(ctx context.Context, name, email string) (trailhead.User, error)
}

//go:generate mockgen -destination=mock_identity_provider_test.go -package=web_test github.com/xy-planning-network/trailhead/web IdentityProvider

// An IdentityProvider runs the OAuth 2.0 authorization code flow.
// *auth.Google is one.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchUser(ctx context.Context, token *oauth2.Token) (*goauth2.Userinfo, error)
}

// Config collects what a Handler depends on.
// Google, Logger, Replays, Rules and SignInLimit are optional.
type Config struct {
	Accounts    Accounts
	Credentials *auth.Credentials
	Google      IdentityProvider
	Logger      logger.Logger
	Replays     middleware.ReplayCacher
	Responder   *resp.Responder
	Rules       gate.Rules
	SignInLimit *middleware.Visitors
	Tokens      *auth.Tokens
}

func (c Config) validate() error {
	if c.Accounts == nil || c.Credentials == nil || c.Responder == nil || c.Tokens == nil {
		return fmt.Errorf("%w: Accounts, Credentials, Responder and Tokens are required", trailhead.ErrBadConfig)
	}

	return nil
}

// A Handler serves the pages and APIs of the app.
type Handler struct {
	*resp.Responder

	accounts    Accounts
	credentials *auth.Credentials
	google      IdentityProvider
	logger      logger.Logger
	parser      *req.Parser
	replays     middleware.ReplayCacher
	rules       gate.Rules
	signInLimit *middleware.Visitors
	tokens      *auth.Tokens
}

// New constructs a *Handler from cfg.
// Unset Rules default to gate.DefaultRules,
// so handlers send agents where the gate would.
// Each unset path of partial Rules defaults on its own;
// the protected and auth-entry path lists are kept as given.
func New(cfg Config) (*Handler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.Rules = withDefaults(cfg.Rules)

	if cfg.Logger == nil {
		cfg.Logger = logger.New(nil)
	}

	if cfg.SignInLimit == nil {
		cfg.SignInLimit = middleware.NewVisitors()
	}

	if cfg.Replays == nil {
		cfg.Replays = middleware.NewReplayMap()
	}

	return &Handler{
		Responder:   cfg.Responder,
		accounts:    cfg.Accounts,
		credentials: cfg.Credentials,
		google:      cfg.Google,
		logger:      cfg.Logger,
		parser:      req.NewParser(),
		replays:     cfg.Replays,
		rules:       cfg.Rules,
		signInLimit: cfg.SignInLimit,
		tokens:      cfg.Tokens,
	}, nil
}

func withDefaults(rules gate.Rules) gate.Rules {
	def := gate.DefaultRules()
	if rules.AuthAPIPrefix == "" && rules.RootPath == "" && rules.SignInPath == "" && rules.HomePath == "" &&
		len(rules.ProtectedPaths) == 0 && len(rules.AuthEntryPaths) == 0 {
		return def
	}

	if rules.AuthAPIPrefix == "" {
		rules.AuthAPIPrefix = def.AuthAPIPrefix
	}

	if rules.RootPath == "" {
		rules.RootPath = def.RootPath
	}

	if rules.SignInPath == "" {
		rules.SignInPath = def.SignInPath
	}

	if rules.HomePath == "" {
		rules.HomePath = def.HomePath
	}

	return rules
}

// HandleRoutes registers every page and API of the app on r.
//
// The protected page is served at the first of the protected paths.
// Without any, it is not served.
func (h *Handler) HandleRoutes(r *router.Router) {
	pages := []router.Route{
		{Path: h.rules.RootPath, Method: http.MethodGet, Handler: h.home},
		{Path: h.rules.SignInPath, Method: http.MethodGet, Handler: h.signIn},
		{Path: "/auth/signup", Method: http.MethodGet, Handler: h.signUp},
	}
	if len(h.rules.ProtectedPaths) > 0 {
		pages = append(pages, router.Route{Path: h.rules.ProtectedPaths[0], Method: http.MethodGet, Handler: h.protected})
	}
	r.HandleRoutes(pages)

	authAPI := r.Subrouter(h.rules.AuthAPIPrefix)
	authAPI.HandleRoutes([]router.Route{
		{Path: "/callback/credentials", Method: http.MethodPost, Handler: h.credentialsCallback, Middlewares: []middleware.Adapter{middleware.RateLimit(h.signInLimit)}},
		{Path: "/callback/google", Method: http.MethodGet, Handler: h.googleCallback},
		{Path: "/csrf", Method: http.MethodGet, Handler: h.csrf},
		{Path: "/register", Method: http.MethodPost, Handler: h.register, Middlewares: []middleware.Adapter{middleware.Idempotent(h.replays, nil)}},
		{Path: "/session", Method: http.MethodGet, Handler: h.session},
		{Path: "/signin/google", Method: http.MethodGet, Handler: h.googleSignIn},
		{Path: "/signout", Method: http.MethodPost, Handler: h.signOut},
	})

	counter := r.Subrouter("/api/counter")
	counter.HandleRoutes([]router.Route{
		{Path: "", Method: http.MethodGet, Handler: h.counter},
		{Path: "/increase", Method: http.MethodPost, Handler: h.increaseCounter},
		{Path: "/reset", Method: http.MethodPost, Handler: h.resetCounter},
	})

	r.HandleNotFound(h.notFound)
	r.HandleMethodNotAllowed(h.methodNotAllowed)
}

// landingPath is where a signed in user lands:
// the protected page or, if there is none, HomePath.
func (h *Handler) landingPath() string {
	if len(h.rules.ProtectedPaths) == 0 {
		return h.rules.HomePath
	}

	return h.rules.ProtectedPaths[0]
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.Text(w, r, http.StatusText(http.StatusNotFound), resp.Code(http.StatusNotFound))
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.Text(w, r, http.StatusText(http.StatusMethodNotAllowed), resp.Code(http.StatusMethodNotAllowed))
}
