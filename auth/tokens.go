package auth

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/xy-planning-network/trailhead"
)

const (
	// DefaultCookieName names the cookie a session token is stored in.
	DefaultCookieName = "trailhead.session-token"

	// DefaultTTL is how long a session token is valid for.
	DefaultTTL = 30 * 24 * time.Hour

	issuer = "trailhead"
)

// Claims are the contents of a session token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the user's ID from the token subject.
func (c Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: subject %q", ErrNotValid, c.Subject)
	}

	return uint(id), nil
}

// Tokens issues and verifies session tokens.
//
// Tokens implements gate.SessionVerifier.
type Tokens struct {
	cookie string
	key    []byte
	now    func() time.Time
	parser *jwt.Parser
	secure bool
	ttl    time.Duration
}

// A TokensOpt configures *Tokens.
type TokensOpt func(*Tokens)

// WithClock replaces the time tokens are issued at.
func WithClock(now func() time.Time) TokensOpt {
	return func(t *Tokens) { t.now = now }
}

// WithCookieName replaces DefaultCookieName.
func WithCookieName(name string) TokensOpt {
	return func(t *Tokens) { t.cookie = name }
}

// WithSecureCookie sets whether the cookie is only sent over HTTPS.
func WithSecureCookie(secure bool) TokensOpt {
	return func(t *Tokens) { t.secure = secure }
}

// WithTTL replaces DefaultTTL.
func WithTTL(ttl time.Duration) TokensOpt {
	return func(t *Tokens) { t.ttl = ttl }
}

// NewTokens constructs *Tokens signing with key.
func NewTokens(key string, opts ...TokensOpt) (*Tokens, error) {
	if key == "" {
		return nil, fmt.Errorf(`%w: key cannot be ""`, ErrBadConfig)
	}

	t := &Tokens{
		cookie: DefaultCookieName,
		key:    []byte(key),
		now:    time.Now,
		parser: &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}},
		secure: true,
		ttl:    DefaultTTL,
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.ttl <= 0 {
		return nil, fmt.Errorf("%w: ttl must be positive, is %s", ErrBadConfig, t.ttl)
	}

	return t, nil
}

// Issue signs a session token for u.
func (t *Tokens) Issue(u trailhead.User) (string, error) {
	if !u.Exists() {
		return "", fmt.Errorf("%w: user has no ID", ErrNotValid)
	}

	now := t.now()
	claims := Claims{
		Email: u.Email,
		Name:  u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnexpected, err)
	}

	return signed, nil
}

// Parse verifies raw and returns its Claims.
func (t *Tokens) Parse(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, ErrNoToken
	}

	claims := new(Claims)
	_, err := t.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.key, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %s", ErrNotValid, err)
	}

	if !claims.VerifyIssuer(issuer, true) {
		return Claims{}, fmt.Errorf("%w: issuer %q", ErrNotValid, claims.Issuer)
	}

	return *claims, nil
}

// FromRequest verifies the session token accompanying r.
// The token is read from the session cookie, falling back to an "Authorization: Bearer" header.
func (t *Tokens) FromRequest(r *http.Request) (Claims, error) {
	var raw string
	if c, err := r.Cookie(t.cookie); err == nil {
		raw = c.Value
	} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		raw = strings.TrimPrefix(h, "Bearer ")
	}

	return t.Parse(raw)
}

// VerifySession asserts whether r carries a valid session token.
func (t *Tokens) VerifySession(r *http.Request) bool {
	_, err := t.FromRequest(r)
	return err == nil
}

// SetCookie issues a session token for u and writes it in the session cookie.
func (t *Tokens) SetCookie(w http.ResponseWriter, u trailhead.User) error {
	signed, err := t.Issue(u)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     t.cookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(t.ttl.Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// ClearCookie expires the session cookie.
func (t *Tokens) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
