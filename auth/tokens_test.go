package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/auth"
)

const testKey = "not-so-secret"

var testUser = trailhead.User{ID: 7, Email: "husserl@example.com", Name: "Edmund Husserl", AccessState: trailhead.AccessGranted}

func newTokens(t *testing.T, opts ...auth.TokensOpt) *auth.Tokens {
	t.Helper()

	tokens, err := auth.NewTokens(testKey, opts...)
	require.Nil(t, err)

	return tokens
}

func TestNewTokens(t *testing.T) {
	// Act
	_, err := auth.NewTokens("")

	// Assert
	require.ErrorIs(t, err, auth.ErrBadConfig)

	// Act
	_, err = auth.NewTokens(testKey, auth.WithTTL(0))

	// Assert
	require.ErrorIs(t, err, auth.ErrBadConfig)
}

func TestTokensIssueParse(t *testing.T) {
	// Arrange
	tokens := newTokens(t)

	// Act
	raw, err := tokens.Issue(testUser)

	// Assert
	require.Nil(t, err)

	// Act
	claims, err := tokens.Parse(raw)

	// Assert
	require.Nil(t, err)
	require.Equal(t, testUser.Email, claims.Email)
	require.Equal(t, testUser.Name, claims.Name)

	id, err := claims.UserID()
	require.Nil(t, err)
	require.Equal(t, testUser.ID, id)

	// Act
	_, err = tokens.Issue(trailhead.User{Email: "nobody@example.com"})

	// Assert
	require.ErrorIs(t, err, auth.ErrNotValid)
}

func TestTokensParseRejects(t *testing.T) {
	tokens := newTokens(t)

	expired, err := newTokens(t, auth.WithTTL(time.Minute), auth.WithClock(func() time.Time {
		return time.Now().Add(-time.Hour)
	})).Issue(testUser)
	require.Nil(t, err)

	otherKey, err := auth.NewTokens("some-other-key")
	require.Nil(t, err)
	forged, err := otherKey.Issue(testUser)
	require.Nil(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "7", Issuer: "trailhead"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.Nil(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "7", Issuer: "elsewhere"}).
		SignedString([]byte(testKey))
	require.Nil(t, err)

	for _, tc := range []struct {
		name string
		raw  string
		err  error
	}{
		{"Empty", "", auth.ErrNoToken},
		{"Garbage", "not.a.jwt", auth.ErrNotValid},
		{"Expired", expired, auth.ErrNotValid},
		{"Forged", forged, auth.ErrNotValid},
		{"Alg-None", none, auth.ErrNotValid},
		{"Wrong-Issuer", wrongIssuer, auth.ErrNotValid},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			_, err := tokens.Parse(tc.raw)

			// Assert
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestTokensCookie(t *testing.T) {
	// Arrange
	tokens := newTokens(t, auth.WithSecureCookie(false), auth.WithTTL(time.Hour))
	w := httptest.NewRecorder()

	// Act
	require.Nil(t, tokens.SetCookie(w, testUser))

	// Assert
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	require.Equal(t, auth.DefaultCookieName, c.Name)
	require.True(t, c.HttpOnly)
	require.False(t, c.Secure)
	require.Equal(t, 3600, c.MaxAge)
	require.Equal(t, "/", c.Path)

	// Arrange
	r := httptest.NewRequest(http.MethodGet, "https://example.com/protected", nil)
	r.AddCookie(c)

	// Act + Assert
	require.True(t, tokens.VerifySession(r))

	claims, err := tokens.FromRequest(r)
	require.Nil(t, err)
	require.Equal(t, testUser.Email, claims.Email)

	// Act
	w = httptest.NewRecorder()
	tokens.ClearCookie(w)

	// Assert
	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Equal(t, -1, cleared[0].MaxAge)
	require.Empty(t, cleared[0].Value)
}

func TestTokensVerifySession(t *testing.T) {
	tokens := newTokens(t)
	raw, err := tokens.Issue(testUser)
	require.Nil(t, err)

	for _, tc := range []struct {
		name     string
		arrange  func(r *http.Request)
		expected bool
	}{
		{"None", func(*http.Request) {}, false},
		{"Bad-Cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.DefaultCookieName, Value: "nope"}) }, false},
		{"Bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+raw) }, true},
		{"Not-Bearer", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+raw) }, false},
		{"Other-Cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "other", Value: raw}) }, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := httptest.NewRequest(http.MethodGet, "https://example.com/protected", nil)
			tc.arrange(r)

			// Act + Assert
			require.Equal(t, tc.expected, tokens.VerifySession(r))
		})
	}
}

func TestClaimsUserID(t *testing.T) {
	for _, sub := range []string{"", "0", "-1", "abc"} {
		t.Run("Subject-"+sub, func(t *testing.T) {
			// Act
			_, err := auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}.UserID()

			// Assert
			require.ErrorIs(t, err, auth.ErrNotValid)
		})
	}
}
