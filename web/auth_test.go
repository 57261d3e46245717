package web_test

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead/auth"
	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/web"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	goauth2 "google.golang.org/api/oauth2/v2"
)

func signIn(t *testing.T, a *app, email, password string) {
	t.Helper()

	body := fmt.Sprintf(`{"email":%q,"password":%q,"csrfToken":%q}`, email, password, csrfToken(t, a))
	res := a.postJSON(t, "/api/auth/callback/credentials", body)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, map[string]any{"ok": true, "url": "/protected"}, decode(t, res))
}

func TestRegister(t *testing.T) {
	// Arrange
	a := newApp(t, nil)

	tcs := []struct {
		name     string
		body     string
		code     int
		expected string
	}{
		{"Created", `{"name":"Hannah Arendt","email":"arendt@example.com","password":"banality-of-evil"}`, http.StatusOK, "ok"},
		{"Exists", `{"name":"Hannah Arendt","email":"ARENDT@example.com","password":"banality-of-evil"}`, http.StatusConflict, "An account with that email already exists."},
		{"Short-Password", `{"name":"Rosa Luxemburg","email":"rosa@example.com","password":"short"}`, http.StatusBadRequest, "password must be at least 8 characters"},
		{"Missing-Fields", `{"email":"not-an-email"}`, http.StatusBadRequest, "name is required; email must be a valid email; password is required"},
		{"Garbage", `{"name":`, http.StatusBadRequest, "Hmm... check your form, something isn't correct."},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			res := a.postJSON(t, "/api/auth/register", tc.body)

			// Assert
			require.Equal(t, tc.code, res.StatusCode)
			require.Equal(t, "text/plain; charset=utf-8", res.Header.Get("Content-Type"))
			require.Equal(t, tc.expected, text(t, res))
		})
	}
}

func TestRegisterIdempotent(t *testing.T) {
	// Arrange
	a := newApp(t, nil)
	body := `{"name":"Hannah Arendt","email":"arendt@example.com","password":"banality-of-evil"}`

	// Act
	first := a.postJSON(t, "/api/auth/register", body, middleware.IdempotencyHeader, "double-submit")
	second := a.postJSON(t, "/api/auth/register", body, middleware.IdempotencyHeader, "double-submit")
	third := a.postJSON(t, "/api/auth/register", body)

	// Assert
	require.Equal(t, http.StatusOK, first.StatusCode)
	require.Equal(t, http.StatusOK, second.StatusCode)
	require.Equal(t, "ok", text(t, second))
	require.Equal(t, http.StatusConflict, third.StatusCode)
}

func TestCredentialsCallback(t *testing.T) {
	// Arrange
	a := newApp(t, nil)
	u := register(t, a)
	tok := csrfToken(t, a)

	tcs := []struct {
		name     string
		body     string
		code     int
		expected map[string]any
	}{
		{
			"Wrong-Password",
			fmt.Sprintf(`{"email":%q,"password":"nope","csrfToken":%q}`, u.Email, tok),
			http.StatusUnauthorized,
			map[string]any{"ok": false, "error": auth.CredentialsSignin},
		},
		{
			"Unknown-Email",
			fmt.Sprintf(`{"email":"nobody@example.com","password":"banality-of-evil","csrfToken":%q}`, tok),
			http.StatusUnauthorized,
			map[string]any{"ok": false, "error": auth.CredentialsSignin},
		},
		{
			"Missing-CSRF",
			fmt.Sprintf(`{"email":%q,"password":"banality-of-evil"}`, u.Email),
			http.StatusForbidden,
			map[string]any{"ok": false, "error": web.MissingCSRF},
		},
		{
			"Wrong-CSRF",
			fmt.Sprintf(`{"email":%q,"password":"banality-of-evil","csrfToken":"forged"}`, u.Email),
			http.StatusForbidden,
			map[string]any{"ok": false, "error": web.MissingCSRF},
		},
		{
			"Bad-Email",
			fmt.Sprintf(`{"email":"arendt","password":"banality-of-evil","csrfToken":%q}`, tok),
			http.StatusUnauthorized,
			map[string]any{"ok": false, "error": auth.CredentialsSignin},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			res := a.postJSON(t, "/api/auth/callback/credentials", tc.body)

			// Assert
			require.Equal(t, tc.code, res.StatusCode)
			require.Equal(t, tc.expected, decode(t, res))
			require.Empty(t, res.Cookies())
		})
	}
}

func TestCredentialsCallbackForm(t *testing.T) {
	// Arrange
	a := newApp(t, nil)
	u := register(t, a)
	form := url.Values{
		"email":     {u.Email},
		"password":  {"banality-of-evil"},
		"csrfToken": {csrfToken(t, a)},
	}

	// Act
	res := a.do(t, http.MethodPost, "/api/auth/callback/credentials", "application/x-www-form-urlencoded", form.Encode())

	// Assert
	require.Equal(t, http.StatusOK, res.StatusCode)

	var cookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == auth.DefaultCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)

	claims, err := a.tokens.Parse(cookie.Value)
	require.Nil(t, err)
	require.Equal(t, u.Email, claims.Email)
}

func TestCredentialsCallbackRateLimited(t *testing.T) {
	// Arrange
	a := newApp(t, func(cfg *web.Config) {
		cfg.SignInLimit = middleware.NewVisitorsWithLimit(rate.Every(time.Hour), 1)
	})
	body := `{"email":"nobody@example.com","password":"nope","csrfToken":"nope"}`

	// Act
	first := a.postJSON(t, "/api/auth/callback/credentials", body)
	second := a.postJSON(t, "/api/auth/callback/credentials", body)

	// Assert
	require.Equal(t, http.StatusForbidden, first.StatusCode)
	require.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}

func TestSessionAndSignOut(t *testing.T) {
	// Arrange
	a := newApp(t, nil)

	// Act
	res := a.get(t, "/api/auth/session")

	// Assert
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Empty(t, decode(t, res))

	// Arrange
	u := register(t, a)
	signIn(t, a, u.Email, "banality-of-evil")

	// Act
	res = a.get(t, "/api/auth/session")

	// Assert
	require.Equal(t, http.StatusOK, res.StatusCode)

	body := decode(t, res)
	require.Equal(t, map[string]any{"email": u.Email, "id": float64(u.ID), "name": u.Name}, body["user"])

	expires, err := time.Parse(time.RFC3339, body["expires"].(string))
	require.Nil(t, err)
	require.True(t, expires.After(time.Now().Add(auth.DefaultTTL-time.Hour)))

	// Arrange
	res = a.do(t, http.MethodPost, "/api/counter/increase", "", "")
	require.Equal(t, map[string]any{"counter": float64(1)}, decode(t, res)["data"])

	// Act
	res = a.do(t, http.MethodPost, "/api/auth/signout", "", "")

	// Assert
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, map[string]any{"ok": true, "url": "/"}, decode(t, res))

	// Act
	res = a.get(t, "/api/counter")

	// Assert
	require.Equal(t, map[string]any{"counter": float64(0)}, decode(t, res)["data"])

	// Act
	res = a.get(t, "/protected")

	// Assert
	require.Equal(t, http.StatusTemporaryRedirect, res.StatusCode)
	require.Equal(t, a.srv.URL+"/auth/signin", res.Header.Get("Location"))
}

func TestGoogle(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	idp := NewMockIdentityProvider(ctrl)

	token := &oauth2.Token{AccessToken: "access"}
	verified := true

	idp.EXPECT().
		AuthCodeURL(gomock.Any()).
		DoAndReturn(func(state string) string {
			return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
		}).
		Times(3)
	idp.EXPECT().Exchange(gomock.Any(), "bad-code").Return(nil, auth.ErrNotValid)
	idp.EXPECT().Exchange(gomock.Any(), "good-code").Return(token, nil)
	idp.EXPECT().
		FetchUser(gomock.Any(), token).
		Return(&goauth2.Userinfo{Email: "beauvoir@example.com", Name: "Simone de Beauvoir", VerifiedEmail: &verified}, nil)

	a := newApp(t, func(cfg *web.Config) { cfg.Google = idp })

	startGoogle := func(t *testing.T) string {
		res := a.get(t, "/api/auth/signin/google")
		require.Equal(t, http.StatusFound, res.StatusCode)

		loc, err := url.Parse(res.Header.Get("Location"))
		require.Nil(t, err)
		require.Equal(t, "accounts.example.com", loc.Host)

		return loc.Query().Get("state")
	}

	tcs := []struct {
		name     string
		query    func(state string) url.Values
		location string
	}{
		{
			"Forged-State",
			func(string) url.Values { return url.Values{"state": {"forged"}, "code": {"good-code"}} },
			"/auth/signin?error=OAuthCallback",
		},
		{
			"Bad-Code",
			func(state string) url.Values { return url.Values{"state": {state}, "code": {"bad-code"}} },
			"/auth/signin?error=OAuthCallback",
		},
		{
			"Signed-In",
			func(state string) url.Values { return url.Values{"state": {state}, "code": {"good-code"}} },
			"/protected",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			state := startGoogle(t)
			require.NotZero(t, state)

			// Act
			res := a.get(t, "/api/auth/callback/google?"+tc.query(state).Encode())

			// Assert
			require.True(t, res.StatusCode >= 300 && res.StatusCode < 400)
			require.Equal(t, tc.location, res.Header.Get("Location"))
		})
	}

	// Act
	res := a.get(t, "/protected")

	// Assert
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.True(t, strings.Contains(text(t, res), "beauvoir@example.com"))

	// Act
	res = a.get(t, "/api/auth/callback/google?state=replayed&code=good-code")

	// Assert
	require.Equal(t, "/auth/signin?error=OAuthCallback", res.Header.Get("Location"))
}

func TestGoogleDisabled(t *testing.T) {
	// Arrange
	a := newApp(t, nil)

	// Act
	res := a.get(t, "/api/auth/signin/google")

	// Assert
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}
