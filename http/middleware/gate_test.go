package middleware_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead/http/gate"
	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/logger"
)

func TestGateRequests(t *testing.T) {
	// Arrange + Act
	actual := middleware.GateRequests(nil, gate.NoSession, nil)

	// Assert
	require.Equal(t, fmt.Sprintf("%p", middleware.NoopAdapter), fmt.Sprintf("%p", actual))

	g, err := gate.New(gate.DefaultConfig())
	require.Nil(t, err)

	signedIn := gate.VerifierFunc(func(*http.Request) bool { return true })

	tcs := []struct {
		name     string
		url      string
		header   http.Header
		verifier gate.SessionVerifier
		code     int
		location string
	}{
		{"Root", "http://example.com/", nil, gate.NoSession, http.StatusTeapot, ""},
		{"Protected-Anonymous", "http://example.com/protected", nil, gate.NoSession, http.StatusTemporaryRedirect, "http://example.com/auth/signin"},
		{"Protected-Signed-In", "http://example.com/protected", nil, signedIn, http.StatusTeapot, ""},
		{"Sign-In-Signed-In", "http://example.com/auth/signin", nil, signedIn, http.StatusTemporaryRedirect, "http://example.com/"},
		{"Sign-Up-Signed-In", "http://example.com/auth/signup", nil, signedIn, http.StatusTemporaryRedirect, "http://example.com/"},
		{"Sign-In-Anonymous", "http://example.com/auth/signin", nil, gate.NoSession, http.StatusTeapot, ""},
		{"Auth-API-Signed-In", "http://example.com/api/auth/callback/google", nil, signedIn, http.StatusTeapot, ""},
		{"Asset", "http://example.com/assets/app.js", nil, gate.NoSession, http.StatusTeapot, ""},
		{
			"Behind-Proxy",
			"http://example.com/protected",
			http.Header{"X-Forwarded-Proto": []string{"https"}},
			gate.NoSession,
			http.StatusTemporaryRedirect,
			"https://example.com/auth/signin",
		},
		{
			"Behind-Chained-Proxies",
			"http://example.com/protected",
			http.Header{"X-Forwarded-Proto": []string{" HTTPS , http"}},
			gate.NoSession,
			http.StatusTemporaryRedirect,
			"https://example.com/auth/signin",
		},
		{
			"Behind-Proxy-Unknown-Scheme",
			"http://example.com/protected",
			http.Header{"X-Forwarded-Proto": []string{"javascript"}},
			gate.NoSession,
			http.StatusTemporaryRedirect,
			"http://example.com/auth/signin",
		},
		{
			"TLS-Unknown-Scheme",
			"https://example.com/protected",
			http.Header{"X-Forwarded-Proto": []string{"wss"}},
			gate.NoSession,
			http.StatusTemporaryRedirect,
			"https://example.com/auth/signin",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, tc.url, nil)
			for k, v := range tc.header {
				r.Header[k] = v
			}

			// Act
			middleware.GateRequests(g, tc.verifier, nil)(teapotHandler()).ServeHTTP(w, r)

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.location, w.Header().Get("Location"))
		})
	}
}

func TestGateRequestsLogs(t *testing.T) {
	// Arrange
	g, err := gate.New(gate.DefaultConfig())
	require.Nil(t, err)

	b := new(bytes.Buffer)
	l := logger.New(slog.New(slog.NewJSONHandler(b, &slog.HandlerOptions{Level: slog.LevelDebug})))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://example.com/protected", nil)

	// Act
	middleware.GateRequests(g, nil, l)(teapotHandler()).ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	require.Contains(t, b.String(), "gate redirecting request")
	require.Contains(t, b.String(), "redirect /auth/signin")
}
