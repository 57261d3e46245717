package outpost_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/account"
	"github.com/xy-planning-network/trailhead/http/gate"
	"github.com/xy-planning-network/trailhead/outpost"
)

// unsetEnv clears every variable outpost reads, so the host environment cannot leak into a test.
func unsetEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		outpost.AppTitleEnvVar,
		outpost.BaseURLEnvVar,
		outpost.CORSOriginEnvVar,
		outpost.EnvironmentEnvVar,
		outpost.GateConfigFileEnvVar,
		outpost.GoogleClientIDEnvVar,
		outpost.GoogleClientSecretEnvVar,
		outpost.RedisURLEnvVar,
		outpost.RedisPasswordEnvVar,
		outpost.SessionAuthKeyEnvVar,
		outpost.SessionEncryptKeyEnvVar,
		outpost.SessionTokenKeyEnvVar,
		outpost.SessionTokenTTLEnvVar,
		"SENTRY_DSN",
	} {
		t.Setenv(key, "")
	}
}

func newOutpost(t *testing.T, opts ...outpost.OutpostOption) *outpost.Outpost {
	t.Helper()

	opts = append([]outpost.OutpostOption{
		outpost.WithEnv(trailhead.Testing.String()),
		outpost.WithLogOutput(io.Discard),
	}, opts...)

	o, err := outpost.New(opts...)
	require.Nil(t, err)
	t.Cleanup(o.Cancel)

	return o
}

func TestNew(t *testing.T) {
	// Arrange
	unsetEnv(t)
	o := newOutpost(t, outpost.WithStaticFiles("/assets/", fstest.MapFS{}))

	tcs := []struct {
		name     string
		path     string
		code     int
		location string
	}{
		{"Home", "/", http.StatusOK, ""},
		{"Protected", "/protected", http.StatusTemporaryRedirect, "http://example.com/auth/signin"},
		{"Sign-In", "/auth/signin", http.StatusOK, ""},
		{"Sign-Up", "/auth/signup", http.StatusOK, ""},
		{"Session", "/api/auth/session", http.StatusOK, ""},
		{"Counter", "/api/counter", http.StatusOK, ""},
		{"Google-Disabled", "/api/auth/signin/google", http.StatusNotFound, ""},
		{"Not-Found", "/nowhere", http.StatusNotFound, ""},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, tc.path, nil)

			// Act
			o.ServeHTTP(w, r)

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.location, w.Header().Get("Location"))
			require.NotZero(t, w.Header().Get("X-Request-Id"))
		})
	}

	require.Equal(t, trailhead.Testing, o.Env())
	require.NotNil(t, o.Logger())
}

func TestNewProduction(t *testing.T) {
	// Arrange
	unsetEnv(t)
	opts := []outpost.OutpostOption{
		outpost.WithEnv(trailhead.Production.String()),
		outpost.WithLogOutput(io.Discard),
	}

	// Act
	_, err := outpost.New(opts...)

	// Assert
	require.ErrorIs(t, err, trailhead.ErrBadConfig)

	// Arrange
	t.Setenv(outpost.SessionAuthKeyEnvVar, strings.Repeat("ab", 32))
	t.Setenv(outpost.SessionEncryptKeyEnvVar, strings.Repeat("cd", 32))

	// Act
	_, err = outpost.New(opts...)

	// Assert
	require.ErrorIs(t, err, trailhead.ErrBadConfig)

	// Arrange
	t.Setenv(outpost.SessionTokenKeyEnvVar, "production-token-key")

	// Act
	_, err = outpost.New(opts...)

	// Assert
	require.ErrorIs(t, err, trailhead.ErrBadConfig)

	// Arrange
	opts = append(opts, outpost.WithAccountStore(account.NewStub()))

	// Act
	o, err := outpost.New(opts...)

	// Assert
	require.Nil(t, err)
	t.Cleanup(o.Cancel)

	// Arrange
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/signin", nil)

	// Act
	o.ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusPermanentRedirect, w.Code)
	require.Equal(t, "https://example.com/auth/signin", w.Header().Get("Location"))

	// Arrange
	w = httptest.NewRecorder()
	r.Header.Set("X-Forwarded-Proto", "https")

	// Act
	o.ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
}

func TestNewBadEnv(t *testing.T) {
	tcs := []struct {
		name  string
		key   string
		value string
	}{
		{"Redis-URL", outpost.RedisURLEnvVar, "://not-a-url"},
		{"Session-Key", outpost.SessionAuthKeyEnvVar, "not hex"},
		{"Token-TTL", outpost.SessionTokenTTLEnvVar, "-1h"},
		{"Gate-Config-File", outpost.GateConfigFileEnvVar, filepath.Join(t.TempDir(), "missing.yml")},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			unsetEnv(t)
			t.Setenv(tc.key, tc.value)

			// Act
			_, err := outpost.New(outpost.WithEnv(trailhead.Testing.String()), outpost.WithLogOutput(io.Discard))

			// Assert
			require.ErrorIs(t, err, trailhead.ErrBadConfig)
		})
	}
}

func TestGateConfig(t *testing.T) {
	// Arrange
	unsetEnv(t)
	cfg := gate.DefaultConfig()
	cfg.Rules.ProtectedPaths = []string{"/dashboard"}

	fp := filepath.Join(t.TempDir(), "gate.yml")
	require.Nil(t, os.WriteFile(fp, []byte("rules:\n  protectedPaths: [/dashboard]\n"), 0o600))

	tcs := []struct {
		name string
		opt  outpost.OutpostOption
		env  string
	}{
		{"Option", outpost.WithGateConfig(cfg), ""},
		{"File", nil, fp},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			t.Setenv(outpost.GateConfigFileEnvVar, tc.env)

			var opts []outpost.OutpostOption
			if tc.opt != nil {
				opts = append(opts, tc.opt)
			}
			o := newOutpost(t, opts...)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)

			// Act
			o.ServeHTTP(w, r)

			// Assert
			require.Equal(t, http.StatusTemporaryRedirect, w.Code)
			require.Equal(t, "http://example.com/auth/signin", w.Header().Get("Location"))

			// Arrange
			w = httptest.NewRecorder()
			r = httptest.NewRequest(http.MethodGet, "/protected", nil)

			// Act
			o.ServeHTTP(w, r)

			// Assert
			require.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestWithStaticFiles(t *testing.T) {
	// Arrange
	unsetEnv(t)
	fsys := fstest.MapFS{"app.js": {Data: []byte("console.log('trailhead')")}}
	o := newOutpost(t, outpost.WithStaticFiles("/assets/", fsys))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/assets/app.js", nil)

	// Act
	o.ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "console.log('trailhead')", w.Body.String())
	require.Equal(t, "max-age=2592000", w.Header().Get("Cache-Control"))
}

func TestSignInFlow(t *testing.T) {
	// Arrange
	unsetEnv(t)
	srv := httptest.NewServer(newOutpost(t))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.Nil(t, err)

	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	do := func(method, path, body string) *http.Response {
		r, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
		require.Nil(t, err)

		if body != "" {
			r.Header.Set("Content-Type", "application/json")
		}

		res, err := client.Do(r)
		require.Nil(t, err)
		t.Cleanup(func() { res.Body.Close() })

		return res
	}

	// Act
	res := do(http.MethodPost, "/api/auth/register", `{"name":"Simone Weil","email":"weil@example.com","password":"gravity-and-grace"}`)

	// Assert
	require.Equal(t, http.StatusOK, res.StatusCode)

	// Act
	res = do(http.MethodGet, "/api/auth/csrf", "")

	// Assert
	require.Equal(t, http.StatusOK, res.StatusCode)

	csrf := make(map[string]string)
	require.Nil(t, json.NewDecoder(res.Body).Decode(&csrf))
	require.NotZero(t, csrf["csrfToken"])

	// Act
	body := fmt.Sprintf(`{"email":"weil@example.com","password":"gravity-and-grace","csrfToken":%q}`, csrf["csrfToken"])
	res = do(http.MethodPost, "/api/auth/callback/credentials", body)

	// Assert
	require.Equal(t, http.StatusOK, res.StatusCode)

	// Act
	res = do(http.MethodGet, "/protected", "")

	// Assert
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "no-store", res.Header.Get("Cache-control"))

	// Act
	res = do(http.MethodGet, "/auth/signin", "")

	// Assert
	require.Equal(t, http.StatusTemporaryRedirect, res.StatusCode)
	require.Equal(t, srv.URL+"/", res.Header.Get("Location"))

	// Act
	res = do(http.MethodPost, "/api/auth/signout", "")

	// Assert
	require.Equal(t, http.StatusOK, res.StatusCode)

	// Act
	res = do(http.MethodGet, "/protected", "")

	// Assert
	require.Equal(t, http.StatusTemporaryRedirect, res.StatusCode)
	require.Equal(t, srv.URL+"/auth/signin", res.Header.Get("Location"))
}

func TestGuide(t *testing.T) {
	// Arrange
	unsetEnv(t)
	o := newOutpost(t, outpost.WithServer(&http.Server{Addr: "127.0.0.1:0"}))

	errs := make(chan error, 1)
	go func() { errs <- o.Guide() }()

	// Act
	o.Cancel()

	// Assert
	require.Nil(t, <-errs)
	require.Nil(t, o.Shutdown())
}

func TestGuideCannotListen(t *testing.T) {
	// Arrange
	unsetEnv(t)
	o := newOutpost(t, outpost.WithServer(&http.Server{Addr: "127.0.0.1:-1"}))

	// Act
	err := o.Guide()

	// Assert
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "could not listen")
}
