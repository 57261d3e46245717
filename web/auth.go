package web

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/account"
	"github.com/xy-planning-network/trailhead/auth"
	"github.com/xy-planning-network/trailhead/http/req"
	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/logger"
)

const (
	// MissingCSRF is the error code reported to clients signing in without a matching CSRF token.
	MissingCSRF = "MissingCSRF"

	// OAuthCallback is the error code reported to clients an identity provider could not sign in.
	OAuthCallback = "OAuthCallback"

	oauthStateKey = "oauthState"
)

// A SignUpRequest carries what an agent submits to create an account.
type SignUpRequest struct {
	Name     string `json:"name" schema:"name" validate:"required"`
	Email    string `json:"email" schema:"email" validate:"required,email"`
	Password string `json:"password" schema:"password" validate:"required,min=8"`
}

// A signInResult answers a sign-in attempt.
type signInResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	URL   string `json:"url,omitempty"`
}

// register creates an account, answering in plain text.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	body := new(SignUpRequest)
	err := h.parser.Parse(w, r, body)

	var verrs req.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		h.Text(w, r, verrs.Describe(), resp.Code(http.StatusBadRequest))
		return
	case err != nil:
		h.Text(w, r, session.BadInputMsg, resp.Code(http.StatusBadRequest))
		return
	}

	u, err := h.accounts.Register(r.Context(), body.Name, body.Email, body.Password)
	switch {
	case errors.Is(err, trailhead.ErrExists):
		h.Text(w, r, "An account with that email already exists.", resp.Code(http.StatusConflict))
		return
	case err != nil:
		h.Err(w, r, err)
		return
	}

	h.logger.Info("account registered", &logger.LogContext{Request: r, User: u})
	h.Text(w, r, "ok")
}

// csrf hands out the CSRF token stored in the session.
func (h *Handler) csrf(w http.ResponseWriter, r *http.Request) {
	s, err := h.Session(r.Context())
	if err != nil {
		h.Err(w, r, err)
		return
	}

	tok, err := s.CSRFToken(w, r)
	if err != nil {
		h.Err(w, r, err)
		return
	}

	h.Json(w, r, resp.Unwrapped(), resp.Data(map[string]string{"csrfToken": tok}))
}

// credentialsCallback signs an agent in with an email and password.
func (h *Handler) credentialsCallback(w http.ResponseWriter, r *http.Request) {
	body := new(auth.SignInRequest)
	if err := h.parser.Parse(w, r, body); err != nil {
		if body.CSRFToken == "" {
			h.signInFailed(w, r, http.StatusForbidden, MissingCSRF)
			return
		}

		h.signInFailed(w, r, http.StatusUnauthorized, auth.CredentialsSignin)
		return
	}

	s, err := h.Session(r.Context())
	if err != nil {
		h.Err(w, r, err)
		return
	}

	if err := s.VerifyCSRF(body.CSRFToken); err != nil {
		h.signInFailed(w, r, http.StatusForbidden, MissingCSRF)
		return
	}

	u, err := h.credentials.SignIn(r.Context(), w, *body)
	switch {
	case errors.Is(err, account.ErrBadCredentials):
		h.signInFailed(w, r, http.StatusUnauthorized, auth.CredentialsSignin)
		return
	case err != nil:
		h.Err(w, r, err)
		return
	}

	h.logger.Info("signed in with credentials", &logger.LogContext{Request: r, User: u})
	h.Json(w, r,
		resp.Unwrapped(),
		resp.Data(signInResult{OK: true, URL: h.landingPath()}),
		resp.Success(session.LoggedInMsg),
	)
}

func (h *Handler) signInFailed(w http.ResponseWriter, r *http.Request, code int, reason string) {
	h.Json(w, r, resp.Unwrapped(), resp.Code(code), resp.Data(signInResult{Error: reason}))
}

// googleSignIn sends an agent to Google to sign in.
func (h *Handler) googleSignIn(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.notFound(w, r)
		return
	}

	s, err := h.Session(r.Context())
	if err != nil {
		h.Err(w, r, err)
		return
	}

	state := uuid.NewString()
	if err := s.Set(w, r, oauthStateKey, state); err != nil {
		h.Err(w, r, err)
		return
	}

	h.Redirect(w, r, resp.Url(h.google.AuthCodeURL(state)))
}

// googleCallback finishes signing in an agent Google sent back.
func (h *Handler) googleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.notFound(w, r)
		return
	}

	s, err := h.Session(r.Context())
	if err != nil {
		h.Err(w, r, err)
		return
	}

	want, _ := s.Get(oauthStateKey).(string)
	got := r.URL.Query().Get("state")
	if err := s.Set(w, r, oauthStateKey, ""); err != nil {
		h.Err(w, r, err)
		return
	}

	if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		h.oauthFailed(w, r, resp.Warn("Sign in with Google expired, please try again."))
		return
	}

	token, err := h.google.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.oauthFailed(w, r, resp.GenericErr(err))
		return
	}

	info, err := h.google.FetchUser(r.Context(), token)
	if err != nil {
		h.oauthFailed(w, r, resp.GenericErr(err))
		return
	}

	u, err := h.accounts.FindOrCreate(r.Context(), info.Name, info.Email)
	switch {
	case errors.Is(err, account.ErrNoAccess):
		h.oauthFailed(w, r, resp.Warn(session.NoAccessMsg))
		return
	case err != nil:
		h.oauthFailed(w, r, resp.GenericErr(err))
		return
	}

	if err := h.tokens.SetCookie(w, u); err != nil {
		h.oauthFailed(w, r, resp.GenericErr(err))
		return
	}

	h.logger.Info("signed in with google", &logger.LogContext{Request: r, User: u})
	h.Redirect(w, r, resp.Url(h.landingPath()), resp.Success(session.LoggedInMsg))
}

// oauthFailed sends an agent back to sign in, with what went wrong in the session.
func (h *Handler) oauthFailed(w http.ResponseWriter, r *http.Request, why resp.Fn) {
	h.Redirect(w, r, resp.Url(h.rules.SignInPath), resp.Param("error", OAuthCallback), why)
}

// A sessionUser is the current user as the session endpoint reports them.
type sessionUser struct {
	Email string `json:"email"`
	ID    uint   `json:"id"`
	Name  string `json:"name"`
}

// session answers with the current user and when their session expires, or {} without one.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	u, err := h.CurrentUser(r.Context())
	if err != nil {
		h.Json(w, r, resp.Unwrapped(), resp.Data(struct{}{}))
		return
	}

	data := map[string]any{"user": sessionUser{Email: u.Email, ID: u.ID, Name: u.Name}}
	if claims, err := h.tokens.FromRequest(r); err == nil && claims.ExpiresAt != nil {
		data["expires"] = claims.ExpiresAt.Time.UTC().Format(time.RFC3339)
	}

	h.Json(w, r, resp.Unwrapped(), resp.Data(data))
}

// signOut expires the session token and deletes the session.
func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	h.tokens.ClearCookie(w)

	s, err := h.Session(r.Context())
	if err != nil {
		h.Err(w, r, err)
		return
	}

	if err := s.Delete(w, r); err != nil {
		h.Err(w, r, err)
		return
	}

	h.Json(w, r, resp.Unwrapped(), resp.Data(signInResult{OK: true, URL: h.rules.HomePath}))
}
