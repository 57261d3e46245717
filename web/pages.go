package web

import (
	"net/http"

	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/http/session"
)

// page is the data every page payload carries.
type page struct {
	Title string            `json:"title"`
	Links map[string]string `json:"links,omitempty"`
}

// home greets anyone, signed in or not.
func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	opts := []resp.Fn{
		resp.Data(page{
			Title: "Home",
			Links: map[string]string{
				"counter":   "/api/counter",
				"protected": h.landingPath(),
				"signIn":    h.rules.SignInPath,
			},
		}),
		resp.Flashes(),
	}

	if u, err := h.CurrentUser(r.Context()); err == nil {
		opts = append(opts, resp.User(u))
	}

	h.Json(w, r, opts...)
}

// protected greets the current user.
//
// The gate only lets requests with a valid session token this far,
// but the user the token names may since have been removed.
func (h *Handler) protected(w http.ResponseWriter, r *http.Request) {
	if _, err := h.CurrentUser(r.Context()); err != nil {
		h.tokens.ClearCookie(w)
		h.Redirect(w, r, resp.Url(h.rules.SignInPath), resp.Warn(session.NoAccessMsg))
		return
	}

	h.Json(w, r,
		resp.Data(page{
			Title: "Protected",
			Links: map[string]string{"signOut": h.rules.AuthAPIPrefix + "/signout"},
		}),
		resp.CurrentUser(),
		resp.Flashes(),
	)
}

// A signInPage carries what a client needs to render the sign-in form.
type signInPage struct {
	page
	CSRFToken string   `json:"csrfToken"`
	Providers []string `json:"providers"`
}

// signIn hands out the CSRF token the sign-in form submits.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
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

	providers := []string{"credentials"}
	if h.google != nil {
		providers = append(providers, "google")
	}

	h.Json(w, r,
		resp.Data(signInPage{
			page: page{
				Title: "Welcome back",
				Links: map[string]string{"signUp": "/auth/signup"},
			},
			CSRFToken: tok,
			Providers: providers,
		}),
		resp.Flashes(),
	)
}

// signUp describes the sign-up form.
func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	h.Json(w, r,
		resp.Data(page{
			Title: "Create an account",
			Links: map[string]string{
				"register": h.rules.AuthAPIPrefix + "/register",
				"signIn":   h.rules.SignInPath,
			},
		}),
		resp.Flashes(),
	)
}
