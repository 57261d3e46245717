package session

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
	gorilla "github.com/gorilla/sessions"
)

// keys used internal to specific implementations of different interfaces.
const (
	sessionKey = "trailhead-session-gorilla" // used by Service
	csrfKey    = sessionKey + "-csrf"        // used by Session
)

// The Sessionable wraps methods for basic adding values to, deleting, and getting values from a session
// associated with an *http.Request and saving those to the session store.
type Sessionable interface {
	Delete(w http.ResponseWriter, r *http.Request) error
	Get(key string) any
	ResetExpiry(w http.ResponseWriter, r *http.Request) error
	Save(w http.ResponseWriter, r *http.Request) error
	Set(w http.ResponseWriter, r *http.Request, key string, val any) error
}

// The CSRFSessionable wraps methods for issuing and checking
// the anti-forgery token bound to a session.
type CSRFSessionable interface {
	CSRFToken(w http.ResponseWriter, r *http.Request) (string, error)
	VerifyCSRF(token string) error
}

// The TrailheadSessionable composes session's major interfaces.
type TrailheadSessionable interface {
	CSRFSessionable
	FlashSessionable
	Sessionable
}

// A Session provides all functionality for managing a fully featured session.
//
// Its functionality is implemented by lightly wrapping a gorilla.Session.
type Session struct {
	s *gorilla.Session
}

var _ TrailheadSessionable = Session{}

// NewSession constructs a new Session from a *gorilla.Session.
func NewSession(g *gorilla.Session) Session { return Session{s: g} }

// ClearFlashes drops any pending []Flash.
func (s Session) ClearFlashes(w http.ResponseWriter, r *http.Request) {
	_ = s.Flashes(w, r)
}

// CSRFToken retrieves the token bound to the session,
// minting and saving one first if none is.
func (s Session) CSRFToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if token, ok := s.s.Values[csrfKey].(string); ok && token != "" {
		return token, nil
	}

	token := uuid.NewString()
	s.s.Values[csrfKey] = token
	if err := s.Save(w, r); err != nil {
		return "", err
	}

	return token, nil
}

// VerifyCSRF checks token against the one bound to the session.
//
// If the session has no token, ErrNoCSRF returns.
// If the tokens do not match, ErrNotValid returns.
func (s Session) VerifyCSRF(token string) error {
	expected, ok := s.s.Values[csrfKey].(string)
	if !ok || expected == "" {
		return ErrNoCSRF
	}

	if subtle.ConstantTimeCompare([]byte(expected), []byte(token)) != 1 {
		return ErrNotValid
	}

	return nil
}

// Delete removes a session by dropping its values and making the MaxAge negative.
func (s Session) Delete(w http.ResponseWriter, r *http.Request) error {
	for k := range s.s.Values {
		delete(s.s.Values, k)
	}

	s.s.Options.MaxAge = -1
	return s.Save(w, r)
}

// Flashes retrieves []Flash stored in the session.
func (s Session) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	raw := s.s.Flashes()
	fs := make([]Flash, 0)
	for _, r := range raw {
		f, ok := r.(Flash)
		if !ok {
			continue
		}

		fs = append(fs, f)
	}
	if len(fs) > 0 {
		// NOTE(dlk): Flashes are removed after they are accessed,
		// but the session needs to be saved for them to be finally removed
		if err := s.Save(w, r); err != nil {
			return nil
		}
	}

	return fs
}

// Get retrieves a value from the session according to the key passed in.
func (s Session) Get(key string) any {
	return s.s.Values[key]
}

// ResetExpiry resets the expiration of the session by saving it.
func (s Session) ResetExpiry(w http.ResponseWriter, r *http.Request) error {
	return s.Save(w, r)
}

// Save wraps gorilla.Session.Save, saving the session in the request.
func (s Session) Save(w http.ResponseWriter, r *http.Request) error { return s.s.Save(r, w) }

// Set stores a value according to the key passed in on the session.
func (s Session) Set(w http.ResponseWriter, r *http.Request, key string, val any) error {
	s.s.Values[key] = val
	return s.Save(w, r)
}

// SetFlash stores the passed in Flash in the session.
func (s Session) SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error {
	s.s.AddFlash(flash)
	return s.Save(w, r)
}
