package session

import (
	"net/http"
)

const (
	// Default Flash Class
	FlashError   = "error"
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashWarning = "warning"

	// Default Flash Msg
	AccountCreatedMsg = "Account created! Redirecting to login..."
	BadCredsMsg       = "Hmm... check those credentials."
	BadInputMsg       = "Hmm... check your form, something isn't correct."
	DefaultErrMsg     = "Uh oh! We've run into an issue."
	LoggedInMsg       = "Successfully logged in!"
	LoggedOutMsg      = "You have been signed out."
	NoAccessMsg       = "Oops, sending you back somewhere safe."
)

var ContactUsErr = DefaultErrMsg + " Please contact us at %s if the issue persists."

type FlashSessionable interface {
	ClearFlashes(w http.ResponseWriter, r *http.Request)
	Flashes(w http.ResponseWriter, r *http.Request) []Flash
	SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error
}

// A Flash is a one-time message shown to a user on their next page view.
type Flash struct {
	Class string `json:"class"`
	Msg   string `json:"msg"`
}
