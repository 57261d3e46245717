package resp

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/logger"
)

// A Fn is a functional option that mutates the state of the Response.
type Fn func(Responder, *Response) error

// A Response is the internal object a Responder response method builds while applying all
// functional options.
type Response struct {
	w       http.ResponseWriter
	r       *http.Request
	code    int
	data    any
	flashes []session.Flash
	unwrap  bool
	url     *url.URL
	user    *trailhead.User
}

// Code sets the response status code.
func Code(c int) Fn {
	return func(_ Responder, r *Response) error {
		r.code = c
		return nil
	}
}

// CurrentUser stores the user found in the request context in the *Response.
//
// If no user is in the context, ErrNoUser returns.
func CurrentUser() Fn {
	return func(d Responder, r *Response) error {
		if r.user != nil {
			return nil
		}

		u, err := d.CurrentUser(r.r.Context())
		if err != nil {
			return fmt.Errorf("%w: %s", ErrNoUser, err)
		}

		return User(u)(d, r)
	}
}

// Data stores the provided value for writing to the client.
//
// Used with Responder.Json.
func Data(d any) Fn {
	return func(_ Responder, r *Response) error {
		r.data = d
		return nil
	}
}

// Err sets the status code http.StatusInternalServerError and logs the error.
func Err(e error) Fn {
	return func(d Responder, r *Response) error {
		if e != nil {
			d.logger.Error(e.Error(), newLogContext(r, e))
		}

		r.code = http.StatusInternalServerError
		return nil
	}
}

// Flash sets a flash message in the session with the passed in class and msg.
func Flash(flash session.Flash) Fn {
	return func(d Responder, r *Response) error {
		s, err := d.Session(r.r.Context())
		if err != nil {
			return err
		}

		return s.SetFlash(r.w, r.r, flash)
	}
}

// Flashes pulls any pending flash messages out of the session and into the *Response.
//
// Used with Responder.Json, where they are assigned to the "flashes" key.
// Without a session there are no flashes.
func Flashes() Fn {
	return func(d Responder, r *Response) error {
		s, err := d.Session(r.r.Context())
		if err != nil {
			return nil
		}

		r.flashes = append(r.flashes, s.Flashes(r.w, r.r)...)
		return nil
	}
}

// GenericErr combines Err() and Flash() to log the passed in error
// and set a generic error flash in the session
// using either the string set by WithContactErrMsg or session.DefaultErrMsg.
func GenericErr(e error) Fn {
	return func(d Responder, r *Response) error {
		if err := Err(e)(d, r); err != nil {
			return err
		}

		msg := session.DefaultErrMsg
		if d.contactErrMsg != "" {
			msg = d.contactErrMsg
		}

		return Flash(session.Flash{Class: session.FlashError, Msg: msg})(d, r)
	}
}

// Param adds the query parameter to the response's URL.
//
// Used with Responder.Redirect.
func Param(key, val string) Fn {
	return func(_ Responder, r *Response) error {
		if r.url == nil {
			return fmt.Errorf("%w: Url() has not been called", ErrMissingData)
		}

		q := r.url.Query()
		q.Add(key, val)
		r.url.RawQuery = q.Encode()
		return nil
	}
}

// Success sets the status to http.StatusOK
// and sets a session.FlashSuccess flash in the session with the passed in msg.
func Success(msg string) Fn {
	return func(d Responder, r *Response) error {
		r.code = http.StatusOK
		return Flash(session.Flash{Class: session.FlashSuccess, Msg: msg})(d, r)
	}
}

// ToRoot calls URL with the Responder's default, root URL.
func ToRoot() Fn {
	return func(d Responder, r *Response) error {
		u := *d.rootUrl
		r.url = &u
		return nil
	}
}

// User stores the user in the *Response.
//
// When used with Json, the user is assigned to the "currentUser" key.
func User(u trailhead.User) Fn {
	return func(_ Responder, r *Response) error {
		r.user = &u
		return nil
	}
}

// Unwrapped has Responder.Json write the value set by Data as the entire body,
// leaving out "currentUser", "flashes" and "props".
func Unwrapped() Fn {
	return func(_ Responder, r *Response) error {
		r.unwrap = true
		return nil
	}
}

// Url parses the raw URL string and sets it in the *Response if successful.
//
// Used with Responder.Redirect.
func Url(u string) Fn {
	return func(_ Responder, r *Response) error {
		parsed, err := url.ParseRequestURI(u)
		if err != nil {
			return fmt.Errorf("%w: u is not a valid URL: %v", ErrInvalid, err)
		}
		r.url = parsed
		return nil
	}
}

// Warn sets a flash warning in the session and logs the warning.
func Warn(msg string) Fn {
	return func(d Responder, r *Response) error {
		d.logger.Warn(msg, newLogContext(r, nil))
		return Flash(session.Flash{Class: session.FlashWarning, Msg: msg})(d, r)
	}
}

// newLogContext helps structure a *logger.LogContext from the *Response.
func newLogContext(r *Response, err error) *logger.LogContext {
	ctx := &logger.LogContext{Error: err, Request: r.r}
	if mapped, ok := r.data.(map[string]any); ok {
		ctx.Data = mapped
	}

	if r.user != nil {
		ctx.User = *r.user
	}

	return ctx
}
