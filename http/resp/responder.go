package resp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/logger"
)

const responderFrames = 1

// Responder maintains reusable pieces for responding to HTTP requests.
// It exposes many common methods for writing structured data as an HTTP response.
// These are the forms of response Responder can execute:
//
//	Err
//	Json
//	Redirect
//	Text
//
// Most oftentimes, setting up a single instance of a Responder suffices for an application.
//
// When handling a specific HTTP request, calling code supplies additional data, structure,
// and so forth through Fn functions.
type Responder struct {
	logger logger.Logger

	// Pool of *bytes.Buffer to prerender responses into
	pool *sync.Pool

	// Error message to use for "contact us" style client-side error messages,
	// i.e., those set in a session.Flash
	contactErrMsg string

	// Root URL the responder is listening on, also used when in an error state
	rootUrl *url.URL
}

// NewResponder constructs a *Responder using the ResponderOptFns passed in.
func NewResponder(opts ...ResponderOptFn) *Responder {
	d := &Responder{
		pool:    &sync.Pool{New: func() any { return new(bytes.Buffer) }},
		rootUrl: &url.URL{Path: "/"},
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logger.New(nil)
	}

	if l, ok := d.logger.(logger.SkipLogger); ok {
		d.logger = l.AddSkip(l.Skip() + responderFrames)
	}

	return d
}

// CurrentUser retrieves the user set in the context.
//
// If the context.Context has no user, ErrNotFound returns.
func (doer Responder) CurrentUser(ctx context.Context) (trailhead.User, error) {
	u, ok := ctx.Value(trailhead.CurrentUserKey).(trailhead.User)
	if !ok {
		return trailhead.User{}, fmt.Errorf("%w: no user found with %s", ErrNotFound, trailhead.CurrentUserKey)
	}

	return u, nil
}

// Err wraps http.Error(), logging the error causing the failure state.
//
// Use in exceptional circumstances when no Redirect or Json can occur.
func (doer *Responder) Err(w http.ResponseWriter, r *http.Request, err error, opts ...Fn) {
	rr, nested := doer.do(w, r, append(opts, Err(err))...)
	if nested != nil {
		err = fmt.Errorf("%w: %s", err, nested)
	}

	var msg string
	if err != nil {
		msg = err.Error()
	}

	code := http.StatusInternalServerError
	if rr != nil && rr.code != 0 {
		code = rr.code
	}

	http.Error(w, msg, code)
}

// jsonSchema is the body Json writes.
type jsonSchema struct {
	D any                `json:"data,omitempty"`
	U *trailhead.User    `json:"currentUser,omitempty"`
	F []session.Flash    `json:"flashes,omitempty"`
	P trailhead.AppProps `json:"props,omitempty"`
}

// Json responds with data in JSON format, collating it from User(), Data() and setting appropriate headers.
//
// When standard 2xx codes are supplied, the JSON schema will look like this:
//
//	{
//		"currentUser": {},
//		"data": {},
//		"flashes": [],
//		"props": {}
//	}
//
// Otherwise, "currentUser" is elided.
// Unwrapped() elides everything but "data", writing it as the entire body.
//
// User() or CurrentUser() populate "currentUser".
// Data() populates "data".
// Flashes() populates "flashes".
// Any trailhead.AppProps in the request context populate "props".
func (doer *Responder) Json(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	rr, err := doer.do(w, r, opts...)
	if err != nil {
		return err
	}

	if rr.code == 0 {
		rr.code = http.StatusOK
	}

	var payload any = rr.data
	if !rr.unwrap {
		schema := jsonSchema{D: rr.data, F: rr.flashes}
		if props := trailhead.AppPropsFromContext(r.Context()); len(props) > 0 {
			schema.P = props
		}

		if rr.code >= http.StatusOK && rr.code <= http.StatusNoContent {
			schema.U = rr.user
		}

		payload = schema
	}

	b := doer.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer doer.pool.Put(b)

	if err := json.NewEncoder(b).Encode(payload); err != nil {
		doer.Err(w, r, err)
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(rr.code)
	if _, err := b.WriteTo(w); err != nil {
		return err
	}

	return nil
}

// Redirect calls http.Redirect, given Url() set the redirect destination.
// If Url() is not passed in opts, then ToRoot() sets the redirect destination.
//
// The default response status code is 302.
//
// If Code() set the status code to something other than standard redirect 3xx statuses,
// Redirect overwrites the status code with an appropriate 3xx status code.
func (doer *Responder) Redirect(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	rr, err := doer.do(w, r, append([]Fn{ToRoot()}, opts...)...)
	if err != nil {
		return err
	}

	// NOTE(dlk): because of the default ToRoot(),
	// this check safeguards against bugs in the above.
	if rr.url == nil {
		return fmt.Errorf("%w: cannot redirect, no resp.url", ErrMissingData)
	}

	switch {
	case rr.code >= http.StatusMultipleChoices && rr.code <= http.StatusPermanentRedirect:
		// NOTE(dlk): code is already a 3xx, so do nothing
	case rr.code >= http.StatusBadRequest && rr.code < http.StatusInternalServerError:
		rr.code = http.StatusSeeOther
	case rr.code >= http.StatusInternalServerError:
		rr.code = http.StatusTemporaryRedirect
	default:
		rr.code = http.StatusFound
	}

	http.Redirect(w, r, rr.url.String(), rr.code)
	return nil
}

// Text writes msg as a plain text body.
// The default response status code is 200.
func (doer *Responder) Text(w http.ResponseWriter, r *http.Request, msg string, opts ...Fn) error {
	rr, err := doer.do(w, r, opts...)
	if err != nil {
		return err
	}

	if rr.code == 0 {
		rr.code = http.StatusOK
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(rr.code)
	_, err = fmt.Fprint(w, msg)
	return err
}

// Session retrieves the session set in the context as a session.Session.
//
// If the context.Context has no session, ErrNotFound returns.
func (doer Responder) Session(ctx context.Context) (session.Session, error) {
	val := ctx.Value(trailhead.SessionKey)
	if val == nil {
		return session.Session{}, fmt.Errorf("%w: no session found with %s", ErrNotFound, trailhead.SessionKey)
	}

	s, ok := val.(session.Session)
	if !ok {
		return session.Session{}, fmt.Errorf("%w: is not session.Session, is %T", ErrInvalid, val)
	}

	return s, nil
}

// do applies all options to the passed in http.ResponseWriter and *http.Request.
//
// Calling code ought to pass Options in the correct order.
// An option requiring something set by another one should come after.
// do nonetheless attempts to retry calling functional options until all do not return errors or,
// a set of options unable to not return errors is reached.
//
// Should all options apply successfully, do returns a validly formed *Response.
func (doer *Responder) do(w http.ResponseWriter, r *http.Request, opts ...Fn) (*Response, error) {
	resp := &Response{w: w, r: r}

	redos := make([]Fn, 0)
	for _, opt := range opts {
		select {
		case <-r.Context().Done():
			return nil, fmt.Errorf("%w", ErrDone)
		default:
			if err := opt(*doer, resp); err != nil {
				redos = append(redos, opt)
			}
		}
	}

	// NOTE(dlk): because redo shrinks redos,
	// stop once a pass leaves the same set of functions
	// that will not return anything other than errors.
	for i := -1; i != len(redos); {
		select {
		case <-r.Context().Done():
			return nil, fmt.Errorf("%w", ErrDone)
		default:
			i = len(redos)
			redos = doer.redo(resp, redos...)
		}
	}

	var err error
	for _, opt := range redos {
		nested := opt(*doer, resp)
		if err == nil {
			err = nested
			continue
		}

		err = fmt.Errorf("%w: %s", nested, err)
	}

	return resp, err
}

// redo applies as many Options as it can, returning those Options that continue to throw an error.
func (doer *Responder) redo(r *Response, opts ...Fn) []Fn {
	bad := make([]Fn, 0)
	for _, opt := range opts {
		if err := opt(*doer, r); err != nil {
			bad = append(bad, opt)
		}
	}

	return bad
}
