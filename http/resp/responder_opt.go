package resp

import (
	"net/url"

	"github.com/xy-planning-network/trailhead/logger"
)

// A ResponderOptFn mutates the provided *Responder in some way.
// A ResponderOptFn is used when constructing a new Responder.
type ResponderOptFn func(*Responder)

// WithContactErrMsg sets the error message to use for error Flashes.
//
// We recommend using session.ContactUsErr as a template.
func WithContactErrMsg(msg string) ResponderOptFn {
	return func(d *Responder) {
		d.contactErrMsg = msg
	}
}

// WithLogger sets the provided implementation of Logger in order to log all statements through it.
//
// If no Logger is provided through this option, one writing to [log/slog.Default] is configured.
func WithLogger(log logger.Logger) ResponderOptFn {
	return func(d *Responder) {
		d.logger = log
	}
}

// WithRootUrl sets the provided URL after parsing it into a *url.URL to use for redirecting.
//
// NOTE: If u fails parsing by url.ParseRequestURI, the root URL becomes https://example.com
func WithRootUrl(u string) ResponderOptFn {
	good, err := url.ParseRequestURI(u)
	if err != nil {
		good, _ = url.ParseRequestURI("https://example.com")
	}

	return func(d *Responder) {
		d.rootUrl = good
	}
}
