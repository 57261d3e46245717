package logger

import (
	"bytes"
	"encoding"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"

	"github.com/xy-planning-network/trailhead"
)

const logContextKey = "log_context"

var (
	_ encoding.TextMarshaler = LogContext{}
	_ slog.LogValuer         = LogContext{}
)

// maskedFields never appear in logs.
var maskedFields = []string{"password", "csrfToken"}

// LogUser is the interface exposing attributes of a user to a LogContext.
type LogUser interface {
	// GetID retrieves the application's identifier for a user.
	GetID() uint

	// GetEmail retrieves the email address of the user.
	GetEmail() string
}

// A LogContext provides additional information for a [Logger] method
// that cannot be tersely captured in the message itself.
type LogContext struct {
	// Caller names the call site of the process that spawned a goroutine doing the logging.
	Caller string

	// Data is any information pertinent at the time of the logging event.
	Data map[string]any

	// Error is the error that may or may not have instigated a logging event.
	Error error

	// Request is the *http.Request that may or may not have been open during the logging event.
	Request *http.Request

	// User is the user whose session was active during the logging event.
	User LogUser
}

// LogValue implements [log/slog.LogValuer].
func (lc LogContext) LogValue() slog.Value {
	fields := lc.fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}

	return slog.GroupValue(attrs...)
}

// MarshalText converts LogContext into a JSON representation,
// eliminating zero-value fields or fields not requiring logging.
//
// MarshalText implements [encoding.TextMarshaler].
func (lc LogContext) MarshalText() ([]byte, error) {
	return json.Marshal(lc.fields())
}

// String stringifies LogContext as a JSON representation of it.
func (lc LogContext) String() string {
	b, err := lc.MarshalText()
	if err != nil {
		return ""
	}

	return string(b)
}

func (lc LogContext) fields() map[string]any {
	m := make(map[string]any)
	if lc.Caller != "" {
		m["caller"] = lc.Caller
	}

	if lc.Data != nil {
		m["data"] = lc.Data
	}

	if lc.Error != nil {
		m["error"] = lc.Error.Error()
	}

	if lc.Request != nil {
		m["request"] = requestFields(lc.Request)
	}

	if lc.User != nil {
		u := make(map[string]any)
		if id := lc.User.GetID(); id != 0 {
			u["id"] = id
		}
		if email := lc.User.GetEmail(); email != "" {
			u["email"] = email
		}
		if len(u) > 0 {
			m["user"] = u
		}
	}

	return m
}

// requestFields summarizes r.
// A JSON body is peeked at and restored; sensitive fields are masked.
func requestFields(r *http.Request) map[string]any {
	m := map[string]any{
		"method": r.Method,
		"url":    r.URL.String(),
		"header": r.Header,
	}

	if r.Header.Get("Content-Type") == "application/json" && r.Body != nil {
		j := make(map[string]any)
		b := new(bytes.Buffer)
		tee := io.TeeReader(r.Body, b)
		if err := json.NewDecoder(tee).Decode(&j); err == nil {
			for _, f := range maskedFields {
				if _, ok := j[f]; ok {
					j[f] = trailhead.LogMaskVal
				}
			}
			m["json"] = j
		}

		r.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(b, r.Body), r.Body}
	}

	if r.Form != nil {
		form := make(url.Values, len(r.Form))
		for k, v := range r.Form {
			form[k] = v
		}
		for _, f := range maskedFields {
			trailhead.Mask(form, f)
		}
		m["form"] = form
	}

	return m
}
