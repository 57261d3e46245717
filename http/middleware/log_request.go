package middleware

import (
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/xy-planning-network/trailhead"
)

// A LogRequestRecord describes one request served,
// as logged by LogRequest.
type LogRequestRecord struct {
	BodySize       int64  `json:"bodySize"`
	Duration       int64  `json:"duration"`
	Host           string `json:"host"`
	ID             string `json:"id"`
	IPAddr         string `json:"ipAddr"`
	Method         string `json:"method"`
	Path           string `json:"path"`
	Protocol       string `json:"protocol"`
	Referrer       string `json:"referrer"`
	ReqContentType string `json:"reqContentType"`
	Scheme         string `json:"scheme"`
	Status         int    `json:"status"`
	URI            string `json:"uri"`
	UserAgent      string `json:"userAgent"`
}

// attrs lists the fields of lrr as slog attributes,
// keyed like its JSON encoding.
func (lrr LogRequestRecord) attrs() []slog.Attr {
	return []slog.Attr{
		slog.Int64("bodySize", lrr.BodySize),
		slog.Int64("duration", lrr.Duration),
		slog.String("host", lrr.Host),
		slog.String("id", lrr.ID),
		slog.String("ipAddr", lrr.IPAddr),
		slog.String("method", lrr.Method),
		slog.String("path", lrr.Path),
		slog.String("protocol", lrr.Protocol),
		slog.String("referrer", lrr.Referrer),
		slog.String("reqContentType", lrr.ReqContentType),
		slog.String("scheme", lrr.Scheme),
		slog.Int("status", lrr.Status),
		slog.String("uri", lrr.URI),
		slog.String("userAgent", lrr.UserAgent),
	}
}

// LogRequest logs a LogRequestRecord for every request once it has been served,
// using the *slog.Logger.
// Duration is in milliseconds.
//
// LogRequest masks the values for the following query params:
//   - password
//
// If l is nil, NoopAdapter returns and this middleware does nothing.
func LogRequest(l *slog.Logger) Adapter {
	if l == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(h, w, r)

			uri := r.URL.Path
			q := r.URL.Query()
			trailhead.Mask(q, "password")
			if query := q.Encode(); query != "" {
				uri += "?" + query
			}

			id, _ := r.Context().Value(trailhead.RequestIDKey).(string)
			ip, _ := r.Context().Value(trailhead.IpAddrKey).(string)

			lrr := LogRequestRecord{
				BodySize:       m.Written,
				Duration:       m.Duration.Milliseconds(),
				Host:           r.Host,
				ID:             id,
				IPAddr:         ip,
				Method:         r.Method,
				Path:           r.URL.Path,
				Protocol:       r.Proto,
				Referrer:       r.Referer(),
				ReqContentType: r.Header.Get("Content-Type"),
				Scheme:         scheme(r),
				Status:         m.Code,
				URI:            uri,
				UserAgent:      r.UserAgent(),
			}

			l.LogAttrs(r.Context(), slog.LevelInfo, "", lrr.attrs()...)
		})
	}
}
