package trailhead

import (
	"log/slog"
	"net/url"
	"strings"
)

const (
	LogKindKey = "kind"
	LogMaskVal = "xxxxxx"
)

var (
	AppLogKind  = slog.StringValue("app")
	HTTPLogKind = slog.StringValue("http")

	// MaskedLogValue is a convenience [log/slog.Value]
	// to be used in implementations of [log/slog.LogValuer]
	// to hide sensitive data from log messages.
	MaskedLogValue = slog.StringValue(LogMaskVal)
)

// NewLogLevel translates val into a [log/slog.Level],
// defaulting to [log/slog.LevelInfo] for unknown values.
func NewLogLevel(val string) slog.Level {
	switch strings.ToUpper(val) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "FATAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Mask replaces every value paired to key in vals with a single LogMaskVal.
func Mask(vals url.Values, key string) {
	if _, ok := vals[key]; !ok {
		return
	}

	vals[key] = []string{LogMaskVal}
}
