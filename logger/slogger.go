package logger

import (
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/xy-planning-network/trailhead"
)

// NewSlogger constructs the [*log/slog.Logger] for kind,
// either [trailhead.AppLogKind] or [trailhead.HTTPLogKind].
//
// App logs include their source and, when not written as JSON, a colorized level.
// HTTP logs drop both level and message; the request record is the log.
func NewSlogger(kind slog.Value, useJSON bool, lvl slog.Leveler, out io.Writer) *slog.Logger {
	isHTTP := kind.String() == trailhead.HTTPLogKind.String()

	var handler slog.Handler
	switch {
	case isHTTP && useJSON:
		handler = slog.NewJSONHandler(out, httpHandlerOptions())

	case isHTTP && !useJSON:
		handler = slog.NewTextHandler(out, httpHandlerOptions())

	case useJSON:
		opts := &slog.HandlerOptions{
			AddSource:   true,
			Level:       lvl,
			ReplaceAttr: TruncSourceAttr,
		}
		handler = slog.NewJSONHandler(out, opts)

	default:
		opts := &tint.Options{
			AddSource:  true,
			Level:      lvl,
			NoColor:    color.NoColor,
			TimeFormat: "2006-01-02 15:04:05.000",
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a = ColorizeLevel(groups, a)
				return TruncSourceAttr(groups, a)
			},
		}
		handler = tint.NewHandler(out, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{{Key: trailhead.LogKindKey, Value: kind}})

	return slog.New(handler)
}

func httpHandlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			a = DeleteLevelAttr(groups, a)
			return DeleteMessageAttr(groups, a)
		},
	}
}
