package logger

import (
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/xy-planning-network/trailhead"
)

// A SentryLogger writes logs through another Logger
// and ships warnings and errors to Sentry.
type SentryLogger struct {
	l SkipLogger
}

// NewSentryLogger constructs a SentryLogger based off the provided SkipLogger.
// If Sentry cannot be initialized, l is returned.
func NewSentryLogger(env trailhead.Environment, l SkipLogger, dsn string) Logger {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:          dsn,
		Environment:  env.String(),
		IgnoreErrors: []string{"write: broken pipe"},
	})
	if err != nil {
		l.Error("unable to init Sentry", &LogContext{Error: err})
		return l
	}

	return &SentryLogger{l: l.AddSkip(1 + l.Skip())}
}

// Debug writes a debug log.
func (sl *SentryLogger) Debug(msg string, ctx *LogContext) { sl.l.Debug(msg, ctx) }

// Error writes an error log and sends it to Sentry.
func (sl *SentryLogger) Error(msg string, ctx *LogContext) {
	sl.l.Error(msg, ctx)
	send(sentry.LevelError, ctx)
}

// Info writes an info log.
func (sl *SentryLogger) Info(msg string, ctx *LogContext) { sl.l.Info(msg, ctx) }

// Warn writes a warning log and sends it to Sentry.
func (sl *SentryLogger) Warn(msg string, ctx *LogContext) {
	sl.l.Warn(msg, ctx)
	send(sentry.LevelWarning, ctx)
}

// send ships the LogContext.Error to Sentry,
// including any additional data from LogContext.
func send(level sentry.Level, ctx *LogContext) {
	if ctx == nil || ctx.Error == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		if ctx.User != nil {
			scope.SetUser(sentry.User{
				Email: ctx.User.GetEmail(),
				ID:    fmt.Sprint(ctx.User.GetID()),
			})
		}

		if ctx.Request != nil {
			scope.SetRequest(ctx.Request)
		}

		if ctx.Data != nil {
			scope.SetExtra("data", ctx.Data)
		}

		if ctx.Caller != "" {
			scope.SetTag("caller", ctx.Caller)
		}

		scope.SetLevel(level)
		sentry.CaptureException(ctx.Error)
	})
}
