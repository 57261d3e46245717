package logger

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// knownFrames are the frames between a caller and runtime.Callers in AppLogger.log.
const knownFrames = 3

// The Logger interface defines the levels logging can occur at.
type Logger interface {
	Debug(msg string, ctx *LogContext)
	Error(msg string, ctx *LogContext)
	Info(msg string, ctx *LogContext)
	Warn(msg string, ctx *LogContext)
}

// The SkipLogger interface defines a Logger that scrolls back
// the number of frames provided in order to ascertain the call site.
type SkipLogger interface {
	AddSkip(i int) SkipLogger
	Skip() int
	Logger
}

// AppLogger implements Logger using a [*log/slog.Logger].
type AppLogger struct {
	skip int
	l    *slog.Logger
}

// New constructs an *AppLogger writing to l.
// If l is nil, [log/slog.Default] is used.
func New(l *slog.Logger) *AppLogger {
	if l == nil {
		l = slog.Default()
	}

	return &AppLogger{l: l}
}

// AddSkip replaces the current number of frames to scroll back
// when logging a message.
//
// Use Skip to get the current skip amount
// when needing to add to it with AddSkip.
func (l *AppLogger) AddSkip(i int) SkipLogger {
	newl := *l
	newl.skip = i
	return &newl
}

// Skip returns the current amount of frames to scroll back
// when logging a message.
func (l *AppLogger) Skip() int { return l.skip }

// Slogger exposes the underlying *slog.Logger.
func (l *AppLogger) Slogger() *slog.Logger { return l.l }

// Debug writes a debug log.
func (l *AppLogger) Debug(msg string, ctx *LogContext) { l.log(slog.LevelDebug, msg, ctx) }

// Error writes an error log.
func (l *AppLogger) Error(msg string, ctx *LogContext) { l.log(slog.LevelError, msg, ctx) }

// Info writes an info log.
func (l *AppLogger) Info(msg string, ctx *LogContext) { l.log(slog.LevelInfo, msg, ctx) }

// Warn writes a warning log.
func (l *AppLogger) Warn(msg string, ctx *LogContext) { l.log(slog.LevelWarn, msg, ctx) }

func (l *AppLogger) log(level slog.Level, msg string, ctx *LogContext) {
	c := context.Background()
	if ctx != nil && ctx.Request != nil {
		c = ctx.Request.Context()
	}

	if !l.l.Enabled(c, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(knownFrames+l.skip, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	if ctx != nil {
		r.AddAttrs(slog.Any(logContextKey, ctx))
	}

	_ = l.l.Handler().Handle(c, r)
}
