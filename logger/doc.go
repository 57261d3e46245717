/*
Package logger provides logging functionality to a trailhead app by defining the required behavior in [Logger]
and providing an implementation of it backed by [log/slog] with [AppLogger].

# Overview

A [Logger] emits messages at a level of importance together with an optional [*LogContext].
The [*log/slog.Logger] an [AppLogger] wraps decides which levels are emitted and in what format.
[NewSlogger] constructs one of those for each kind of log a trailhead app writes:
application logs and HTTP access logs.

Application logs look like this in development:

	time=2026-04-28T15:55:21.000-05:00 level=DEBUG source=web/auth.go:43 msg="such fun!" kind=app log_context.user.id=1

And like this everywhere else:

	{"time":"2026-04-28T15:55:21.000-05:00","level":"DEBUG","source":{"function":"...","file":"web/auth.go","line":43},"msg":"such fun!","kind":"app","log_context":{"user":{"id":1}}}

# SentryLogger

When a Sentry DSN is available, wrap a [Logger] with [NewSentryLogger]
so warnings and errors carrying a [LogContext.Error] are also shipped to Sentry.
*/
package logger
