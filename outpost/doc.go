/*
Package outpost initializes and manages a trailhead app with sane defaults.

# Outpost

The main entrypoint to package outpost is the [Outpost] type,
constructed with [New] and configured further with any [OutpostOption].

[New] builds sessions, session tokens, accounts, the request gate, the responder
and the middleware stack every request passes through:

	RequestID -> InjectIPAddress -> LogRequest -> ReportPanic -> ForceHTTPS -> CORS
	-> InjectSession -> GateRequests -> CurrentUser -> InjectAppProps

and then registers the pages and APIs of package web.
Requests the gate redirects never reach a route.

[*Outpost.Guide] begins the web server.
By default, [*Outpost.Guide] listens on [DefaultPort] (:3000).
Stop that web server with [*Outpost.Shutdown],
call [*Outpost.Cancel],
or send a signal [*Outpost.Guide] listens for.

# Configuration

A developer configures a trailhead app through environment variables
and by passing an [OutpostOption] to [New].
For environment variables, required values can be discovered by inspecting the errors [New] returns.

Environment variables ought to be set in a file called ".env"
found at the same directory the application is executed from.

Here are the available environment variables.
  - APP_TITLE: a short title for the application, also naming the session cookie; default: Trailhead
  - BASE_URL: the base URL the application runs on; default: http://localhost:3000
  - CONTACT_US_EMAIL: the email address end users can contact us at; default: hello@xyplanningnetwork.com
  - CORS_ORIGIN: the one origin allowed to make cross-origin requests; default: none
  - ENVIRONMENT: the environment the application is running in; cf. [trailhead.Environment]
  - GATE_CONFIG_FILE: a YAML file of gate rules and path matcher, cf. [gate.LoadConfig]; default: [gate.DefaultConfig]
  - GOOGLE_CLIENT_ID: the OAuth client ID enabling Google sign in
  - GOOGLE_CLIENT_SECRET: the OAuth client secret enabling Google sign in
  - LOG_JSON: whether to write logs as JSON in development; always true in other environments
  - LOG_LEVEL: the level at which to begin logging; default: INFO
  - PORT: the port the application should listen on; default: :3000
  - REDIS_URL: a redis:// URL; when set, sessions and idempotent responses are stored in Redis
  - REDIS_PASSWORD: the password for authenticating to Redis, replacing any in REDIS_URL
  - SENTRY_DSN: the DSN errors and panics are reported to
  - SERVER_IDLE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for idling between requests when using keep-alives; default: 120s
  - SERVER_READ_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for reading HTTP requests; default: 5s
  - SERVER_WRITE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for writing HTTP responses; default: 5s
  - SESSION_AUTH_KEY: a hex-encoded key for authenticating cookies; cf. [encoding/hex]
  - SESSION_ENCRYPTION_KEY: a hex-encoded key for encrypting cookies; cf. [encoding/hex]
  - SESSION_TOKEN_KEY: the key signing session tokens
  - SESSION_TOKEN_TTL: how long a session token lasts, as understood by [time.ParseDuration]; default: 30 days

The SESSION_* keys are required except in environments allowing service stubs,
where random keys are generated at startup.
*/
package outpost
