/*
The middleware package defines what a middleware is in trailhead and a set of basic middlewares.

The available middlewares are:
  - CORS
  - CurrentUser
  - ForceHTTPS
  - GateRequests
  - Idempotent
  - InjectAppProps
  - InjectIPAddress
  - InjectSession
  - LogRequest
  - RateLimit
  - ReportPanic
  - RequestID

Due to the amount of configuration required, middleware does not provide a default middleware chain.
Package outpost assembles one; otherwise, the following can be copy-pasted:

	adpts := []middleware.Adapter{
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(httpLogger),
		middleware.ReportPanic(env),
		middleware.ForceHTTPS(env),
		middleware.InjectSession(sessionStore),
		middleware.GateRequests(g, tokens, logger),
		middleware.CurrentUser(tokens, accounts.Find),
	}
*/
package middleware
