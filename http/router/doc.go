/*
Package router routes requests to the handlers of a trailhead app.

[*Router] utilizes [mux.Router] for its implementation,
and so functions as a thin wrapper around that package.

A [Router] leverages a standardized data model, a [Route], when registering how requests should be routed.
A path and an HTTP method comprise a [Route].
An implementation of [http.Handler] is the function called when a request matches a Route.
Before a request gets to a handler, though,
any middlewares added to the Route are called in the order they appear.

Middlewares passed to OnEveryRequest on a Router constructed with New run before routing.
That is where the request gate belongs:
it decides what happens to a path whether or not any Route matches it.
*/
package router
