/*
Package web holds the HTTP handlers of the trailhead starter app.

Pages answer with JSON payloads a client renders:
  - GET / links to the counter demo
  - GET /protected greets the current user
  - GET /auth/signin carries a CSRF token for the sign-in form
  - GET /auth/signup describes the sign-up form

The auth API lives under /api/auth and handles registering accounts, credential and Google sign-in,
reading the current session and signing out.
The counter demo under /api/counter keeps its state in the visitor's session.

Whether an agent may reach a page at all is decided before routing by the request gate;
handlers only deal with what is left, e.g., a token whose user no longer exists.
*/
package web
