/*
The resp package provides a high-level API for responding to HTTP requests
with an easy way to configure the responses application-wide.

resp provides three main ways of responding to an HTTP request:
  - rendering JSON data
  - redirecting
  - writing plain text, typically for errors

Calling code supplies additional data, structure and so forth through [Fn] functional options:

	d.Json(w, r, resp.Data(payload), resp.Flashes())
	d.Redirect(w, r, resp.Url("/protected"), resp.Success(session.LoggedInMsg))
*/
package resp
