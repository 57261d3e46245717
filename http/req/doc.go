/*
Package req parses payloads sent with an HTTP request into a pointer to a struct.

A Parser supports JSON-encoded bodies and form-encoded bodies
(or any url.Values, e.g. query params).
The struct ought to carry "json" or "schema" tags for matching keys in the payload to its fields
and "validate" tags for the rules its data must meet.

Errors decoding or validating a payload translate to trailhead sentinel errors,
so handlers can treat issues the same way across encodings:
  - trailhead.ErrBadAny: calling code passed something other than a pointer to a struct
  - trailhead.ErrBadFormat: the payload could not be decoded
  - trailhead.ErrNotValid: the payload decoded but broke a rule; errors.As into ValidationErrors for details
*/
package req
