/*
Package auth signs agents into a trailhead app and recognizes them afterwards.

# Tokens

A successful sign-in is rewarded with a session token:
an HS256-signed JWT naming the user, stored in an HttpOnly cookie.
[*Tokens] issues and verifies these.
[*Tokens.VerifySession] is what the request gate consults to decide whether a request has a session.

# Credentials

[*Credentials] checks an email and password against the app's accounts and issues a token on a match.

# Google

[*Google] performs the OAuth 2.0 authorization code flow against Google
and fetches the email Google vouches for.
*/
package auth
