/*
Package gate decides, before any routing happens, whether a request may continue
to its handler or must be redirected.

A [Gate] is built once from an immutable [Config] and then consulted for every request.
The [Config] carries two parts:

  - [Rules], the ordered access policy evaluated by [*Gate.Evaluate]
  - [Matcher], the filter naming which paths the policy runs against at all

[*Gate.Evaluate] applies the rules in order, first match wins:

 1. a path beginning with the auth API prefix (/api/auth) is allowed
 2. the root path (/) is allowed
 3. without a session, a protected path (/protected) redirects to sign in (/auth/signin)
 4. with a session, an auth-entry path (/auth/signin, /auth/signup) redirects home (/)
 5. everything else is allowed

Whether a request has a session is not something a Gate knows.
A [SessionVerifier] answers that question, and [*Gate.Decide] asks it only when the answer matters.
A verifier that cannot answer must answer false; [Fallible] adapts verifiers returning errors to that rule.
*/
package gate
