/*
Package account manages the user records a trailhead app signs agents in as.

Records themselves live behind [Store].
The [*Stub] implementation keeps them in memory
and is only suitable for environments allowing stubbed services;
cf. [github.com/xy-planning-network/trailhead.Environment.CanUseServiceStub].

[*Service] layers registration and credential checks on top of a [Store],
hashing passwords with bcrypt.
*/
package account
