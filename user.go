package trailhead

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// AccessState is a string representation of the broadest, general access
// a User has to a trailhead application.
type AccessState string

const (
	AccessGranted AccessState = "granted"
	AccessRevoked AccessState = "revoked"
)

// String stringifies the AccessState.
//
// String implements fmt.Stringer.
func (as AccessState) String() string { return string(as) }

// Valid asserts the AccessState is one of the known values.
func (as AccessState) Valid() error {
	switch as {
	case AccessGranted, AccessRevoked:
		return nil
	default:
		return ErrNotValid
	}
}

// A User is the core entity that interacts with a trailhead application.
//
// An agent's HTTP requests are authenticated first by a specific request
// with email & password data matching credentials held for a User,
// or by an identity provider vouching for the User's email.
// Upon a match, a signed session token is issued and stored in a cookie.
// Further requests are authenticated by verifying that token.
type User struct {
	ID          uint        `json:"id"`
	ExternalID  uuid.UUID   `json:"externalId"`
	AccessState AccessState `json:"accessState"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Password    []byte      `json:"-"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Exists asserts whether the User has been stored.
func (u User) Exists() bool { return u.ID != 0 }

// HasAccess asserts whether the User's properties give it general
// access to the trailhead application.
func (u User) HasAccess() bool { return u.AccessState == AccessGranted }

// HomePath returns the relative URL path designated
// as the default resource in the trailhead application
// they can access.
func (u User) HomePath() string {
	if !u.HasAccess() {
		return "/auth/signin"
	}

	return "/protected"
}

// GetID returns the User's ID.
func (u User) GetID() uint { return u.ID }

// GetEmail returns the User's email.
func (u User) GetEmail() string { return u.Email }

// LogValue implements [log/slog.LogValuer], leaving out credentials.
func (u User) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("id", uint64(u.ID)),
		slog.String("email", u.Email),
	)
}
