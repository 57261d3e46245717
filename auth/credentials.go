package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xy-planning-network/trailhead"
)

// CredentialsSignin is the error code reported to clients whose credentials did not match.
const CredentialsSignin = "CredentialsSignin"

// An Authenticator matches an email and password to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (trailhead.User, error)
}

// A SignInRequest carries what an agent submits to sign in with credentials.
type SignInRequest struct {
	Email     string `json:"email" schema:"email" validate:"required,email"`
	Password  string `json:"password" schema:"password" validate:"required"`
	CSRFToken string `json:"csrfToken" schema:"csrfToken" validate:"required"`
}

// Credentials signs users in with an email and password.
type Credentials struct {
	accounts Authenticator
	tokens   *Tokens
}

// NewCredentials constructs *Credentials.
func NewCredentials(accounts Authenticator, tokens *Tokens) (*Credentials, error) {
	if accounts == nil || tokens == nil {
		return nil, fmt.Errorf("%w: accounts and tokens are required", ErrBadConfig)
	}

	return &Credentials{accounts: accounts, tokens: tokens}, nil
}

// SignIn authenticates req and, on a match, writes a session token cookie to w.
//
// Errors from the Authenticator are returned as is.
func (c *Credentials) SignIn(ctx context.Context, w http.ResponseWriter, req SignInRequest) (trailhead.User, error) {
	u, err := c.accounts.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return trailhead.User{}, err
	}

	if err := c.tokens.SetCookie(w, u); err != nil {
		return trailhead.User{}, err
	}

	return u, nil
}
