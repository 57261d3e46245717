package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Google performs the OAuth 2.0 authorization code flow with Google as the identity provider.
type Google struct {
	config  *oauth2.Config
	options []option.ClientOption
}

// A GoogleOpt configures *Google.
type GoogleOpt func(*Google)

// WithEndpoints replaces Google's authorization, token and API endpoints,
// e.g., to point at a fake.
func WithEndpoints(authURL, tokenURL, apiURL string) GoogleOpt {
	return func(g *Google) {
		g.config.Endpoint = oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		}
		g.options = append(g.options, option.WithEndpoint(apiURL))
	}
}

// NewGoogle constructs *Google for the OAuth client identified by clientID and secret.
// Google sends agents back to redirectURL.
func NewGoogle(clientID, secret, redirectURL string, opts ...GoogleOpt) (*Google, error) {
	if clientID == "" || secret == "" || redirectURL == "" {
		return nil, fmt.Errorf(`%w: config cannot be ""`, ErrBadConfig)
	}

	g := &Google{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: secret,
			Endpoint:     google.Endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{goauth2.UserinfoEmailScope, goauth2.UserinfoProfileScope},
		},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// AuthCodeURL returns the URL at Google to send an agent to, carrying state.
func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the code Google sent back for a token.
func (g *Google) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: no code", ErrNotValid)
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchanging code: %s", ErrUnexpected, err)
	}

	return token, nil
}

// FetchUser retrieves the user Google vouches for with token.
//
// Users whose email Google has not verified return ErrNotValid.
func (g *Google) FetchUser(ctx context.Context, token *oauth2.Token) (*goauth2.Userinfo, error) {
	opts := append([]option.ClientOption{option.WithTokenSource(g.config.TokenSource(ctx, token))}, g.options...)
	service, err := goauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnexpected, err)
	}

	user, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: fetching userinfo: %s", ErrUnexpected, err)
	}

	if user.Email == "" || (user.VerifiedEmail != nil && !*user.VerifiedEmail) {
		return nil, fmt.Errorf("%w: email %q not verified", ErrNotValid, user.Email)
	}

	return user, nil
}
