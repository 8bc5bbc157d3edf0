package oauth

import "context"

// Profile is what a provider tells us about the person who just signed in.
type Profile struct {
	Provider       string
	ProviderUserID string
	DisplayName    string
	Email          string
	EmailVerified  bool
}

type Provider interface {
	Name() string
	AuthURL(state string) (string, error)
	ExchangeCode(ctx context.Context, code string) (*Profile, error)
}

// Config holds client credentials. The endpoint URLs are optional overrides
// of the provider's public endpoints.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
}
