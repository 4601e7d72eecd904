package provider

import (
	"context"

	"golang.org/x/oauth2"

	"authcore/internal/auth"
)

// OAuthProvider defines the contract every external auth provider
// must implement. Implementations return identity facts only and
// must not perform user creation, linking, or session management.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google", "kakao").
	Name() string

	// AuthCodeURL returns the OAuth authorization URL.
	// State and PKCE parameters are provided by the caller; an empty
	// challenge omits PKCE.
	AuthCodeURL(state string, codeChallenge string) string

	// UsesPKCE reports whether the login flow should send a code challenge.
	UsesPKCE() bool

	// ExchangeCode trades the authorization code for a provider token.
	ExchangeCode(ctx context.Context, code string, codeVerifier string) (*oauth2.Token, error)

	// FetchProfile returns the raw profile document for the token.
	FetchProfile(ctx context.Context, token *oauth2.Token) ([]byte, error)

	// Normalize maps the provider's profile shape onto an Identity.
	Normalize(raw []byte) (*auth.Identity, error)
}
