package google

import (
	"github.com/coreos/go-oidc/v3/oidc"

	"authcore/internal/auth/provider"
)

const providerName = "google"

// Default endpoints; configuration may override any of them.
const (
	DefaultAuthURL    = "https://accounts.google.com/o/oauth2/auth"
	DefaultTokenURL   = "https://oauth2.googleapis.com/token"
	DefaultProfileURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// Fields is the userinfo layout: {"sub": ..., "email": ..., "name": ...}.
var Fields = provider.FieldMapping{
	Subject: "sub",
	Email:   "email",
	Name:    []string{"name", "given_name"},
}

// New builds the Google provider. Name, scopes and field mapping are
// fixed; empty endpoints take the Google defaults.
func New(o provider.Options) (*provider.OAuth2, error) {
	o.Name = providerName
	o.Fields = Fields
	o.Scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	if o.Endpoints.AuthURL == "" {
		o.Endpoints.AuthURL = DefaultAuthURL
	}
	if o.Endpoints.TokenURL == "" {
		o.Endpoints.TokenURL = DefaultTokenURL
	}
	if o.Endpoints.ProfileURL == "" {
		o.Endpoints.ProfileURL = DefaultProfileURL
	}
	return provider.NewOAuth2(o)
}
