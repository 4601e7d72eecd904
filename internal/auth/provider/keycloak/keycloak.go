package keycloak

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"authcore/internal/auth/provider"
	"authcore/internal/logger"
)

const providerName = "keycloak"

var Fields = provider.FieldMapping{
	Subject: "sub",
	Email:   "email",
	Name:    []string{"name", "preferred_username"},
}

// Provider implements OAuth + OIDC authentication against Keycloak.
// It returns identity facts only; no user/session decisions are made here.
type Provider struct {
	*provider.OAuth2

	oidc   *oidc.Provider
	client *http.Client
}

// New initializes a Keycloak OIDC provider using discovery.
// issuer must be the realm issuer URL, e.g.
// http://localhost:8081/realms/auth-service
//
// A non-empty AuthURL in o replaces the discovered one, for setups
// where the browser reaches Keycloak on a different host than the
// backend does.
func New(ctx context.Context, issuer string, o provider.Options) (*Provider, error) {
	if issuer == "" {
		return nil, errors.New("keycloak oauth config missing issuer")
	}

	client := o.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	oidcProvider, err := oidc.NewProvider(oidc.ClientContext(ctx, client), issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init keycloak oidc provider: %w", err)
	}

	ep := oidcProvider.Endpoint()
	if o.Endpoints.AuthURL == "" {
		o.Endpoints.AuthURL = ep.AuthURL
	}
	if o.Endpoints.TokenURL == "" {
		o.Endpoints.TokenURL = ep.TokenURL
	}
	if o.Endpoints.ProfileURL == "" {
		o.Endpoints.ProfileURL = oidcProvider.UserInfoEndpoint()
	}

	o.Name = providerName
	o.Fields = Fields
	o.Scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	o.HTTPClient = client

	base, err := provider.NewOAuth2(o)
	if err != nil {
		return nil, err
	}

	logger.Info("keycloak oidc discovered", map[string]any{
		"issuer":   issuer,
		"userinfo": o.Endpoints.ProfileURL,
	})

	return &Provider{OAuth2: base, oidc: oidcProvider, client: client}, nil
}

// FetchProfile reads the discovered userinfo endpoint through go-oidc.
func (p *Provider) FetchProfile(ctx context.Context, token *oauth2.Token) ([]byte, error) {
	if token == nil || token.AccessToken == "" {
		return nil, errors.New("keycloak profile fetch: missing access token")
	}

	info, err := p.oidc.UserInfo(oidc.ClientContext(ctx, p.client), oauth2.StaticTokenSource(token))
	if err != nil {
		return nil, fmt.Errorf("keycloak userinfo failed: %w", err)
	}

	var raw json.RawMessage
	if err := info.Claims(&raw); err != nil {
		return nil, fmt.Errorf("keycloak userinfo claims parse failed: %w", err)
	}
	return raw, nil
}
