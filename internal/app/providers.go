package app

import (
	"context"
	"net/http"

	"authcore/internal/auth/provider"
	"authcore/internal/auth/provider/google"
	"authcore/internal/auth/provider/kakao"
	"authcore/internal/auth/provider/keycloak"
	"authcore/internal/config"
	"authcore/internal/logger"
)

func providerOptions(p config.Provider, client *http.Client) provider.Options {
	return provider.Options{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  p.RedirectURI,
		Endpoints: provider.Endpoints{
			AuthURL:    p.AuthEndpoint,
			TokenURL:   p.TokenEndpoint,
			ProfileURL: p.ProfileEndpoint,
		},
		PKCE:       p.PKCE,
		HTTPClient: client,
	}
}

// setupProviders registers every provider that has a client ID.
func setupProviders(ctx context.Context, cfg config.Config, client *http.Client) (*provider.Registry, error) {
	var list []provider.OAuthProvider

	if cfg.Google.Enabled() {
		p, err := google.New(providerOptions(cfg.Google, client))
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if cfg.Kakao.Enabled() {
		p, err := kakao.New(providerOptions(cfg.Kakao, client))
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if cfg.Keycloak.Enabled() {
		discoverCtx, cancel := context.WithTimeout(ctx, cfg.ProviderTimeout)
		defer cancel()
		p, err := keycloak.New(discoverCtx, cfg.Keycloak.Issuer, providerOptions(cfg.Keycloak, client))
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	registry, err := provider.NewRegistry(list...)
	if err != nil {
		return nil, err
	}

	logger.Info("oauth providers registered", map[string]any{
		"providers": registry.Names(),
	})
	return registry, nil
}
