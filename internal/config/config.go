package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort  string `env:"APP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseDSN    string `env:"DATABASE_DSN,required,notEmpty"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required,notEmpty"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`

	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"true"`

	LoginRatePerMinute float64 `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	LoginRateBurst     int     `env:"LOGIN_RATE_BURST" envDefault:"5"`

	Google   Provider `envPrefix:"GOOGLE_"`
	Kakao    Provider `envPrefix:"KAKAO_"`
	Keycloak Provider `envPrefix:"KEYCLOAK_"`
}

// Provider holds one identity provider's client registration.
// Empty endpoints fall back to the provider's well-known defaults.
type Provider struct {
	ClientID        string `env:"CLIENT_ID"`
	ClientSecret    string `env:"CLIENT_SECRET"`
	RedirectURI     string `env:"REDIRECT_URI"`
	AuthEndpoint    string `env:"AUTH_ENDPOINT"`
	TokenEndpoint   string `env:"TOKEN_ENDPOINT"`
	ProfileEndpoint string `env:"PROFILE_ENDPOINT"`
	PKCE            bool   `env:"PKCE"`

	// Issuer is only used by OIDC discovery providers.
	Issuer string `env:"ISSUER"`
}

// Enabled reports whether the provider was configured at all.
func (p Provider) Enabled() bool {
	return p.ClientID != ""
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("config: ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("config: token ttls must be positive")
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		return errors.New("config: ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL")
	}
	if c.ProviderTimeout <= 0 {
		return errors.New("config: PROVIDER_TIMEOUT must be positive")
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	for name, p := range map[string]Provider{"GOOGLE": c.Google, "KAKAO": c.Kakao, "KEYCLOAK": c.Keycloak} {
		if p.Enabled() && p.RedirectURI == "" {
			return fmt.Errorf("config: %s_REDIRECT_URI is required when %s_CLIENT_ID is set", name, name)
		}
	}
	if c.Keycloak.Enabled() && c.Keycloak.Issuer == "" {
		return errors.New("config: KEYCLOAK_ISSUER is required when KEYCLOAK_CLIENT_ID is set")
	}
	return nil
}
