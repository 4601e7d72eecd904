package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"authcore/internal/auth"
)

const maxProfileBytes = 1 << 20

// FieldMapping locates identity fields in a profile document using
// gjson paths. Name paths are tried in order.
type FieldMapping struct {
	Subject string
	Email   string
	Name    []string
}

// Endpoints are the provider URLs a login touches.
type Endpoints struct {
	AuthURL    string
	TokenURL   string
	ProfileURL string
}

// Options configures an OAuth2 provider.
type Options struct {
	Name         string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	Endpoints    Endpoints
	Fields       FieldMapping
	PKCE         bool

	// HTTPClient is used for token and profile calls. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client
}

// OAuth2 is the shared authorization-code implementation. Concrete
// providers differ only in endpoints and field mapping.
type OAuth2 struct {
	name       string
	config     *oauth2.Config
	profileURL string
	fields     FieldMapping
	pkce       bool
	client     *http.Client
}

func NewOAuth2(o Options) (*OAuth2, error) {
	if o.Name == "" || o.ClientID == "" || o.RedirectURL == "" {
		return nil, errors.New("oauth provider config missing required fields")
	}
	if o.Endpoints.AuthURL == "" || o.Endpoints.TokenURL == "" || o.Endpoints.ProfileURL == "" {
		return nil, fmt.Errorf("%s: endpoints are required", o.Name)
	}
	if o.Fields.Subject == "" || o.Fields.Email == "" {
		return nil, fmt.Errorf("%s: subject and email field paths are required", o.Name)
	}

	client := o.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return &OAuth2{
		name: o.Name,
		config: &oauth2.Config{
			ClientID:     o.ClientID,
			ClientSecret: o.ClientSecret,
			RedirectURL:  o.RedirectURL,
			Scopes:       o.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   o.Endpoints.AuthURL,
				TokenURL:  o.Endpoints.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		profileURL: o.Endpoints.ProfileURL,
		fields:     o.Fields,
		pkce:       o.PKCE,
		client:     client,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *OAuth2) Name() string {
	return p.name
}

func (p *OAuth2) UsesPKCE() bool {
	return p.pkce
}

// AuthCodeURL builds the OAuth authorization URL, with PKCE parameters
// when a challenge is given.
func (p *OAuth2) AuthCodeURL(state string, codeChallenge string) string {
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	if codeChallenge != "" {
		opts = append(opts,
			oauth2.SetAuthURLParam("code_challenge", codeChallenge),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		)
	}
	return p.config.AuthCodeURL(state, opts...)
}

func (p *OAuth2) ExchangeCode(ctx context.Context, code string, codeVerifier string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%s token exchange failed: empty authorization code", p.name)
	}

	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	tok, err := p.config.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s token exchange failed: %w", p.name, err)
	}
	return tok, nil
}

func (p *OAuth2) FetchProfile(ctx context.Context, token *oauth2.Token) ([]byte, error) {
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("%s profile fetch: missing access token", p.name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s profile request: %w", p.name, err)
	}
	req.Header.Set("Accept", "application/json")
	token.SetAuthHeader(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s profile fetch failed: %w", p.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return nil, fmt.Errorf("%s profile read failed: %w", p.name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s profile fetch failed: status %d", p.name, resp.StatusCode)
	}
	return body, nil
}

func (p *OAuth2) Normalize(raw []byte) (*auth.Identity, error) {
	return NormalizeProfile(p.name, raw, p.fields)
}

// NormalizeProfile extracts an Identity from a JSON profile. Subject and
// email are required. A missing display name falls back to the local
// part of the email.
func NormalizeProfile(providerName string, raw []byte, fields FieldMapping) (*auth.Identity, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%s profile is not valid json", providerName)
	}

	subject := gjson.GetBytes(raw, fields.Subject).String()
	email := strings.TrimSpace(gjson.GetBytes(raw, fields.Email).String())
	if subject == "" || email == "" {
		return nil, fmt.Errorf("%s profile missing required fields", providerName)
	}

	var name string
	for _, path := range fields.Name {
		if name = strings.TrimSpace(gjson.GetBytes(raw, path).String()); name != "" {
			break
		}
	}
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	return &auth.Identity{
		Provider:       providerName,
		ProviderUserID: subject,
		Email:          email,
		Name:           name,
	}, nil
}
