package kakao

import "authcore/internal/auth/provider"

const providerName = "kakao"

const (
	DefaultAuthURL    = "https://kauth.kakao.com/oauth/authorize"
	DefaultTokenURL   = "https://kauth.kakao.com/oauth/token"
	DefaultProfileURL = "https://kapi.kakao.com/v2/user/me"
)

// Fields is the /v2/user/me layout. The id is numeric and the email
// and nickname sit under kakao_account.
var Fields = provider.FieldMapping{
	Subject: "id",
	Email:   "kakao_account.email",
	Name:    []string{"kakao_account.profile.nickname", "properties.nickname"},
}

func New(o provider.Options) (*provider.OAuth2, error) {
	o.Name = providerName
	o.Fields = Fields
	o.Scopes = []string{"account_email", "profile_nickname"}
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
