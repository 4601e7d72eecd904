package auth

// Identity represents a normalized external authentication identity
// returned by an OAuth provider. It contains facts only, no decisions.
type Identity struct {
	Provider       string // e.g. "google", "kakao"
	ProviderUserID string // provider-scoped unique user identifier
	Email          string // email returned by provider, used to match local users
	Name           string // display name for newly created users
}
