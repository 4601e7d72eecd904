package auth

import "errors"

// Token verification failures. Callers distinguish them: an expired
// access token triggers refresh fallback, a revoked one does not.
var (
	ErrExpired           = errors.New("token expired")
	ErrMalformedOrForged = errors.New("token malformed or forged")
	ErrRevokedToken      = errors.New("token revoked")
)

// Session failures surfaced to the transport layer.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// Federation failures. Each one aborts the login attempt.
var (
	ErrUnknownProvider       = errors.New("unknown oauth provider")
	ErrProviderTokenExchange = errors.New("provider token exchange failed")
	ErrProviderProfileFetch  = errors.New("provider profile fetch failed")
	ErrProviderTimeout       = errors.New("provider request timed out")
)
