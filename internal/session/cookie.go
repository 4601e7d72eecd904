package session

import (
	"net/http"
	"time"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// CookieOptions defines how token cookies are issued.
type CookieOptions struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if !o.HttpOnly {
		o.HttpOnly = true
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// SetPairCookies stores both tokens of a freshly issued pair.
func SetPairCookies(w http.ResponseWriter, pair *Pair, now time.Time, opts CookieOptions) {
	SetAccessCookie(w, pair.AccessToken, pair.AccessExpiresAt, now, opts)
	setCookie(w, RefreshCookieName, pair.RefreshToken, pair.RefreshExpiresAt, now, opts)
}

// SetAccessCookie replaces only the access token, e.g. after a refresh.
func SetAccessCookie(w http.ResponseWriter, token string, expiresAt, now time.Time, opts CookieOptions) {
	setCookie(w, AccessCookieName, token, expiresAt, now, opts)
}

// ClearCookies removes both token cookies from the client.
func ClearCookies(w http.ResponseWriter, opts CookieOptions) {
	opts = opts.normalize()
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     opts.Path,
			Domain:   opts.Domain,
			MaxAge:   -1,
			HttpOnly: opts.HttpOnly,
			Secure:   opts.Secure,
			SameSite: opts.SameSite,
		})
	}
}

// TokensFromRequest reads the access and refresh cookies; absent
// cookies yield empty strings.
func TokensFromRequest(r *http.Request) (access, refresh string) {
	if c, err := r.Cookie(AccessCookieName); err == nil {
		access = c.Value
	}
	if c, err := r.Cookie(RefreshCookieName); err == nil {
		refresh = c.Value
	}
	return access, refresh
}

func setCookie(w http.ResponseWriter, name, value string, expiresAt, now time.Time, opts CookieOptions) {
	opts = opts.normalize()

	maxAge := int(expiresAt.Sub(now).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     opts.Path,
		Domain:   opts.Domain,
		Expires:  expiresAt,
		MaxAge:   maxAge,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}
