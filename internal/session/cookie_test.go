package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPairCookies(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pair := &Pair{
		AccessToken:      "acc",
		RefreshToken:     "ref",
		AccessExpiresAt:  now.Add(15 * time.Minute),
		RefreshExpiresAt: now.Add(7 * 24 * time.Hour),
	}

	rec := httptest.NewRecorder()
	SetPairCookies(rec, pair, now, CookieOptions{Secure: true})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	assert.Equal(t, AccessCookieName, cookies[0].Name)
	assert.Equal(t, "acc", cookies[0].Value)
	assert.Equal(t, 900, cookies[0].MaxAge)
	assert.Equal(t, RefreshCookieName, cookies[1].Name)
	assert.Equal(t, 7*24*3600, cookies[1].MaxAge)

	for _, c := range cookies {
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	}
}

func TestClearCookies(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	ClearCookies(rec, CookieOptions{})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0)
	}
}

func TestTokensFromRequest(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	access, refresh := TokensFromRequest(req)
	assert.Empty(t, access)
	assert.Empty(t, refresh)

	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "ref"})
	access, refresh = TokensFromRequest(req)
	assert.Empty(t, access)
	assert.Equal(t, "ref", refresh)
}
