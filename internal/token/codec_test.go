package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authcore/internal/auth"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCodec(t *testing.T) (*Codec, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	c, err := NewCodec("access-secret", "refresh-secret", WithClock(clock.Now))
	require.NoError(t, err)
	return c, clock
}

func TestNewCodecRejectsBadSecrets(t *testing.T) {
	t.Parallel()

	_, err := NewCodec("", "refresh")
	assert.Error(t, err)

	_, err = NewCodec("same", "same")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, purpose := range []Purpose{PurposeAccess, PurposeRefresh} {
		for _, subject := range []string{"1", "42", "5b2c9f2e-8d3a-4f7a-9c41-0e4a3f1d2b6c"} {
			c, _ := newTestCodec(t)

			tok, err := c.Issue(subject, purpose, time.Minute)
			require.NoError(t, err)

			got, err := c.Verify(tok, purpose)
			require.NoError(t, err)
			assert.Equal(t, subject, got)
		}
	}
}

func TestIssueIsDeterministicForFixedClock(t *testing.T) {
	t.Parallel()

	c, _ := newTestCodec(t)
	a, err := c.Issue("7", PurposeAccess, time.Minute)
	require.NoError(t, err)
	b, err := c.Issue("7", PurposeAccess, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExpiryBoundary(t *testing.T) {
	t.Parallel()

	const ttl = 10 * time.Minute

	tests := []struct {
		name    string
		advance time.Duration
		wantErr error
	}{
		{"just issued", 0, nil},
		{"one second before expiry", ttl - time.Second, nil},
		{"exactly at expiry", ttl, auth.ErrExpired},
		{"one second after expiry", ttl + time.Second, auth.ErrExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, clock := newTestCodec(t)

			tok, err := c.Issue("9", PurposeAccess, ttl)
			require.NoError(t, err)

			clock.Advance(tt.advance)
			sub, err := c.Verify(tok, PurposeAccess)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.NotErrorIs(t, err, auth.ErrMalformedOrForged)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "9", sub)
		})
	}
}

func TestFractionalSecondExpiry(t *testing.T) {
	t.Parallel()

	const ttl = 10 * time.Second

	tests := []struct {
		name    string
		advance time.Duration
		wantErr error
	}{
		{"half a second before expiry", 9500 * time.Millisecond, nil},
		{"one millisecond before expiry", ttl - time.Millisecond, nil},
		{"exactly at expiry", ttl, auth.ErrExpired},
		{"one millisecond after expiry", ttl + time.Millisecond, auth.ErrExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, clock := newTestCodec(t)
			clock.Advance(900 * time.Millisecond)
			issued := clock.Now()

			tok, claims, err := c.IssueClaims("9", PurposeAccess, ttl)
			require.NoError(t, err)
			assert.True(t, claims.ExpiresAt.Equal(issued.Add(ttl)))

			clock.Advance(tt.advance)
			_, err = c.Verify(tok, PurposeAccess)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRegisteredExpiryRoundsUp(t *testing.T) {
	t.Parallel()

	c, clock := newTestCodec(t)
	clock.Advance(900 * time.Millisecond)
	issued := clock.Now()

	tok, err := c.Issue("9", PurposeAccess, 10*time.Second)
	require.NoError(t, err)

	var parsed jwtClaims
	_, _, err = jwt.NewParser().ParseUnverified(tok, &parsed)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(11*time.Second).Truncate(time.Second).Unix(), parsed.ExpiresAt.Unix())
	assert.Equal(t, issued.Add(10*time.Second).UnixNano(), parsed.ExpiresNanos)
}

func TestIssueWithinSameSecondDiffers(t *testing.T) {
	t.Parallel()

	c, clock := newTestCodec(t)
	a, err := c.Issue("7", PurposeAccess, time.Minute)
	require.NoError(t, err)

	clock.Advance(500 * time.Millisecond)
	b, err := c.Issue("7", PurposeAccess, time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPurposeScoping(t *testing.T) {
	t.Parallel()

	c, _ := newTestCodec(t)
	for _, subject := range []string{"1", "2", "abc"} {
		access, err := c.Issue(subject, PurposeAccess, time.Hour)
		require.NoError(t, err)
		refresh, err := c.Issue(subject, PurposeRefresh, time.Hour)
		require.NoError(t, err)

		_, err = c.Verify(access, PurposeRefresh)
		assert.ErrorIs(t, err, auth.ErrMalformedOrForged)

		_, err = c.Verify(refresh, PurposeAccess)
		assert.ErrorIs(t, err, auth.ErrMalformedOrForged)
	}
}

func TestPurposeClaimChecked(t *testing.T) {
	t.Parallel()

	c, clock := newTestCodec(t)

	// Signed with the access secret but claiming to be a refresh token.
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "3",
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
		Purpose: PurposeRefresh,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = c.Verify(tok, PurposeAccess)
	assert.ErrorIs(t, err, auth.ErrMalformedOrForged)
}

func TestForgedAndMalformed(t *testing.T) {
	t.Parallel()

	c, _ := newTestCodec(t)
	other, err := NewCodec("attacker-access", "attacker-refresh")
	require.NoError(t, err)

	forged, err := other.Issue("1", PurposeAccess, time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"forged":       forged,
		"empty":        "",
		"garbage":      "not-a-token",
		"two segments": "a.b",
		"alg none":     unsigned,
	} {
		_, err := c.Verify(tok, PurposeAccess)
		assert.ErrorIs(t, err, auth.ErrMalformedOrForged, name)
	}
}

func TestForgedAndExpiredReportsForged(t *testing.T) {
	t.Parallel()

	c, clock := newTestCodec(t)
	other, err := NewCodec("attacker-access", "attacker-refresh", WithClock(clock.Now))
	require.NoError(t, err)

	forged, err := other.Issue("1", PurposeAccess, time.Minute)
	require.NoError(t, err)
	clock.Advance(time.Hour)

	_, err = c.Verify(forged, PurposeAccess)
	assert.ErrorIs(t, err, auth.ErrMalformedOrForged)
}

func TestInspectReturnsClaims(t *testing.T) {
	t.Parallel()

	c, clock := newTestCodec(t)
	issued := clock.Now()

	tok, err := c.Issue("11", PurposeRefresh, 48*time.Hour)
	require.NoError(t, err)

	claims, err := c.Inspect(tok, PurposeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "11", claims.Subject)
	assert.Equal(t, PurposeRefresh, claims.Purpose)
	assert.True(t, claims.IssuedAt.Equal(issued))
	assert.True(t, claims.ExpiresAt.Equal(issued.Add(48*time.Hour)))
}

func TestIssueValidation(t *testing.T) {
	t.Parallel()

	c, _ := newTestCodec(t)

	_, err := c.Issue("", PurposeAccess, time.Minute)
	assert.Error(t, err)

	_, err = c.Issue("1", PurposeAccess, 0)
	assert.Error(t, err)

	_, err = c.Issue("1", Purpose("admin"), time.Minute)
	assert.Error(t, err)
}
