// Package token issues and verifies signed, expiring session tokens.
//
// Access and refresh tokens are HS256 JWTs signed with separate secrets,
// so a token minted for one purpose never verifies for the other.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"authcore/internal/auth"
)

type Purpose string

const (
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
)

// Claims is the verified content of a token.
type Claims struct {
	Subject   string
	Purpose   Purpose
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// jwtClaims is the wire form of a token. The registered iat and exp
// are whole seconds; IssuedNanos and ExpiresNanos carry the exact
// instants, so tokens minted within one second still differ and
// expire on time.
type jwtClaims struct {
	jwt.RegisteredClaims
	Purpose      Purpose `json:"purpose"`
	IssuedNanos  int64   `json:"iat_ns"`
	ExpiresNanos int64   `json:"exp_ns"`
}

type Codec struct {
	secrets map[Purpose][]byte
	now     func() time.Time
}

type Option func(*Codec)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(accessSecret, refreshSecret string, opts ...Option) (*Codec, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token: both signing secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("token: access and refresh secrets must differ")
	}

	c := &Codec{
		secrets: map[Purpose][]byte{
			PurposeAccess:  []byte(accessSecret),
			PurposeRefresh: []byte(refreshSecret),
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue returns a token for subject that expires ttl from now.
func (c *Codec) Issue(subject string, purpose Purpose, ttl time.Duration) (string, error) {
	signed, _, err := c.IssueClaims(subject, purpose, ttl)
	return signed, err
}

// IssueClaims is Issue that also returns the encoded claims, so callers
// report the exact expiry instead of recomputing it.
func (c *Codec) IssueClaims(subject string, purpose Purpose, ttl time.Duration) (string, *Claims, error) {
	secret, ok := c.secrets[purpose]
	if !ok {
		return "", nil, fmt.Errorf("token: unknown purpose %q", purpose)
	}
	if subject == "" {
		return "", nil, errors.New("token: subject is required")
	}
	if ttl <= 0 {
		return "", nil, errors.New("token: ttl must be positive")
	}

	now := c.now()
	exp := now.Add(ttl)
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(exp)),
		},
		Purpose:      purpose,
		IssuedNanos:  now.UnixNano(),
		ExpiresNanos: exp.UnixNano(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", nil, fmt.Errorf("token: sign: %w", err)
	}
	return signed, &Claims{
		Subject:   subject,
		Purpose:   purpose,
		IssuedAt:  time.Unix(0, claims.IssuedNanos).UTC(),
		ExpiresAt: time.Unix(0, claims.ExpiresNanos).UTC(),
	}, nil
}

// ceilSecond rounds t up to a whole second so the registered exp never
// ends a token early for readers that ignore exp_ns.
func ceilSecond(t time.Time) time.Time {
	s := t.Truncate(time.Second)
	if s.Before(t) {
		s = s.Add(time.Second)
	}
	return s
}

// Verify checks token against the expected purpose and returns its subject.
func (c *Codec) Verify(token string, expected Purpose) (string, error) {
	claims, err := c.Inspect(token, expected)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Inspect performs the same checks as Verify and returns every claim.
// It fails with auth.ErrExpired when now >= exp and with
// auth.ErrMalformedOrForged for anything else that is wrong.
func (c *Codec) Inspect(token string, expected Purpose) (*Claims, error) {
	secret, ok := c.secrets[expected]
	if !ok {
		return nil, fmt.Errorf("token: unknown purpose %q: %w", expected, auth.ErrMalformedOrForged)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("token: empty: %w", auth.ErrMalformedOrForged)
	}

	var parsed jwtClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("token: %v: %w", err, auth.ErrMalformedOrForged)
	}

	if parsed.Purpose != expected {
		return nil, fmt.Errorf("token: purpose %q, want %q: %w", parsed.Purpose, expected, auth.ErrMalformedOrForged)
	}
	if parsed.Subject == "" || parsed.ExpiresNanos == 0 {
		return nil, fmt.Errorf("token: missing sub or exp: %w", auth.ErrMalformedOrForged)
	}

	exp := time.Unix(0, parsed.ExpiresNanos).UTC()
	if !c.now().Before(exp) {
		return nil, fmt.Errorf("token: expired at %s: %w", exp.UTC().Format(time.RFC3339Nano), auth.ErrExpired)
	}

	out := &Claims{
		Subject:   parsed.Subject,
		Purpose:   parsed.Purpose,
		ExpiresAt: exp,
	}
	if parsed.IssuedNanos != 0 {
		out.IssuedAt = time.Unix(0, parsed.IssuedNanos).UTC()
	}
	return out, nil
}

// Now exposes the codec clock so callers compute remaining lifetimes
// against the same time source used for expiry checks.
func (c *Codec) Now() time.Time {
	return c.now()
}
