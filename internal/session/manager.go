package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"authcore/internal/auth"
	"authcore/internal/auth/credentials"
	"authcore/internal/logger"
	"authcore/internal/metrics"
	"authcore/internal/token"
)

// Pair is a freshly issued access/refresh token pair.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Resolution is the outcome of resolving a cookie session. When the
// access token was unusable and the refresh token stood in for it,
// RefreshedAccess carries a new access token the caller must hand back
// to the client.
type Resolution struct {
	UserID                   string
	RefreshedAccess          string
	RefreshedAccessExpiresAt time.Time
}

// Authenticator checks an email/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*credentials.User, error)
}

type Config struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Manager orchestrates login, session resolution, refresh and logout.
// It holds no mutable state of its own; revocations live in the store.
type Manager struct {
	codec       *token.Codec
	revocations RevocationStore
	credentials Authenticator
	cfg         Config
	metrics     metrics.Recorder
}

type ManagerOption func(*Manager)

func WithMetrics(r metrics.Recorder) ManagerOption {
	return func(m *Manager) {
		if r != nil {
			m.metrics = r
		}
	}
}

func NewManager(
	codec *token.Codec,
	revocations RevocationStore,
	credentials Authenticator,
	cfg Config,
	opts ...ManagerOption,
) (*Manager, error) {
	if codec == nil || revocations == nil || credentials == nil {
		return nil, errors.New("session: codec, revocation store and credentials are required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("session: token ttls must be positive")
	}

	m := &Manager{
		codec:       codec,
		revocations: revocations,
		credentials: credentials,
		cfg:         cfg,
		metrics:     metrics.Nop{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Now is the clock the manager issues and verifies tokens against.
func (m *Manager) Now() time.Time {
	return m.codec.Now()
}

// Login authenticates with email and password and issues a token pair.
func (m *Manager) Login(ctx context.Context, email, password string) (*Pair, *credentials.User, error) {
	user, err := m.credentials.Authenticate(ctx, email, password)
	if err != nil {
		m.metrics.RecordLogin("failure")
		return nil, nil, err
	}

	pair, err := m.IssuePair(user.ID)
	if err != nil {
		m.metrics.RecordLogin("error")
		return nil, nil, err
	}

	m.metrics.RecordLogin("success")
	return pair, user, nil
}

// IssuePair mints an access and a refresh token for subject. It is the
// single issuance path for password, registration and federated logins.
func (m *Manager) IssuePair(subject string) (*Pair, error) {
	access, accessClaims, err := m.codec.IssueClaims(subject, token.PurposeAccess, m.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("session: issue access token: %w", err)
	}
	refresh, refreshClaims, err := m.codec.IssueClaims(subject, token.PurposeRefresh, m.cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("session: issue refresh token: %w", err)
	}

	return &Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessClaims.ExpiresAt,
		RefreshExpiresAt: refreshClaims.ExpiresAt,
	}, nil
}

// ResolveCurrentUser resolves the session carried by a cookie pair.
//
// The access token is checked first. A valid but revoked access token
// ends resolution; an absent, expired or otherwise invalid one falls
// back to the refresh token, which then mints a new access token.
func (m *Manager) ResolveCurrentUser(ctx context.Context, accessToken, refreshToken string) (*Resolution, error) {
	if accessToken != "" {
		subject, err := m.codec.Verify(accessToken, token.PurposeAccess)
		if err == nil {
			revoked, err := m.revocations.IsRevoked(ctx, accessToken)
			if err != nil {
				m.metrics.RecordResolve("error")
				return nil, fmt.Errorf("%w: %w", auth.ErrUnauthenticated, err)
			}
			if revoked {
				m.metrics.RecordResolve("revoked")
				return nil, fmt.Errorf("%w: access %w", auth.ErrUnauthenticated, auth.ErrRevokedToken)
			}
			m.metrics.RecordResolve("access")
			return &Resolution{UserID: subject}, nil
		}
	}

	if refreshToken == "" {
		m.metrics.RecordResolve("unauthenticated")
		return nil, auth.ErrUnauthenticated
	}

	subject, access, expiresAt, err := m.reissueAccess(ctx, refreshToken)
	if err != nil {
		m.metrics.RecordResolve("unauthenticated")
		return nil, fmt.Errorf("%w: %w", auth.ErrUnauthenticated, err)
	}

	m.metrics.RecordResolve("refreshed")
	return &Resolution{
		UserID:                   subject,
		RefreshedAccess:          access,
		RefreshedAccessExpiresAt: expiresAt,
	}, nil
}

// Refresh trades a refresh token for a new access token. The refresh
// token itself stays valid until it expires or is revoked.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	_, access, expiresAt, err := m.reissueAccess(ctx, refreshToken)
	if err != nil {
		m.metrics.RecordRefresh("failure")
		return "", time.Time{}, fmt.Errorf("%w: %w", auth.ErrInvalidRefresh, err)
	}
	m.metrics.RecordRefresh("success")
	return access, expiresAt, nil
}

func (m *Manager) reissueAccess(ctx context.Context, refreshToken string) (string, string, time.Time, error) {
	subject, err := m.codec.Verify(refreshToken, token.PurposeRefresh)
	if err != nil {
		return "", "", time.Time{}, err
	}

	revoked, err := m.revocations.IsRevoked(ctx, refreshToken)
	if err != nil {
		return "", "", time.Time{}, err
	}
	if revoked {
		return "", "", time.Time{}, fmt.Errorf("refresh %w", auth.ErrRevokedToken)
	}

	access, claims, err := m.codec.IssueClaims(subject, token.PurposeAccess, m.cfg.AccessTTL)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return subject, access, claims.ExpiresAt, nil
}

// Logout revokes every present token for the rest of its lifetime.
// Tokens that are absent, expired or not ours are skipped; only a
// failure to write a revocation is returned.
func (m *Manager) Logout(ctx context.Context, accessToken, refreshToken string) error {
	var errs []error

	for _, t := range []struct {
		value   string
		purpose token.Purpose
	}{
		{accessToken, token.PurposeAccess},
		{refreshToken, token.PurposeRefresh},
	} {
		if t.value == "" {
			continue
		}

		claims, err := m.codec.Inspect(t.value, t.purpose)
		if err != nil {
			continue
		}

		remaining := claims.ExpiresAt.Sub(m.codec.Now())
		if err := m.revocations.Revoke(ctx, t.value, remaining); err != nil {
			logger.Error("token revocation failed", map[string]any{
				"purpose": string(t.purpose),
				"user_id": claims.Subject,
				"error":   err.Error(),
			})
			errs = append(errs, err)
			continue
		}
		m.metrics.RecordRevocation(string(t.purpose))
	}

	return errors.Join(errs...)
}

// VerifyBearer is the single-token check for bearer-style API calls.
func (m *Manager) VerifyBearer(ctx context.Context, accessToken string) (string, error) {
	revoked, err := m.revocations.IsRevoked(ctx, accessToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", auth.ErrUnauthenticated, err)
	}
	if revoked {
		return "", auth.ErrRevokedToken
	}
	return m.codec.Verify(accessToken, token.PurposeAccess)
}
