// Package federation completes third-party logins: it drives a provider
// through code exchange, profile fetch and normalization, maps the
// identity onto a local user and issues the same token pair a password
// login would.
package federation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"authcore/internal/auth"
	"authcore/internal/auth/credentials"
	"authcore/internal/auth/provider"
	"authcore/internal/auth/resolver"
	"authcore/internal/logger"
	"authcore/internal/metrics"
	"authcore/internal/session"
)

const DefaultTimeout = 10 * time.Second

// Issuer is the session issuance path.
type Issuer interface {
	IssuePair(subject string) (*session.Pair, error)
}

type Service struct {
	providers *provider.Registry
	resolver  resolver.Resolver
	issuer    Issuer
	timeout   time.Duration
	metrics   metrics.Recorder
}

type Option func(*Service)

// WithTimeout bounds each provider network call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

func NewService(
	providers *provider.Registry,
	resolver resolver.Resolver,
	issuer Issuer,
	opts ...Option,
) *Service {
	s := &Service{
		providers: providers,
		resolver:  resolver,
		issuer:    issuer,
		timeout:   DefaultTimeout,
		metrics:   metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider exposes the registry lookup for the login redirect.
func (s *Service) Provider(name string) (provider.OAuthProvider, error) {
	return s.providers.Get(name)
}

// CompleteLogin runs one federated login attempt. Any failing step
// aborts the attempt; nothing is written before identity resolution.
func (s *Service) CompleteLogin(
	ctx context.Context,
	providerName string,
	code string,
	codeVerifier string,
) (*session.Pair, *credentials.User, error) {
	p, err := s.providers.Get(providerName)
	if err != nil {
		return nil, nil, err
	}

	pair, user, err := s.complete(ctx, p, code, codeVerifier)
	if err != nil {
		s.metrics.RecordFederation(providerName, failureLabel(err))
		logger.Warn("federated login failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		return nil, nil, err
	}

	s.metrics.RecordFederation(providerName, "success")
	logger.Info("federated login succeeded", map[string]any{
		"provider": providerName,
		"user_id":  user.ID,
	})
	return pair, user, nil
}

func (s *Service) complete(
	ctx context.Context,
	p provider.OAuthProvider,
	code string,
	codeVerifier string,
) (*session.Pair, *credentials.User, error) {
	// 1. Code exchange
	exchangeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	tok, err := p.ExchangeCode(exchangeCtx, code, codeVerifier)
	err = classify(exchangeCtx, err, auth.ErrProviderTokenExchange)
	cancel()
	if err != nil {
		return nil, nil, err
	}

	// 2. Profile fetch
	profileCtx, cancel := context.WithTimeout(ctx, s.timeout)
	raw, err := p.FetchProfile(profileCtx, tok)
	err = classify(profileCtx, err, auth.ErrProviderProfileFetch)
	cancel()
	if err != nil {
		return nil, nil, err
	}

	// 3. Normalization
	identity, err := p.Normalize(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", auth.ErrProviderProfileFetch, err)
	}

	// 4. Identity resolution
	user, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, nil, err
	}

	// 5. Token issuance
	pair, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// classify maps a provider call failure onto the federation taxonomy.
// A hit deadline wins over the step's own error.
func classify(ctx context.Context, err error, step error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", auth.ErrProviderTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", auth.ErrProviderTimeout, err)
	}
	return fmt.Errorf("%w: %w", step, err)
}

func failureLabel(err error) string {
	switch {
	case errors.Is(err, auth.ErrProviderTimeout):
		return "timeout"
	case errors.Is(err, auth.ErrProviderTokenExchange):
		return "exchange_failed"
	case errors.Is(err, auth.ErrProviderProfileFetch):
		return "profile_failed"
	default:
		return "error"
	}
}
