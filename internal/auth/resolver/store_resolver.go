package resolver

import (
	"context"
	"errors"
	"fmt"

	"authcore/internal/auth"
	"authcore/internal/auth/credentials"
	"authcore/internal/logger"
)

// StoreResolver links identities to local users by email.
type StoreResolver struct {
	store credentials.Store
}

func NewStoreResolver(store credentials.Store) *StoreResolver {
	return &StoreResolver{store: store}
}

// Resolve finds the user owning identity.Email, creating a
// password-less user when none exists yet.
func (r *StoreResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (*credentials.User, error) {
	if identity == nil {
		return nil, errors.New("identity is nil")
	}
	email := credentials.NormalizeEmail(identity.Email)
	if email == "" {
		return nil, errors.New("identity has no email")
	}

	// 1. Existing user, whichever way it signed up
	u, err := r.store.FindUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, credentials.ErrUserNotFound) {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	// 2. First login: federation-only account
	u, err = r.store.CreateUser(ctx, email, nil, identity.Name)
	if errors.Is(err, credentials.ErrEmailTaken) {
		// Lost a race with a concurrent first login for the same email.
		return r.store.FindUserByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	logger.Info("user created from federated identity", map[string]any{
		"user_id":  u.ID,
		"provider": identity.Provider,
	})
	return u, nil
}
