package resolver

import (
	"context"

	"authcore/internal/auth"
	"authcore/internal/auth/credentials"
)

// Resolver determines which internal user an external identity belongs to.
// It is the ONLY place where identity-to-user mapping logic lives.
type Resolver interface {
	Resolve(ctx context.Context, identity *auth.Identity) (*credentials.User, error)
}
