package credentials

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"authcore/internal/auth"
)

// Service is the credential adapter: registration and password checks
// on top of a user Store.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Store returns the underlying user store.
func (s *Service) Store() Store {
	return s.store
}

func (s *Service) Register(
	ctx context.Context,
	email string,
	password string,
	name string,
) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	return s.store.CreateUser(ctx, email, &hash, strings.TrimSpace(name))
}

// Authenticate returns the user for a matching email/password pair.
// Every mismatch yields auth.ErrInvalidCredentials so callers cannot
// tell an unknown email from a wrong password.
func (s *Service) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (*User, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	if user == nil || !user.HasPassword() {
		// hide whether user exists or not
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, auth.ErrInvalidCredentials
	}

	if err := VerifyPassword(*user.PasswordHash, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}
