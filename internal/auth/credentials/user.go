package credentials

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrInvalidEmail = errors.New("invalid email")
)

// User is a local account. PasswordHash is nil for accounts that only
// ever signed in through an identity provider.
type User struct {
	ID           string
	Email        string
	PasswordHash *string
	Name         string
}

// HasPassword reports whether the account has local credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Store is the relational user store the auth core consumes.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, email string, passwordHash *string, name string) (*User, error)
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
