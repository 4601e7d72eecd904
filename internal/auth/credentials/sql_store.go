package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"authcore/internal/db"
)

type SQLStore struct {
	db *db.DB
}

func NewSQLStore(db *db.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name
		FROM users
		WHERE email = $1
	`, NormalizeEmail(email)))
}

func (s *SQLStore) FindUserByID(ctx context.Context, id string) (*User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name
		FROM users
		WHERE id = $1
	`, id))
}

func (s *SQLStore) CreateUser(
	ctx context.Context,
	email string,
	passwordHash *string,
	name string,
) (*User, error) {
	u := &User{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Name:         name,
	}
	if u.Email == "" {
		return nil, errors.New("credentials: email is required")
	}

	var hash sql.NullString
	if passwordHash != nil {
		hash = sql.NullString{String: *passwordHash, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name)
		VALUES ($1, $2, $3, $4)
	`, u.ID, u.Email, hash, u.Name)

	if db.IsUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("credentials: insert user: %w", err)
	}

	return u, nil
}

func (s *SQLStore) scanOne(row *sql.Row) (*User, error) {
	var (
		u    User
		hash sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &hash, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("credentials: scan user: %w", err)
	}
	if hash.Valid {
		u.PasswordHash = &hash.String
	}
	return &u, nil
}
