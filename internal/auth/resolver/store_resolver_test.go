package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authcore/internal/auth"
	"authcore/internal/auth/credentials"
	"authcore/internal/db"
)

func newStore(t *testing.T) *credentials.SQLStore {
	t.Helper()
	d, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return credentials.NewSQLStore(d)
}

func TestResolveCreatesOnceThenReuses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)
	r := NewStoreResolver(store)

	first, err := r.Resolve(ctx, &auth.Identity{Provider: "google", ProviderUserID: "1", Email: "b@x.com", Name: "Bea"})
	require.NoError(t, err)
	assert.Nil(t, first.PasswordHash)
	assert.Equal(t, "Bea", first.Name)

	second, err := r.Resolve(ctx, &auth.Identity{Provider: "kakao", ProviderUserID: "99", Email: "B@X.com", Name: "Other"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Bea", second.Name)
}

func TestResolveLinksExistingPasswordUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	hash, err := credentials.HashPassword("pw1")
	require.NoError(t, err)
	local, err := store.CreateUser(ctx, "a@x.com", &hash, "Alice")
	require.NoError(t, err)

	u, err := NewStoreResolver(store).Resolve(ctx, &auth.Identity{Provider: "google", ProviderUserID: "7", Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, local.ID, u.ID)
	assert.True(t, u.HasPassword())
}

type racingStore struct {
	credentials.Store
	winner *credentials.User
	finds  int
}

func (s *racingStore) FindUserByEmail(context.Context, string) (*credentials.User, error) {
	s.finds++
	if s.finds == 1 {
		return nil, credentials.ErrUserNotFound
	}
	return s.winner, nil
}

func (s *racingStore) CreateUser(context.Context, string, *string, string) (*credentials.User, error) {
	return nil, credentials.ErrEmailTaken
}

func TestResolveRaceFallsBackToLookup(t *testing.T) {
	t.Parallel()
	winner := &credentials.User{ID: "u-1", Email: "b@x.com"}
	store := &racingStore{winner: winner}

	u, err := NewStoreResolver(store).Resolve(context.Background(), &auth.Identity{Email: "b@x.com"})
	require.NoError(t, err)
	assert.Equal(t, winner, u)
}

type brokenStore struct {
	credentials.Store
}

func (brokenStore) FindUserByEmail(context.Context, string) (*credentials.User, error) {
	return nil, errors.New("connection reset")
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := NewStoreResolver(brokenStore{}).Resolve(ctx, &auth.Identity{Email: "b@x.com"})
	assert.ErrorContains(t, err, "connection reset")

	r := NewStoreResolver(newStore(t))
	_, err = r.Resolve(ctx, nil)
	assert.Error(t, err)
	_, err = r.Resolve(ctx, &auth.Identity{Email: "  "})
	assert.Error(t, err)
}
