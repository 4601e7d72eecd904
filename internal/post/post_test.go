package post

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authcore/internal/auth"
	"authcore/internal/auth/credentials"
	"authcore/internal/db"
	"authcore/internal/middleware"
	"authcore/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func newUser(t *testing.T, d *db.DB, email string) string {
	t.Helper()
	u, err := credentials.NewSQLStore(d).CreateUser(context.Background(), email, nil, "")
	require.NoError(t, err)
	return u.ID
}

func TestStoreCreateAndList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := newDB(t)
	alice := newUser(t, d, "a@x.com")
	bob := newUser(t, d, "b@x.com")

	s := NewStore(d)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Second) }

	first, err := s.Create(ctx, alice, "hello", "first post")
	require.NoError(t, err)
	_, err = s.Create(ctx, bob, "other", "not alice's")
	require.NoError(t, err)
	second, err := s.Create(ctx, alice, " again ", "second post")
	require.NoError(t, err)
	assert.Equal(t, "again", second.Title)

	mine, err := s.ListByOwner(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, first.ID, mine[0].ID)
	assert.Equal(t, second.ID, mine[1].ID)
	assert.True(t, first.CreatedAt.Equal(mine[0].CreatedAt))

	none, err := s.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)

	_, err = s.Create(ctx, alice, "", "body")
	assert.ErrorIs(t, err, ErrInvalidPost)
}

type sessions struct{}

func (sessions) ResolveCurrentUser(_ context.Context, access, _ string) (*session.Resolution, error) {
	if access == "" {
		return nil, auth.ErrUnauthenticated
	}
	return &session.Resolution{UserID: access}, nil
}

func (sessions) VerifyBearer(context.Context, string) (string, error) {
	return "", auth.ErrUnauthenticated
}

func (sessions) Now() time.Time { return time.Now() }

func TestHandlerRoutes(t *testing.T) {
	t.Parallel()
	d := newDB(t)
	alice := newUser(t, d, "a@x.com")

	r := gin.New()
	mw := middleware.NewAuthMiddleware(sessions{}, session.CookieOptions{}).WithUserCheck(credentials.NewSQLStore(d))
	NewHandler(NewStore(d), mw).RegisterRoutes(r)

	do := func(method, path, body, userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if userID != "" {
			req.AddCookie(&http.Cookie{Name: session.AccessCookieName, Value: userID})
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/posts", `{"title":"t","content":"c"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(http.MethodPost, "/posts", `{"title":"t","content":"c"}`, alice)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, alice, created.OwnerID)

	rec = do(http.MethodPost, "/posts", `{"title":"","content":"c"}`, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodGet, "/posts/mine", "", alice)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)
}

func TestHandlerRejectsDeletedUser(t *testing.T) {
	t.Parallel()
	d := newDB(t)
	gone := newUser(t, d, "gone@x.com")
	_, err := d.ExecContext(context.Background(), `DELETE FROM users WHERE id = $1`, gone)
	require.NoError(t, err)

	r := gin.New()
	mw := middleware.NewAuthMiddleware(sessions{}, session.CookieOptions{}).WithUserCheck(credentials.NewSQLStore(d))
	NewHandler(NewStore(d), mw).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"title":"t","content":"c"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: session.AccessCookieName, Value: gone})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	posts, err := NewStore(d).ListByOwner(context.Background(), gone)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
