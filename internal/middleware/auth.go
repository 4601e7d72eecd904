package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"authcore/internal/auth"
	"authcore/internal/auth/credentials"
	"authcore/internal/logger"
	"authcore/internal/session"
)

// unexported, collision-proof context key
type userIDContextKeyType struct{}

var userIDKey = userIDContextKeyType{}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// WithUserID attaches an authenticated user ID to ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Sessions is the part of the session manager the middleware needs.
type Sessions interface {
	ResolveCurrentUser(ctx context.Context, accessToken, refreshToken string) (*session.Resolution, error)
	VerifyBearer(ctx context.Context, accessToken string) (string, error)
	Now() time.Time
}

// Users looks up the account behind a token subject.
type Users interface {
	FindUserByID(ctx context.Context, id string) (*credentials.User, error)
}

type AuthMiddleware struct {
	Sessions Sessions
	Cookies  session.CookieOptions

	// Users, when set, rejects tokens whose subject no longer exists.
	Users Users
}

func NewAuthMiddleware(sessions Sessions, cookies session.CookieOptions) *AuthMiddleware {
	return &AuthMiddleware{Sessions: sessions, Cookies: cookies}
}

// WithUserCheck makes both middlewares confirm the user still exists
// before the request continues.
func (a *AuthMiddleware) WithUserCheck(users Users) *AuthMiddleware {
	a.Users = users
	return a
}

// userExists reports whether the request may continue. It writes the
// response itself when it may not.
func (a *AuthMiddleware) userExists(w http.ResponseWriter, r *http.Request, userID string) bool {
	if a.Users == nil {
		return true
	}
	_, err := a.Users.FindUserByID(r.Context(), userID)
	switch {
	case err == nil:
		return true
	case errors.Is(err, credentials.ErrUserNotFound):
		logger.Warn("token for unknown user", map[string]any{
			"user_id": userID,
			"ip":      clientIP(r),
		})
		unauthorized(w)
	default:
		logger.Error("user lookup failed", map[string]any{
			"error": err.Error(),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
	}
	return false
}

// RequireSession authenticates from the token cookies. When the access
// token had to be re-minted from the refresh token, the new one is
// written back as a cookie before the request continues.
func (a *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Read token cookies
		access, refresh := session.TokensFromRequest(r)

		// 2. Resolve
		res, err := a.Sessions.ResolveCurrentUser(r.Context(), access, refresh)
		if err != nil {
			if errors.Is(err, auth.ErrRevokedToken) {
				logger.Warn("revoked access token presented", map[string]any{
					"ip": clientIP(r),
				})
			}
			unauthorized(w)
			return
		}
		if !a.userExists(w, r, res.UserID) {
			return
		}

		// 3. Propagate a re-minted access token
		if res.RefreshedAccess != "" {
			session.SetAccessCookie(w, res.RefreshedAccess, res.RefreshedAccessExpiresAt, a.Sessions.Now(), a.Cookies)
		}

		// 4. Attach user_id to context and continue
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), res.UserID)))
	})
}

// RequireBearer authenticates a single access token from the
// Authorization header. There is no refresh fallback.
func (a *AuthMiddleware) RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := BearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			unauthorized(w)
			return
		}

		userID, err := a.Sessions.VerifyBearer(r.Context(), tok)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			unauthorized(w)
			return
		}
		if !a.userExists(w, r, userID) {
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, tok, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"not authenticated"}`))
}
