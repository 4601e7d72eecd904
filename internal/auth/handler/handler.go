package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"authcore/internal/auth"
	"authcore/internal/auth/credentials"
	"authcore/internal/auth/federation"
	"authcore/internal/logger"
	"authcore/internal/middleware"
	"authcore/internal/session"
)

type Handler struct {
	sessions    *session.Manager
	credentials *credentials.Service
	federation  *federation.Service
	auth        *middleware.AuthMiddleware
	limiter     *middleware.RateLimiter
	cookies     session.CookieOptions
}

// NewHandler wires the auth routes. limiter may be nil to disable
// rate limiting of the credential endpoints.
func NewHandler(
	sessions *session.Manager,
	creds *credentials.Service,
	fed *federation.Service,
	cookies session.CookieOptions,
	limiter *middleware.RateLimiter,
) *Handler {
	return &Handler{
		sessions:    sessions,
		credentials: creds,
		federation:  fed,
		auth:        middleware.NewAuthMiddleware(sessions, cookies).WithUserCheck(creds.Store()),
		limiter:     limiter,
		cookies:     cookies,
	}
}

// Auth exposes the session middleware for other route groups.
func (h *Handler) Auth() *middleware.AuthMiddleware {
	return h.auth
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	users := r.Group("/users")

	credentialRoutes := users.Group("")
	if h.limiter != nil {
		credentialRoutes.Use(h.limiter.Gin())
	}
	credentialRoutes.POST("/register", h.Register)
	credentialRoutes.POST("/login", h.Login)

	users.POST("/refresh", h.Refresh)
	users.POST("/logout", h.Logout)
	users.GET("/me", middleware.GinRequireSession(h.auth), h.Me)
	users.GET("/protected", middleware.GinRequireBearer(h.auth), h.Protected)

	r.GET("/oauth/login/:provider", h.login)
	r.GET("/oauth/callback/:provider", h.callback)
}

func (h *Handler) login(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.federation.Provider(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state, err := h.generateState(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	var codeChallenge string
	if p.UsesPKCE() {
		_, codeChallenge = h.generatePKCE(c)
	}

	c.Redirect(http.StatusFound, p.AuthCodeURL(state, codeChallenge))
}

func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.federation.Provider(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}
	h.clearFlowCookies(c)

	// CASE 1: OAuth error (user denied consent, provider failure)
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	// CASE 2: Normal OAuth callback
	code := c.Query("code")
	if code == "" {
		logger.Error("oauth callback missing code and error", map[string]any{
			"provider": providerName,
		})
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}

	var codeVerifier string
	if p.UsesPKCE() {
		if codeVerifier = getPKCEVerifier(c); codeVerifier == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "missing pkce verifier",
			})
			return
		}
	}

	pair, user, err := h.federation.CompleteLogin(c.Request.Context(), providerName, code, codeVerifier)
	if err != nil {
		if errors.Is(err, auth.ErrProviderTimeout) {
			logger.Error("oauth provider timed out", map[string]any{
				"provider": providerName,
			})
		}
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	session.SetPairCookies(c.Writer, pair, h.sessions.Now(), h.cookies)

	logger.Info("login success", map[string]any{
		"user_id":  user.ID,
		"provider": providerName,
		"ip":       c.ClientIP(),
	})

	c.JSON(http.StatusOK, tokenResponse(pair.AccessToken, user))
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func newUserResponse(u *credentials.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

func tokenResponse(accessToken string, u *credentials.User) gin.H {
	resp := gin.H{
		"access_token": accessToken,
		"token_type":   "bearer",
	}
	if u != nil {
		resp["user"] = newUserResponse(u)
	}
	return resp
}
