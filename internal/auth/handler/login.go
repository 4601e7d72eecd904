package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"authcore/internal/auth"
	"authcore/internal/logger"
	"authcore/internal/middleware"
	"authcore/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, user, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Error("login failed", map[string]any{"error": err.Error()})
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	session.SetPairCookies(c.Writer, pair, h.sessions.Now(), h.cookies)
	c.JSON(http.StatusOK, tokenResponse(pair.AccessToken, user))
}

// Refresh trades the refresh cookie for a new access cookie.
func (h *Handler) Refresh(c *gin.Context) {
	_, refresh := session.TokensFromRequest(c.Request)

	access, expiresAt, err := h.sessions.Refresh(c.Request.Context(), refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	session.SetAccessCookie(c.Writer, access, expiresAt, h.sessions.Now(), h.cookies)
	c.JSON(http.StatusOK, tokenResponse(access, nil))
}

// Logout revokes whatever tokens the client presents and clears the
// cookies. The access token may also come as a bearer header.
func (h *Handler) Logout(c *gin.Context) {
	access, refresh := session.TokensFromRequest(c.Request)
	if access == "" {
		access, _ = middleware.BearerToken(c.Request)
	}

	err := h.sessions.Logout(c.Request.Context(), access, refresh)
	session.ClearCookies(c.Writer, h.cookies)

	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "logout could not be recorded"})
		return
	}

	c.Status(http.StatusNoContent)
}
