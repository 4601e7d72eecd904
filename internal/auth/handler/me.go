package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"authcore/internal/auth/credentials"
	"authcore/internal/logger"
	"authcore/internal/middleware"
)

func (h *Handler) Me(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	user, err := h.credentials.Store().FindUserByID(c.Request.Context(), userID)
	if errors.Is(err, credentials.ErrUserNotFound) {
		// valid token for a user that no longer exists
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if err != nil {
		logger.Error("load current user failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *Handler) Protected(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"message": fmt.Sprintf("Hello, %s! You are authenticated.", userID),
	})
}
