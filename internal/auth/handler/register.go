package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"authcore/internal/auth/credentials"
	"authcore/internal/logger"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.credentials.Register(
		c.Request.Context(),
		req.Email,
		req.Password,
		req.Name,
	)

	switch {
	case err == nil:
	case errors.Is(err, credentials.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
		return
	case errors.Is(err, credentials.ErrInvalidEmail), errors.Is(err, credentials.ErrPasswordEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	default:
		logger.Error("registration failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}
