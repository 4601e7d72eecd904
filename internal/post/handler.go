package post

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"authcore/internal/logger"
	"authcore/internal/middleware"
)

type Handler struct {
	store *Store
	auth  *middleware.AuthMiddleware
}

func NewHandler(store *Store, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{store: store, auth: auth}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	posts := r.Group("/posts", middleware.GinRequireSession(h.auth))
	posts.POST("", h.create)
	posts.GET("/mine", h.mine)
}

type createRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p, err := h.store.Create(c.Request.Context(), c.GetString(middleware.UserIDKey), req.Title, req.Content)
	if errors.Is(err, ErrInvalidPost) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		logger.Error("create post failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) mine(c *gin.Context) {
	posts, err := h.store.ListByOwner(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		logger.Error("list posts failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, posts)
}
