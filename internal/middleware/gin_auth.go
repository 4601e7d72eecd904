package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key holding the authenticated user ID.
const UserIDKey = "userID"

// Gin adapts a net/http middleware to Gin. The user ID placed in the
// request context is mirrored into the gin context under UserIDKey.
func Gin(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			if id, ok := UserIDFromContext(r.Context()); ok {
				c.Set(UserIDKey, id)
			}
			c.Next()
		})

		mw(next).ServeHTTP(c.Writer, c.Request)

		// If the middleware already handled the response, stop Gin chain
		if c.Writer.Written() {
			c.Abort()
		}
	}
}

// GinRequireSession is RequireSession for Gin routes.
func GinRequireSession(a *AuthMiddleware) gin.HandlerFunc {
	return Gin(a.RequireSession)
}

// GinRequireBearer is RequireBearer for Gin routes.
func GinRequireBearer(a *AuthMiddleware) gin.HandlerFunc {
	return Gin(a.RequireBearer)
}
