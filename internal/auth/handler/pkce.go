package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

const (
	pkceCookieName = "__oauth_pkce"
	pkceTTL        = 5 * time.Minute
)

// generatePKCE stores a fresh verifier in a flow cookie and returns its
// S256 challenge.
func (h *Handler) generatePKCE(c *gin.Context) (verifier string, challenge string) {
	verifier = oauth2.GenerateVerifier()
	h.setFlowCookie(c, pkceCookieName, verifier, int(pkceTTL.Seconds()))
	return verifier, oauth2.S256ChallengeFromVerifier(verifier)
}

func getPKCEVerifier(c *gin.Context) string {
	cookie, err := c.Request.Cookie(pkceCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
