package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ugurkiymetli/secret-santa/internal/service"
	"github.com/ugurkiymetli/secret-santa/pkg/response"
)

const (
	ContextKeyPrincipal = "principal"
	ContextKeyToken     = "session_token"

	// SessionCookie carries the session token for browser clients.
	SessionCookie = "token"
)

// TokenFromRequest returns the bearer token, falling back to the session cookie.
func TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// SessionAuth verifies the session token and stores the caller principal.
func SessionAuth(gate service.AuthorizationGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		principal, err := gate.VerifySession(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired session")
			c.Abort()
			return
		}

		c.Set(ContextKeyPrincipal, principal)
		c.Set(ContextKeyToken, token)
		c.Next()
	}
}
