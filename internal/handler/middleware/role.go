package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ugurkiymetli/secret-santa/internal/model"
	"github.com/ugurkiymetli/secret-santa/internal/service"
	"github.com/ugurkiymetli/secret-santa/pkg/response"
)

// RequireRole lets the request through only if the caller holds one of roles.
// Must be used after SessionAuth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		val, exists := c.Get(ContextKeyPrincipal)
		if !exists {
			response.Unauthorized(c, "missing authentication")
			c.Abort()
			return
		}
		principal, ok := val.(*service.Principal)
		if !ok || !principal.HasRole(roles...) {
			// same answer as a bad token
			response.Unauthorized(c, "invalid or expired session")
			c.Abort()
			return
		}

		c.Next()
	}
}
