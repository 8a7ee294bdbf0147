package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole admits callers holding role in resource_access.<clientID>.
// An empty role disables the check.
func RequireRole(clientID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role == "" || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no claims in context"})
			return
		}
		if !claims.HasRole(clientID, role) {
			log.Printf("[auth] forbidden sub=%s authorities=%v need=%s", claims.Subject, claims.Authorities(clientID), role)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
