package middleware

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"whatsclone/internal/authz"
	"whatsclone/internal/models"
)

type UserSynchronizer interface {
	Synchronize(ctx context.Context, claims *authz.Claims) (*models.User, error)
}

// UserSync upserts the caller on every authenticated request. The stored id
// becomes the caller id, which matters when an existing e-mail kept an older
// id. A failed sync is logged and the request goes on with the token subject.
func UserSync(users UserSynchronizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.Next()
			return
		}
		user, err := users.Synchronize(c.Request.Context(), claims)
		if err != nil {
			log.Printf("[auth][sync] sub=%s: %v", claims.Subject, err)
			c.Next()
			return
		}
		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}
