package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"whatsclone/internal/authz"
	"whatsclone/internal/middleware"
	"whatsclone/internal/services"
)

// callerID is the synchronized user id set by the auth middleware chain.
func callerID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.UserIDKey)
	return id, id != ""
}

func requireCaller(c *gin.Context) (string, bool) {
	id, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	}
	return id, ok
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrChatNotFound), errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotChatMember):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidChat), errors.Is(err, services.ErrInvalidMessage):
		return http.StatusBadRequest
	case errors.Is(err, authz.ErrMissingClaim), errors.Is(err, authz.ErrMalformedClaim):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status; internal details are not echoed for 5xx.
func writeError(c *gin.Context, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}
