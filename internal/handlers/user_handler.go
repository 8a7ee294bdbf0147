package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"whatsclone/internal/models"
)

type userService interface {
	ListUsersExceptSelf(ctx context.Context, userID string) ([]models.UserResponse, error)
}

type UserHandler struct {
	users userService
}

func NewUserHandler(users userService) *UserHandler {
	return &UserHandler{users: users}
}

// @Summary      List other users
// @Tags         Users
// @Produce      json
// @Success      200  {array}  models.UserResponse
// @Security     BearerAuth
// @Router       /api/v1/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	users, err := h.users.ListUsersExceptSelf(c.Request.Context(), caller)
	if err != nil {
		log.Printf("[users][list] user=%s: %v", caller, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
