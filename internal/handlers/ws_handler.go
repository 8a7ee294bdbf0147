package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type wsServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID string) error
}

type WSHandler struct {
	hub wsServer
}

func NewWSHandler(hub wsServer) *WSHandler {
	return &WSHandler{hub: hub}
}

// Connect upgrades to the per-user notification channel.
func (h *WSHandler) Connect(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	if err := h.hub.ServeWS(c.Writer, c.Request, caller); err != nil {
		// the upgrader has already written an error response
		log.Printf("[ws] upgrade for user=%s failed: %v", caller, err)
	}
}
