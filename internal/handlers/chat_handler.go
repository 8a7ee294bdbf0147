package handlers

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"whatsclone/internal/models"
)

type chatService interface {
	CreateChat(ctx context.Context, senderID, receiverID string) (string, error)
	ListChatsForUser(ctx context.Context, userID string) ([]models.ChatResponse, error)
}

type transcriptService interface {
	Render(ctx context.Context, chatID, callerID string, w io.Writer) error
}

type ChatHandler struct {
	chats       chatService
	transcripts transcriptService
}

func NewChatHandler(chats chatService, transcripts transcriptService) *ChatHandler {
	return &ChatHandler{chats: chats, transcripts: transcripts}
}

// @Summary      Create or reuse a chat
// @Description  Returns the id of the chat between the two users, creating it on first contact
// @Tags         Chats
// @Produce      json
// @Param        sender-id    query     string  false  "Sender id (defaults to caller)"
// @Param        receiver-id  query     string  true   "Receiver id"
// @Success      200  {object}  models.StringResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/chats [post]
func (h *ChatHandler) CreateChat(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	senderID := strings.TrimSpace(c.Query("sender-id"))
	receiverID := strings.TrimSpace(c.Query("receiver-id"))
	if senderID == "" {
		senderID = caller
	}
	if receiverID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiver-id is required"})
		return
	}
	if caller != senderID && caller != receiverID {
		c.JSON(http.StatusForbidden, gin.H{"error": "caller must take part in the chat"})
		return
	}

	id, err := h.chats.CreateChat(c.Request.Context(), senderID, receiverID)
	if err != nil {
		log.Printf("[chat][create] sender=%s receiver=%s: %v", senderID, receiverID, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.StringResponse{Response: id})
}

// @Summary      List my chats
// @Tags         Chats
// @Produce      json
// @Success      200  {array}   models.ChatResponse
// @Security     BearerAuth
// @Router       /api/v1/chats [get]
func (h *ChatHandler) ListChats(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	chats, err := h.chats.ListChatsForUser(c.Request.Context(), caller)
	if err != nil {
		log.Printf("[chat][list] user=%s: %v", caller, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// @Summary      Export a chat transcript
// @Tags         Chats
// @Produce      application/pdf
// @Param        id  path  string  true  "Chat id"
// @Success      200
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/chats/{id}/transcript [get]
func (h *ChatHandler) Transcript(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	chatID := c.Param("id")

	var buf bytes.Buffer
	if err := h.transcripts.Render(c.Request.Context(), chatID, caller, &buf); err != nil {
		log.Printf("[chat][transcript] chat=%s user=%s: %v", chatID, caller, err)
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="chat-`+chatID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
