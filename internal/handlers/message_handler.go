package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"whatsclone/internal/models"
)

type messageService interface {
	AppendMessage(ctx context.Context, req models.MessageRequest) (*models.Message, error)
	AppendMediaMessage(ctx context.Context, chatID, callerID, fileName string, data []byte) (*models.Message, error)
	ListMessages(ctx context.Context, chatID, callerID string) ([]models.MessageResponse, error)
	MarkSeen(ctx context.Context, chatID, callerID string) (int64, error)
}

type MessageHandler struct {
	messages    messageService
	maxUploadMB int64
}

func NewMessageHandler(messages messageService, maxUploadMB int64) *MessageHandler {
	return &MessageHandler{messages: messages, maxUploadMB: maxUploadMB}
}

// @Summary      Send a message
// @Tags         Messages
// @Accept       json
// @Param        message  body  models.MessageRequest  true  "Message"
// @Success      201
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/messages [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req models.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SenderID == "" {
		req.SenderID = caller
	}
	if req.SenderID != caller {
		c.JSON(http.StatusForbidden, gin.H{"error": "sender-id must be the caller"})
		return
	}

	if _, err := h.messages.AppendMessage(c.Request.Context(), req); err != nil {
		log.Printf("[messages][send] chat=%s sender=%s: %v", req.ChatID, req.SenderID, err)
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// @Summary      Upload an image into a chat
// @Tags         Messages
// @Accept       multipart/form-data
// @Param        chat-id  query     string  true  "Chat id"
// @Param        file     formData  file    true  "Image"
// @Success      201
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/messages/upload-media [post]
func (h *MessageHandler) UploadMedia(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	chatID := c.Query("chat-id")
	if chatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat-id is required"})
		return
	}

	limit := h.maxUploadMB << 20
	if limit > 0 {
		// one extra MB of headroom for multipart framing
		bodyLimit := limit + 1<<20
		if c.Request.ContentLength > bodyLimit {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d MB", h.maxUploadMB)})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bodyLimit)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d MB", h.maxUploadMB)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if limit > 0 && fh.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d MB", h.maxUploadMB)})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open upload"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}

	if _, err := h.messages.AppendMediaMessage(c.Request.Context(), chatID, caller, fh.Filename, data); err != nil {
		log.Printf("[messages][media] chat=%s user=%s: %v", chatID, caller, err)
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// @Summary      Mark a chat as seen
// @Tags         Messages
// @Param        chat-id  query  string  true  "Chat id"
// @Success      202
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/messages [patch]
func (h *MessageHandler) MarkSeen(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	chatID := c.Query("chat-id")
	if chatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat-id is required"})
		return
	}
	if _, err := h.messages.MarkSeen(c.Request.Context(), chatID, caller); err != nil {
		log.Printf("[messages][seen] chat=%s user=%s: %v", chatID, caller, err)
		writeError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// @Summary      List chat messages
// @Tags         Messages
// @Produce      json
// @Param        id  path  string  true  "Chat id"
// @Success      200  {array}   models.MessageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/v1/messages/chat/{id} [get]
func (h *MessageHandler) ListMessages(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	msgs, err := h.messages.ListMessages(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}
