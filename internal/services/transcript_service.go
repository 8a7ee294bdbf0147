package services

import (
	"context"
	"io"
	"log"
	"time"

	"whatsclone/internal/models"
	"whatsclone/internal/pdf"
	"whatsclone/internal/repositories"
)

const transcriptAttachment = "[attachment]"

// TranscriptService exports a chat history as a PDF for one of its members.
type TranscriptService struct {
	chats    repositories.ChatRepository
	messages repositories.MessageRepository
	renderer pdf.Renderer
	now      func() time.Time
}

func NewTranscriptService(chats repositories.ChatRepository, messages repositories.MessageRepository, renderer pdf.Renderer) *TranscriptService {
	return &TranscriptService{chats: chats, messages: messages, renderer: renderer, now: time.Now}
}

func (s *TranscriptService) Render(ctx context.Context, chatID, callerID string, w io.Writer) error {
	chat, err := loadMemberChat(ctx, s.chats, chatID, callerID)
	if err != nil {
		return err
	}
	messages, err := s.messages.ListByChat(ctx, chat.ID)
	if err != nil {
		return err
	}

	data := pdf.TranscriptData{
		ChatID:      chat.ID,
		Title:       "Chat with " + chat.Name(callerID),
		GeneratedAt: s.now().UTC(),
		Lines:       make([]pdf.TranscriptLine, 0, len(messages)),
	}
	for _, m := range messages {
		text := m.Text()
		if m.Type != models.MessageText {
			text = transcriptAttachment
		}
		data.Lines = append(data.Lines, pdf.TranscriptLine{
			At:     m.CreatedAt,
			Author: authorName(chat, m.SenderID),
			Text:   text,
		})
	}

	log.Printf("[chat][transcript] chat=%s by=%s messages=%d", chat.ID, callerID, len(messages))
	return s.renderer.RenderTranscript(w, data)
}

func authorName(chat *models.Chat, userID string) string {
	for _, u := range []*models.User{chat.Sender, chat.Recipient} {
		if u != nil && u.ID == userID {
			if name := u.FullName(); name != "" {
				return name
			}
		}
	}
	return userID
}
