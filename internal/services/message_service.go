package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"whatsclone/internal/models"
	"whatsclone/internal/repositories"
)

// MessageService appends messages, tracks read state and triggers the push
// notification once the write has been committed.
type MessageService struct {
	messages repositories.MessageRepository
	chats    repositories.ChatRepository
	files    FileStorage
	notifier Dispatcher
}

func NewMessageService(
	messages repositories.MessageRepository,
	chats repositories.ChatRepository,
	files FileStorage,
	notifier Dispatcher,
) *MessageService {
	return &MessageService{messages: messages, chats: chats, files: files, notifier: notifier}
}

func (s *MessageService) AppendMessage(ctx context.Context, req models.MessageRequest) (*models.Message, error) {
	chat, err := loadChat(ctx, s.chats, req.ChatID)
	if err != nil {
		return nil, err
	}

	if req.Type == "" {
		req.Type = models.MessageText
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, req.Type)
	}
	if req.Type == models.MessageText && strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: text message without content", ErrInvalidMessage)
	}
	if req.SenderID == req.ReceiverID {
		return nil, fmt.Errorf("%w: sender and receiver are the same user", ErrInvalidMessage)
	}
	if !chat.HasMember(req.SenderID) || !chat.HasMember(req.ReceiverID) {
		return nil, ErrNotChatMember
	}

	msg := &models.Message{
		ChatID:     chat.ID,
		State:      models.MessageSent,
		Type:       req.Type,
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
	}
	if req.Content != "" {
		content := req.Content
		msg.Content = &content
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, storeError(err)
	}
	log.Printf("[messages][append] id=%d chat=%s %s -> %s", msg.ID, chat.ID, msg.SenderID, msg.ReceiverID)

	s.notifier.Dispatch(msg.ReceiverID, &models.Notification{
		ChatID:      chat.ID,
		Content:     req.Content,
		SenderID:    msg.SenderID,
		ReceiverID:  msg.ReceiverID,
		ChatName:    chat.TargetName(msg.SenderID),
		MessageType: msg.Type,
		Type:        models.NotificationMessage,
	})
	return msg, nil
}

// AppendMediaMessage stores an uploaded image on behalf of callerID. The
// caller's role in the chat decides who is sender and who is recipient.
func (s *MessageService) AppendMediaMessage(ctx context.Context, chatID, callerID, fileName string, data []byte) (*models.Message, error) {
	chat, err := loadMemberChat(ctx, s.chats, chatID, callerID)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidMessage)
	}

	senderID, recipientID := chat.Roles(callerID)
	path, err := s.files.Store(senderID, fileName, data)
	if err != nil {
		log.Printf("[messages][media] store for chat=%s failed: %v", chat.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	msg := &models.Message{
		ChatID:        chat.ID,
		State:         models.MessageSent,
		Type:          models.MessageImage,
		SenderID:      senderID,
		ReceiverID:    recipientID,
		MediaFilePath: &path,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		if rmErr := s.files.Remove(path); rmErr != nil {
			log.Printf("[messages][media] cleanup of %s failed: %v", path, rmErr)
		}
		return nil, storeError(err)
	}
	log.Printf("[messages][media] id=%d chat=%s %s -> %s path=%s", msg.ID, chat.ID, senderID, recipientID, path)

	s.notifier.Dispatch(recipientID, &models.Notification{
		ChatID:      chat.ID,
		SenderID:    senderID,
		ReceiverID:  recipientID,
		MessageType: models.MessageImage,
		Type:        models.NotificationImage,
		Media:       s.files.Read(path),
	})
	return msg, nil
}

// ListMessages returns the chat history oldest first with media inlined.
func (s *MessageService) ListMessages(ctx context.Context, chatID, callerID string) ([]models.MessageResponse, error) {
	if _, err := loadMemberChat(ctx, s.chats, chatID, callerID); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	out := make([]models.MessageResponse, 0, len(messages))
	for _, m := range messages {
		resp := models.MessageResponse{
			ID:         m.ID,
			Content:    m.Text(),
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Type:       m.Type,
			State:      m.State,
			CreatedAt:  m.CreatedAt,
			Media:      []byte{},
		}
		if m.MediaFilePath != nil {
			resp.Media = s.files.Read(*m.MediaFilePath)
		}
		out = append(out, resp)
	}
	return out, nil
}

// MarkSeen acknowledges every pending message addressed to callerID in the
// chat. Messages the caller sent are left alone.
func (s *MessageService) MarkSeen(ctx context.Context, chatID, callerID string) (int64, error) {
	chat, err := loadMemberChat(ctx, s.chats, chatID, callerID)
	if err != nil {
		return 0, err
	}
	n, err := s.messages.MarkSeen(ctx, chat.ID, callerID)
	if err != nil {
		return 0, err
	}
	counterpart := chat.Counterpart(callerID).ID
	log.Printf("[messages][seen] chat=%s reader=%s updated=%d", chat.ID, callerID, n)

	// read receipt: SenderID is the reader, ReceiverID the author being told
	s.notifier.Dispatch(counterpart, &models.Notification{
		ChatID:     chat.ID,
		SenderID:   callerID,
		ReceiverID: counterpart,
		Type:       models.NotificationMessage,
	})
	return n, nil
}

func storeError(err error) error {
	if errors.Is(err, repositories.ErrReferenceMissing) {
		return fmt.Errorf("%w: %v", ErrChatNotFound, err)
	}
	return err
}
