package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"whatsclone/internal/models"
	"whatsclone/internal/repositories"
)

// ChatService owns the one-chat-per-pair registry and the per-viewer chat list.
type ChatService struct {
	chats repositories.ChatRepository
	users repositories.UserRepository
	now   func() time.Time
}

func NewChatService(chats repositories.ChatRepository, users repositories.UserRepository) *ChatService {
	return &ChatService{chats: chats, users: users, now: time.Now}
}

// CreateChat returns the id of the chat between the two users, creating it
// with the given sender/recipient roles when the pair has never talked.
func (s *ChatService) CreateChat(ctx context.Context, senderID, receiverID string) (string, error) {
	senderID, receiverID = strings.TrimSpace(senderID), strings.TrimSpace(receiverID)
	if senderID == "" || receiverID == "" || senderID == receiverID {
		return "", ErrInvalidChat
	}

	existing, err := s.chats.FindByPair(ctx, senderID, receiverID)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("find chat by pair: %w", err)
	}

	sender, err := s.lookupUser(ctx, senderID)
	if err != nil {
		return "", err
	}
	recipient, err := s.lookupUser(ctx, receiverID)
	if err != nil {
		return "", err
	}

	chat := &models.Chat{
		ID:        uuid.NewString(),
		Sender:    sender,
		Recipient: recipient,
	}
	id, err := s.chats.Create(ctx, chat)
	if errors.Is(err, repositories.ErrReferenceMissing) {
		return "", fmt.Errorf("%w: %v", ErrUserNotFound, err)
	}
	if err != nil {
		return "", err
	}
	log.Printf("[chat][create] id=%s sender=%s recipient=%s", id, senderID, receiverID)
	return id, nil
}

func (s *ChatService) lookupUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", id, err)
	}
	return u, nil
}

func (s *ChatService) ListChatsForUser(ctx context.Context, userID string) ([]models.ChatResponse, error) {
	chats, err := s.chats.ListByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]models.ChatResponse, 0, len(chats))
	for _, c := range chats {
		out = append(out, c.ToResponse(userID, now))
	}
	return out, nil
}

func (s *ChatService) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	return loadChat(ctx, s.chats, chatID)
}

// GetChatForMember loads the chat and checks userID takes part in it.
func (s *ChatService) GetChatForMember(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	return loadMemberChat(ctx, s.chats, chatID, userID)
}

func loadChat(ctx context.Context, repo repositories.ChatRepository, chatID string) (*models.Chat, error) {
	if _, err := uuid.Parse(chatID); err != nil {
		return nil, ErrChatNotFound
	}
	chat, err := repo.GetByID(ctx, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load chat %s: %w", chatID, err)
	}
	return chat, nil
}

func loadMemberChat(ctx context.Context, repo repositories.ChatRepository, chatID, userID string) (*models.Chat, error) {
	chat, err := loadChat(ctx, repo, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasMember(userID) {
		return nil, ErrNotChatMember
	}
	return chat, nil
}
