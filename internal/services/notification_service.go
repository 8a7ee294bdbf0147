package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"whatsclone/internal/models"
	"whatsclone/internal/repositories"
)

// Publisher pushes a payload to every live connection of a user and reports
// how many connections accepted it.
type Publisher interface {
	PushToUser(userID string, payload []byte) int
}

// Dispatcher is what the message flow needs from the notification side.
type Dispatcher interface {
	Dispatch(recipientID string, n *models.Notification)
}

// NotificationService delivers at most once: nothing is queued, retried or
// stored. A recipient who is not connected misses the push and catches up by
// listing messages.
type NotificationService struct {
	publisher Publisher
	users     repositories.UserRepository
	mailer    MailNotifier
}

// NewNotificationService accepts a nil mailer, which disables the offline e-mail.
func NewNotificationService(publisher Publisher, users repositories.UserRepository, mailer MailNotifier) *NotificationService {
	return &NotificationService{publisher: publisher, users: users, mailer: mailer}
}

func (s *NotificationService) Dispatch(recipientID string, n *models.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		log.Printf("[notify] encode notification for chat=%s failed: %v", n.ChatID, err)
		return
	}

	delivered := s.publisher.PushToUser(recipientID, payload)
	log.Printf("[notify] type=%s chat=%s to=%s connections=%d", n.Type, n.ChatID, recipientID, delivered)

	if delivered == 0 && s.mailer != nil && carriesMessage(n) {
		go s.mailOffline(recipientID, *n)
	}
}

func carriesMessage(n *models.Notification) bool {
	return n.Type == models.NotificationImage || n.Content != ""
}

func (s *NotificationService) mailOffline(recipientID string, n models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		log.Printf("[notify][mail] recipient %s lookup failed: %v", recipientID, err)
		return
	}
	senderName := n.SenderID
	if sender, err := s.users.GetByID(ctx, n.SenderID); err == nil && sender.FullName() != "" {
		senderName = sender.FullName()
	}

	preview := n.Content
	if n.Type == models.NotificationImage {
		preview = models.LastMessageAttachment
	}
	if err := s.mailer.SendNewMessageEmail(recipient.Email, recipient.FullName(), senderName, preview); err != nil {
		// warn but never fail the originating request
		log.Printf("[notify][mail] warning: %v", err)
	}
}
