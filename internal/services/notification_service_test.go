package services

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"whatsclone/internal/models"
)

type stubPublisher struct {
	mu        sync.Mutex
	delivered int
	payloads  map[string][][]byte
}

func (p *stubPublisher) PushToUser(userID string, payload []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.payloads == nil {
		p.payloads = map[string][][]byte{}
	}
	p.payloads[userID] = append(p.payloads[userID], payload)
	return p.delivered
}

type stubMailer struct {
	calls chan [4]string
}

func (m *stubMailer) SendNewMessageEmail(to, recipientName, senderName, preview string) error {
	m.calls <- [4]string{to, recipientName, senderName, preview}
	return nil
}

func TestDispatchPushesJSON(t *testing.T) {
	pub := &stubPublisher{delivered: 1}
	svc := NewNotificationService(pub, newMemUsers(), nil)

	svc.Dispatch("u2", &models.Notification{ChatID: "c1", Content: "hi", SenderID: "u1", ReceiverID: "u2", Type: models.NotificationMessage})

	if len(pub.payloads["u2"]) != 1 {
		t.Fatalf("expected one push to u2")
	}
	var got models.Notification
	if err := json.Unmarshal(pub.payloads["u2"][0], &got); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if got.ChatID != "c1" || got.Content != "hi" || got.Type != models.NotificationMessage {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestDispatchMailsOfflineRecipient(t *testing.T) {
	users := newMemUsers(
		&models.User{ID: "u1", FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com"},
		&models.User{ID: "u2", FirstName: "Ben", LastName: "Okafor", Email: "ben@example.com"},
	)
	mailer := &stubMailer{calls: make(chan [4]string, 1)}
	svc := NewNotificationService(&stubPublisher{}, users, mailer)

	svc.Dispatch("u2", &models.Notification{ChatID: "c1", SenderID: "u1", ReceiverID: "u2", Type: models.NotificationImage})

	select {
	case call := <-mailer.calls:
		want := [4]string{"ben@example.com", "Ben Okafor", "Ana Lopez", models.LastMessageAttachment}
		if call != want {
			t.Fatalf("unexpected mail %v", call)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("offline recipient was not mailed")
	}
}

func TestDispatchSkipsMailForOnlineOrEmpty(t *testing.T) {
	users := newMemUsers(&models.User{ID: "u2", Email: "ben@example.com"})
	mailer := &stubMailer{calls: make(chan [4]string, 2)}

	online := NewNotificationService(&stubPublisher{delivered: 1}, users, mailer)
	online.Dispatch("u2", &models.Notification{Content: "hi", Type: models.NotificationMessage})

	offline := NewNotificationService(&stubPublisher{}, users, mailer)
	offline.Dispatch("u2", &models.Notification{Type: models.NotificationMessage})

	select {
	case call := <-mailer.calls:
		t.Fatalf("unexpected mail %v", call)
	case <-time.After(100 * time.Millisecond):
	}
}
