package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"whatsclone/internal/models"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*models.User
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{byID: map[string]*models.User{}}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memUsers) Upsert(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *memUsers) ListExcept(_ context.Context, id string) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.User
	for _, u := range m.byID {
		if u.ID != id {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memMessages struct {
	mu     sync.Mutex
	nextID int64
	rows   []*models.Message
	clock  time.Time
}

func (m *memMessages) Create(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.clock = m.clock.Add(time.Second)
	msg.ID = m.nextID
	msg.CreatedAt, msg.UpdatedAt = m.clock, m.clock
	cp := *msg
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memMessages) ListByChat(_ context.Context, chatID string) ([]*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Message
	for _, r := range m.rows {
		if r.ChatID == chatID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memMessages) MarkSeen(_ context.Context, chatID, receiverID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rows {
		if r.ChatID == chatID && r.ReceiverID == receiverID && r.State == models.MessageSent {
			r.State = models.MessageSeen
			n++
		}
	}
	return n, nil
}

type memChats struct {
	mu       sync.Mutex
	rows     map[string]*models.Chat
	messages *memMessages
}

func newMemChats(messages *memMessages) *memChats {
	return &memChats{rows: map[string]*models.Chat{}, messages: messages}
}

func (m *memChats) GetByID(_ context.Context, id string) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (m *memChats) FindByPair(_ context.Context, a, b string) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if (c.Sender.ID == a && c.Recipient.ID == b) || (c.Sender.ID == b && c.Recipient.ID == a) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memChats) Create(_ context.Context, chat *models.Chat) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if (c.Sender.ID == chat.Sender.ID && c.Recipient.ID == chat.Recipient.ID) ||
			(c.Sender.ID == chat.Recipient.ID && c.Recipient.ID == chat.Sender.ID) {
			return c.ID, nil
		}
	}
	cp := *chat
	m.rows[chat.ID] = &cp
	return chat.ID, nil
}

func (m *memChats) ListByMember(ctx context.Context, userID string) ([]*models.Chat, error) {
	m.mu.Lock()
	var out []*models.Chat
	for _, c := range m.rows {
		if c.HasMember(userID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	m.mu.Unlock()

	for _, c := range out {
		msgs, _ := m.messages.ListByChat(ctx, c.ID)
		for i := len(msgs) - 1; i >= 0; i-- {
			c.Messages = append(c.Messages, msgs[i])
		}
	}
	return out, nil
}

type sentNotification struct {
	to string
	n  models.Notification
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (d *recordingDispatcher) Dispatch(recipientID string, n *models.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentNotification{to: recipientID, n: *n})
}

func (d *recordingDispatcher) last() sentNotification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sent[len(d.sent)-1]
}

type failingStorage struct{}

func (failingStorage) Store(string, string, []byte) (string, error) {
	return "", errors.New("disk full")
}

func (failingStorage) Read(string) []byte { return []byte{} }

func (failingStorage) Remove(string) error { return nil }

// brokenMessages accepts reads but fails every insert.
type brokenMessages struct {
	memMessages
}

func (b *brokenMessages) Create(context.Context, *models.Message) error {
	return errors.New("connection reset")
}
