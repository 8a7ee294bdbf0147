package models

import "time"

type MessageState string

const (
	MessageSent MessageState = "SENT"
	// MessageDelivered is part of the wire enum but nothing assigns it.
	MessageDelivered MessageState = "DELIVERED"
	MessageSeen      MessageState = "SEEN"
)

type MessageType string

const (
	MessageText  MessageType = "TEXT"
	MessageImage MessageType = "IMAGE"
	MessageVideo MessageType = "VIDEO"
	MessageAudio MessageType = "AUDIO"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageVideo, MessageAudio:
		return true
	}
	return false
}

type Message struct {
	ID            int64        `json:"id"`
	ChatID        string       `json:"chat_id"`
	Content       *string      `json:"content,omitempty"`
	State         MessageState `json:"state"`
	Type          MessageType  `json:"type"`
	SenderID      string       `json:"sender_id"`
	ReceiverID    string       `json:"receiver_id"`
	MediaFilePath *string      `json:"-"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Text returns the content or "" for content-less messages.
func (m *Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

type MessageRequest struct {
	ChatID     string      `json:"chat_id" binding:"required"`
	Content    string      `json:"content"`
	SenderID   string      `json:"sender_id"`
	ReceiverID string      `json:"receiver_id" binding:"required"`
	Type       MessageType `json:"type"`
}

type MessageResponse struct {
	ID         int64        `json:"id"`
	Content    string       `json:"content,omitempty"`
	SenderID   string       `json:"sender_id"`
	ReceiverID string       `json:"receiver_id"`
	Type       MessageType  `json:"type"`
	State      MessageState `json:"state"`
	CreatedAt  time.Time    `json:"created_at"`
	Media      []byte       `json:"media"`
}
