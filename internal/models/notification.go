package models

type NotificationType string

const (
	NotificationMessage NotificationType = "MESSAGE"
	NotificationImage   NotificationType = "IMAGE"
)

// Notification is the transient payload pushed to a user's private channel.
type Notification struct {
	ChatID      string           `json:"chat_id"`
	Content     string           `json:"content,omitempty"`
	SenderID    string           `json:"sender_id"`
	ReceiverID  string           `json:"receiver_id"`
	ChatName    string           `json:"chat_name,omitempty"`
	MessageType MessageType      `json:"message_type,omitempty"`
	Type        NotificationType `json:"type"`
	Media       []byte           `json:"media,omitempty"`
}
