package models

import "time"

// LastMessageAttachment is shown as the preview of any non-text message.
const LastMessageAttachment = "Attachment"

// Chat is a conversation between exactly two users. Sender is whoever created
// it; the roles never swap afterwards.
type Chat struct {
	ID        string    `json:"id"`
	Sender    *User     `json:"sender"`
	Recipient *User     `json:"recipient"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages, newest first. List queries load only the newest one and
	// fill Unread instead.
	Messages []*Message `json:"-"`
	// Unread holds precomputed unread counts by viewer id when set.
	Unread map[string]int `json:"-"`
}

func (c *Chat) HasMember(userID string) bool {
	return c.Sender.ID == userID || c.Recipient.ID == userID
}

// Counterpart returns the participant that is not userID.
func (c *Chat) Counterpart(userID string) *User {
	if c.Recipient.ID == userID {
		return c.Sender
	}
	return c.Recipient
}

// Name is the chat title as seen by viewer: the other participant's name.
func (c *Chat) Name(viewerID string) string {
	if c.Recipient.ID == viewerID {
		return c.Sender.FullName()
	}
	return c.Recipient.FullName()
}

// TargetName is the chat name carried by a notification sent by senderID.
func (c *Chat) TargetName(senderID string) string {
	if c.Sender.ID == senderID {
		return c.Sender.FullName()
	}
	return c.Recipient.FullName()
}

// Roles resolves who sends and who receives when callerID acts on the chat.
func (c *Chat) Roles(callerID string) (senderID, recipientID string) {
	if c.Sender.ID == callerID {
		return c.Sender.ID, c.Recipient.ID
	}
	return c.Recipient.ID, c.Sender.ID
}

func (c *Chat) UnreadCount(viewerID string) int {
	if c.Unread != nil {
		return c.Unread[viewerID]
	}
	n := 0
	for _, m := range c.Messages {
		if m.ReceiverID == viewerID && m.State == MessageSent {
			n++
		}
	}
	return n
}

func (c *Chat) LastMessage() string {
	if len(c.Messages) == 0 {
		return ""
	}
	last := c.Messages[0]
	if last.Type != MessageText {
		return LastMessageAttachment
	}
	return last.Text()
}

func (c *Chat) LastMessageTime() *time.Time {
	if len(c.Messages) == 0 {
		return nil
	}
	t := c.Messages[0].CreatedAt
	return &t
}

type ChatResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	UnreadCount     int        `json:"unread_count"`
	LastMessage     string     `json:"last_message,omitempty"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`
	RecipientOnline bool       `json:"recipient_online"`
	SenderID        string     `json:"sender_id"`
	ReceiverID      string     `json:"receiver_id"`
}

func (c *Chat) ToResponse(viewerID string, now time.Time) ChatResponse {
	return ChatResponse{
		ID:              c.ID,
		Name:            c.Name(viewerID),
		UnreadCount:     c.UnreadCount(viewerID),
		LastMessage:     c.LastMessage(),
		LastMessageTime: c.LastMessageTime(),
		RecipientOnline: c.Counterpart(viewerID).IsOnline(now),
		SenderID:        c.Sender.ID,
		ReceiverID:      c.Recipient.ID,
	}
}

// StringResponse wraps a single identifier returned by create endpoints.
type StringResponse struct {
	Response string `json:"response"`
}
