package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"whatsclone/internal/models"
)

func TestSendListMarkSeenScenario(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	id, err := f.chatSvc.CreateChat(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	msg, err := f.msgSvc.AppendMessage(ctx, models.MessageRequest{ChatID: id, Content: "hi", SenderID: "u1", ReceiverID: "u2", Type: models.MessageText})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if msg.State != models.MessageSent {
		t.Fatalf("new message should be SENT, got %s", msg.State)
	}

	note := f.notes.last()
	if note.to != "u2" || note.n.Content != "hi" || note.n.Type != models.NotificationMessage || note.n.ChatName != "Ana Lopez" {
		t.Fatalf("unexpected notification %+v", note)
	}

	list, err := f.msgSvc.ListMessages(ctx, id, "u2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Content != "hi" || list[0].State != models.MessageSent {
		t.Fatalf("unexpected list %+v", list)
	}

	n, err := f.msgSvc.MarkSeen(ctx, id, "u2")
	if err != nil || n != 1 {
		t.Fatalf("mark seen: n=%d err=%v", n, err)
	}
	list, _ = f.msgSvc.ListMessages(ctx, id, "u1")
	if list[0].State != models.MessageSeen {
		t.Fatalf("expected SEEN, got %s", list[0].State)
	}

	seen := f.notes.last()
	if seen.to != "u1" || seen.n.SenderID != "u2" || seen.n.Content != "" {
		t.Fatalf("unexpected seen notification %+v", seen)
	}
}

func TestMarkSeenLeavesOwnMessagesAlone(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	id, _ := f.chatSvc.CreateChat(ctx, "u1", "u2")

	_, _ = f.msgSvc.AppendMessage(ctx, models.MessageRequest{ChatID: id, Content: "to ben", SenderID: "u1", ReceiverID: "u2"})
	_, _ = f.msgSvc.AppendMessage(ctx, models.MessageRequest{ChatID: id, Content: "to ana", SenderID: "u2", ReceiverID: "u1"})

	if n, err := f.msgSvc.MarkSeen(ctx, id, "u2"); err != nil || n != 1 {
		t.Fatalf("expected one update, got n=%d err=%v", n, err)
	}

	chats, _ := f.chatSvc.ListChatsForUser(ctx, "u1")
	if chats[0].UnreadCount != 1 {
		t.Fatalf("u1 should still have one unread, got %d", chats[0].UnreadCount)
	}
	chats, _ = f.chatSvc.ListChatsForUser(ctx, "u2")
	if chats[0].UnreadCount != 0 {
		t.Fatalf("u2 should have none unread, got %d", chats[0].UnreadCount)
	}
}

func TestAppendMessageValidation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	id, _ := f.chatSvc.CreateChat(ctx, "u1", "u2")

	cases := []struct {
		name string
		req  models.MessageRequest
		want error
	}{
		{"unknown chat", models.MessageRequest{ChatID: "6f1c2d3e-0000-4000-8000-000000000000", Content: "x", SenderID: "u1", ReceiverID: "u2"}, ErrChatNotFound},
		{"empty text", models.MessageRequest{ChatID: id, Content: "  ", SenderID: "u1", ReceiverID: "u2"}, ErrInvalidMessage},
		{"bad type", models.MessageRequest{ChatID: id, Content: "x", SenderID: "u1", ReceiverID: "u2", Type: "GIF"}, ErrInvalidMessage},
		{"outsider", models.MessageRequest{ChatID: id, Content: "x", SenderID: "u3", ReceiverID: "u2"}, ErrNotChatMember},
		{"self", models.MessageRequest{ChatID: id, Content: "x", SenderID: "u1", ReceiverID: "u1"}, ErrInvalidMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.msgSvc.AppendMessage(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if len(f.messages.rows) != 0 {
		t.Fatalf("rejected messages must not be stored")
	}
}

func TestAppendMediaMessage(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	id, _ := f.chatSvc.CreateChat(ctx, "u1", "u2")

	msg, err := f.msgSvc.AppendMediaMessage(ctx, id, "u2", "photo.PNG", []byte("image-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if msg.Type != models.MessageImage || msg.SenderID != "u2" || msg.ReceiverID != "u1" {
		t.Fatalf("roles not resolved from caller: %+v", msg)
	}
	if msg.MediaFilePath == nil || *msg.MediaFilePath == "" {
		t.Fatalf("media path not recorded")
	}

	note := f.notes.last()
	if note.to != "u1" || note.n.Type != models.NotificationImage || string(note.n.Media) != "image-bytes" {
		t.Fatalf("unexpected notification %+v", note)
	}

	list, _ := f.msgSvc.ListMessages(ctx, id, "u1")
	if len(list) != 1 || string(list[0].Media) != "image-bytes" {
		t.Fatalf("media not inlined in history: %+v", list)
	}

	chats, _ := f.chatSvc.ListChatsForUser(ctx, "u1")
	if chats[0].LastMessage != models.LastMessageAttachment {
		t.Fatalf("expected attachment preview, got %q", chats[0].LastMessage)
	}
}

func TestAppendMediaMessageStorageFailure(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	id, _ := f.chatSvc.CreateChat(ctx, "u1", "u2")
	svc := NewMessageService(f.messages, f.chats, failingStorage{}, f.notes)

	if _, err := svc.AppendMediaMessage(ctx, id, "u1", "a.png", []byte("x")); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if len(f.messages.rows) != 0 || len(f.notes.sent) != 0 {
		t.Fatalf("failed upload must not store or notify")
	}
}

func TestAppendMediaMessageRemovesFileWhenInsertFails(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	id, _ := f.chatSvc.CreateChat(ctx, "u1", "u2")

	root := t.TempDir()
	svc := NewMessageService(&brokenMessages{}, f.chats, NewFileService(root), f.notes)
	if _, err := svc.AppendMediaMessage(ctx, id, "u1", "a.png", []byte("x")); err == nil {
		t.Fatalf("expected insert failure to surface")
	}

	entries, err := os.ReadDir(filepath.Join(root, "users", "u1"))
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("orphaned upload left behind: %v", entries)
	}
	if len(f.notes.sent) != 0 {
		t.Fatalf("failed upload must not notify")
	}
}

func TestListMessagesRequiresMembership(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	id, _ := f.chatSvc.CreateChat(ctx, "u1", "u2")

	if _, err := f.msgSvc.ListMessages(ctx, id, "u3"); !errors.Is(err, ErrNotChatMember) {
		t.Fatalf("expected ErrNotChatMember, got %v", err)
	}
	if _, err := f.msgSvc.MarkSeen(ctx, id, "u3"); !errors.Is(err, ErrNotChatMember) {
		t.Fatalf("expected ErrNotChatMember, got %v", err)
	}
}
