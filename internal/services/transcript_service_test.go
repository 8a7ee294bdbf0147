package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"whatsclone/internal/models"
	"whatsclone/internal/pdf"
)

type captureRenderer struct {
	data pdf.TranscriptData
}

func (r *captureRenderer) RenderTranscript(w io.Writer, data pdf.TranscriptData) error {
	r.data = data
	_, err := io.WriteString(w, "%PDF-")
	return err
}

func TestTranscriptRender(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	id, _ := f.chatSvc.CreateChat(ctx, "u1", "u2")
	_, _ = f.msgSvc.AppendMessage(ctx, models.MessageRequest{ChatID: id, Content: "hi", SenderID: "u1", ReceiverID: "u2"})
	_, _ = f.msgSvc.AppendMediaMessage(ctx, id, "u2", "a.png", []byte("x"))

	r := &captureRenderer{}
	svc := NewTranscriptService(f.chats, f.messages, r)

	var buf bytes.Buffer
	if err := svc.Render(ctx, id, "u2", &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if r.data.Title != "Chat with Ana Lopez" || len(r.data.Lines) != 2 {
		t.Fatalf("unexpected transcript %+v", r.data)
	}
	if r.data.Lines[0].Author != "Ana Lopez" || r.data.Lines[0].Text != "hi" {
		t.Fatalf("unexpected first line %+v", r.data.Lines[0])
	}
	if r.data.Lines[1].Author != "Ben Okafor" || r.data.Lines[1].Text != transcriptAttachment {
		t.Fatalf("unexpected second line %+v", r.data.Lines[1])
	}

	if err := svc.Render(ctx, id, "u3", &buf); !errors.Is(err, ErrNotChatMember) {
		t.Fatalf("expected ErrNotChatMember, got %v", err)
	}
}
