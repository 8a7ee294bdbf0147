package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestPushToUserFansOut(t *testing.T) {
	h := NewHub(HubOptions{SendBuffer: 2})
	a1 := newClient(h, "a", nil)
	a2 := newClient(h, "a", nil)
	b := newClient(h, "b", nil)
	h.Register(a1)
	h.Register(a2)
	h.Register(b)

	if n := h.PushToUser("a", []byte("x")); n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}
	if len(b.send) != 0 {
		t.Fatalf("b must not receive a's payload")
	}
	if n := h.PushToUser("nobody", []byte("x")); n != 0 {
		t.Fatalf("expected 0 deliveries for unknown user, got %d", n)
	}
}

func TestPushToUserDropsWhenBufferFull(t *testing.T) {
	h := NewHub(HubOptions{SendBuffer: 1})
	c := newClient(h, "a", nil)
	h.Register(c)

	if n := h.PushToUser("a", []byte("1")); n != 1 {
		t.Fatalf("first push should be accepted, got %d", n)
	}
	if n := h.PushToUser("a", []byte("2")); n != 0 {
		t.Fatalf("second push should be dropped, got %d", n)
	}
	if got := string(<-c.send); got != "1" {
		t.Fatalf("unexpected payload %q", got)
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	h := NewHub(HubOptions{})
	c := newClient(h, "a", nil)
	h.Register(c)
	if !h.Online("a") {
		t.Fatalf("expected a online")
	}
	h.Unregister(c)
	h.Unregister(c)
	if h.Online("a") {
		t.Fatalf("expected a offline after unregister")
	}
	if _, ok := <-c.send; ok {
		t.Fatalf("send channel should be closed")
	}
}

func TestServeWSDeliversPush(t *testing.T) {
	h := NewHub(HubOptions{PingInterval: time.Minute})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.ServeWS(w, r, "u1"); err != nil {
			t.Errorf("serve: %v", err)
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for !h.Online("u1") {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if n := h.PushToUser("u1", []byte(`{"type":"MESSAGE"}`)); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"type":"MESSAGE"}` {
		t.Fatalf("unexpected frame %s", data)
	}
}

func TestCheckOrigin(t *testing.T) {
	h := NewHub(HubOptions{AllowedOrigins: []string{"http://localhost:3000"}})
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	if !h.checkOrigin(r) {
		t.Fatalf("expected allowed origin")
	}
	r.Header.Set("Origin", "http://evil.example")
	if h.checkOrigin(r) {
		t.Fatalf("expected rejected origin")
	}
}
