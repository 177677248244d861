package stream

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
)

func TestStreamHandlersUpgradeRequired(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), NewHub(nil))

	req := httptest.NewRequest(http.MethodGet, "/stream/ws/user-1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("expected non-200 for non-websocket request")
	}
}

func dialStream(t *testing.T, hub *Hub, userID string) (*websocket.Conn, func()) {
	t.Helper()

	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), hub)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}

	go func() {
		_ = app.Listener(ln)
	}()

	wsURL := "ws://" + ln.Addr().String() + "/stream/ws/" + userID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		ln.Close()
		t.Fatalf("dial error: %v", err)
	}
	return conn, func() {
		conn.Close()
		_ = app.Shutdown()
		ln.Close()
	}
}

func TestStreamHandlersDeliverToSocket(t *testing.T) {
	hub := NewHub(nil)
	conn, cleanup := dialStream(t, hub, "user-1")
	defer cleanup()

	if err := hub.Deliver("user-1", []byte("hello")); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(msg) != "hello" {
		t.Fatalf("unexpected message")
	}
}

func TestStreamHandlersRelaySendMessage(t *testing.T) {
	hub := NewHub(nil)

	sender, cleanupSender := dialStream(t, hub, "user-1")
	defer cleanupSender()

	receiver := hub.Register("user-2")
	defer hub.Unregister(receiver)

	frame := []byte(`{"event":"sendMessage","data":{"receiverId":"user-2","data":{"text":"hi"}}}`)
	if err := sender.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write error: %v", err)
	}

	select {
	case raw := <-receiver.Send:
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil || ev.Event != "getMessage" {
			t.Fatalf("unexpected frame %s", raw)
		}
		var body map[string]string
		if err := json.Unmarshal(ev.Data, &body); err != nil || body["text"] != "hi" {
			t.Fatalf("unexpected data %s", ev.Data)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for relayed message")
	}
}

func TestRelayDropsMalformedFrames(t *testing.T) {
	hub := NewHub(nil)
	receiver := hub.Register("user-2")
	defer hub.Unregister(receiver)

	relay(hub, []byte("not json"))
	relay(hub, []byte(`{"event":"unknown","data":{}}`))
	relay(hub, []byte(`{"event":"sendMessage","data":{"data":{"text":"no receiver"}}}`))

	select {
	case raw := <-receiver.Send:
		t.Fatalf("unexpected delivery %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStreamHandlersWebsocketWriteError(t *testing.T) {
	hub := NewHub(nil)
	conn, cleanup := dialStream(t, hub, "user-9")
	conn.Close()
	defer cleanup()

	_ = hub.Deliver("user-9", []byte("ping"))
	time.Sleep(20 * time.Millisecond)
}

func TestStreamHandlersWebsocketCloseMessage(t *testing.T) {
	hub := NewHub(nil)
	conn, cleanup := dialStream(t, hub, "user-8")
	defer cleanup()

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	conn.Close()

	_ = hub.Deliver("user-8", []byte("ping"))
	time.Sleep(20 * time.Millisecond)
}
