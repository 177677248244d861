package stream

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/mserg12/Major-LocNation/internal/chat"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubDeliverLocal(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("user-1")
	defer hub.Unregister(client)

	if err := hub.Deliver("user-1", []byte("hello")); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	select {
	case msg := <-client.Send:
		if string(msg) != "hello" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("abc")
	if ch != "chat:abc:events" {
		t.Fatalf("unexpected channel %q", ch)
	}
	if userIDFromChannel(ch) != "abc" {
		t.Fatalf("unexpected user id")
	}
	if userIDFromChannel("bad") != "" {
		t.Fatalf("expected empty user id")
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("user-2")
	hub.Unregister(client)
	_, ok := <-client.Send
	if ok {
		t.Fatalf("expected channel closed")
	}
}

func TestConcurrentDeliverAndUnregister(t *testing.T) {
	hub := NewHub(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				client := hub.Register("user-1")
				hub.deliverLocal("user-1", []byte("x"))
				hub.Unregister(client)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 1000; j++ {
			hub.deliverLocal("user-1", []byte("y"))
		}
	}()
	wg.Wait()
}

func TestHubDeliverThroughRedis(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	hub := NewHub(client)
	ws := hub.Register("user-redis")
	defer hub.Unregister(ws)

	// the pattern subscription needs a moment to come up
	time.Sleep(20 * time.Millisecond)
	if err := hub.Deliver("user-redis", []byte("ping")); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	select {
	case msg := <-ws.Send:
		if string(msg) != "ping" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for delivery")
	}
}

func TestHubForwardsForeignPublishes(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	hub := NewHub(client)
	ws := hub.Register("user-3")
	defer hub.Unregister(ws)

	time.Sleep(20 * time.Millisecond)
	if err := client.Publish(context.Background(), "chat:user-3:events", "pong").Err(); err != nil {
		t.Fatalf("publish error: %v", err)
	}

	select {
	case msg := <-ws.Send:
		if string(msg) != "pong" {
			t.Fatalf("unexpected message from redis")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for redis message")
	}
}

func TestHubDeliverRedisError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()
	defer client.Close()

	hub := NewHub(client)
	ws := hub.Register("user-bad")
	defer hub.Unregister(ws)

	if err := hub.Deliver("user-bad", []byte("ping")); err == nil {
		t.Fatalf("expected publish error")
	}
}

func TestHubNewMessageEnvelope(t *testing.T) {
	hub := NewHub(nil)
	ws := hub.Register("user-2")
	defer hub.Unregister(ws)

	msg := chat.Message{ID: "msg-1", Text: "hello", UserID: "user-1", ChatID: "chat-1"}
	if err := hub.NewMessage(context.Background(), "user-2", msg); err != nil {
		t.Fatalf("new message: %v", err)
	}

	select {
	case raw := <-ws.Send:
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if ev.Event != "getMessage" {
			t.Fatalf("unexpected event %q", ev.Event)
		}
		var got chat.Message
		if err := json.Unmarshal(ev.Data, &got); err != nil || got.ID != "msg-1" || got.Text != "hello" {
			t.Fatalf("unexpected data %s", ev.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}
