package stream

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mserg12/Major-LocNation/internal/chat"

	"github.com/redis/go-redis/v9"
)

// Event is the envelope exchanged over the websocket: "sendMessage"
// inbound from clients, "getMessage" outbound to receivers.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Hub fans chat events out to a user's open websocket connections.
// Cross-instance delivery rides on redis pub/sub.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	UserID string
	Send   chan []byte
	closed bool // guarded by Hub.mu
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(userID string) *Client {
	client := &Client{
		UserID: userID,
		Send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*Client]struct{}{}
	}
	h.clients[userID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userClients, ok := h.clients[client.UserID]; ok {
		delete(userClients, client)
		if len(userClients) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	if !client.closed {
		client.closed = true
		close(client.Send)
	}
}

// Deliver routes a payload to every connection of the user. With redis
// configured it goes through pub/sub so every instance, this one
// included, picks it up exactly once; without redis it fans out
// locally. A slow connection drops the frame rather than blocking the
// hub.
func (h *Hub) Deliver(userID string, payload []byte) error {
	if h.redis != nil {
		return h.redis.Publish(context.Background(), redisChannel(userID), payload).Err()
	}

	h.deliverLocal(userID, payload)
	return nil
}

func (h *Hub) deliverLocal(userID string, payload []byte) {
	// The read lock is held across the sends so Unregister cannot close
	// a Send channel mid fan-out.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		if client.closed {
			continue
		}
		select {
		case client.Send <- payload:
		default:
		}
	}
}

// NewMessage satisfies chat.Notifier: a persisted message becomes a
// "getMessage" event for its receiver.
func (h *Hub) NewMessage(_ context.Context, receiverID string, msg chat.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(Event{Event: "getMessage", Data: data})
	if err != nil {
		return err
	}
	return h.Deliver(receiverID, payload)
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "chat:*:events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliverLocal(userIDFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(userID string) string {
	return "chat:" + userID + ":events"
}

func userIDFromChannel(ch string) string {
	// chat:{user}:events
	const prefix = "chat:"
	const suffix = ":events"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
