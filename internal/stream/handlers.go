package stream

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func RegisterRoutes(r fiber.Router, hub *Hub) {
	r.Get("/ws/:userID", websocket.New(func(c *websocket.Conn) {
		userID := c.Params("userID")
		client := hub.Register(userID)
		defer hub.Unregister(client)

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}
			relay(hub, raw)
		}
		<-done
	}))
}

// relay forwards a client "sendMessage" frame to its receiver as a
// "getMessage" event. Malformed frames are dropped silently, matching
// how the web client treats unknown events.
func relay(hub *Hub, raw []byte) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil || ev.Event != "sendMessage" {
		return
	}
	var body struct {
		ReceiverID string          `json:"receiverId"`
		Data       json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(ev.Data, &body); err != nil || body.ReceiverID == "" {
		return
	}
	payload, err := json.Marshal(Event{Event: "getMessage", Data: body.Data})
	if err != nil {
		return
	}
	_ = hub.Deliver(body.ReceiverID, payload)
}
