package chat

import (
	"time"

	"github.com/mserg12/Major-LocNation/internal/listing"
)

// Chat is a two-party conversation. UserIDs always holds exactly two
// entries; SeenBy tracks which of them has read the latest message.
type Chat struct {
	ID          string         `json:"id"`
	UserIDs     []string       `json:"userIDs"`
	SeenBy      []string       `json:"seenBy"`
	LastMessage string         `json:"lastMessage"`
	CreatedAt   time.Time      `json:"createdAt"`
	Receiver    *listing.Owner `json:"receiver,omitempty"`
	Messages    []Message      `json:"messages,omitempty"`
}

type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	UserID    string    `json:"userId"`
	ChatID    string    `json:"chatId"`
	CreatedAt time.Time `json:"createdAt"`
}
