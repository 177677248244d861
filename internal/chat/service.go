package chat

import (
	"context"
	"errors"
	"log"

	"github.com/mserg12/Major-LocNation/internal/db"
	"github.com/mserg12/Major-LocNation/internal/listing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("chat not found")

// Notifier pushes a freshly persisted message towards its receiver.
// Delivery is best effort; the message is already durable when this
// runs.
type Notifier interface {
	NewMessage(ctx context.Context, receiverID string, msg Message) error
}

type Service struct {
	db       db.Querier
	notifier Notifier
}

// NewService builds a chat service. notifier may be nil, in which case
// messages are persisted without live delivery.
func NewService(db db.Querier, notifier Notifier) *Service {
	return &Service{db: db, notifier: notifier}
}

// ListChats returns every conversation the user takes part in, newest
// first, each carrying the other participant's public profile.
func (s *Service) ListChats(ctx context.Context, userID string) ([]Chat, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.user_ids, c.seen_by, c.last_message, c.created_at,
		       u.id, u.username, u.avatar
		FROM chats c
		JOIN users u ON u.id = (CASE WHEN c.user_ids[1] = $1 THEN c.user_ids[2] ELSE c.user_ids[1] END)
		WHERE $1 = ANY(c.user_ids)
		ORDER BY c.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := []Chat{}
	for rows.Next() {
		var c Chat
		var receiver ownerRow
		if err := rows.Scan(&c.ID, &c.UserIDs, &c.SeenBy, &c.LastMessage, &c.CreatedAt,
			&receiver.ID, &receiver.Username, &receiver.Avatar); err != nil {
			return nil, err
		}
		c.Receiver = receiver.owner()
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// GetChat loads one conversation with its messages in send order and
// marks it read for the caller. Non-participants get ErrNotFound; the
// chat's existence is not revealed to them.
func (s *Service) GetChat(ctx context.Context, id, userID string) (Chat, error) {
	var c Chat
	var receiver ownerRow
	err := s.db.QueryRow(ctx, `
		SELECT c.id, c.user_ids, c.seen_by, c.last_message, c.created_at,
		       u.id, u.username, u.avatar
		FROM chats c
		JOIN users u ON u.id = (CASE WHEN c.user_ids[1] = $2 THEN c.user_ids[2] ELSE c.user_ids[1] END)
		WHERE c.id = $1 AND $2 = ANY(c.user_ids)
	`, id, userID).Scan(&c.ID, &c.UserIDs, &c.SeenBy, &c.LastMessage, &c.CreatedAt,
		&receiver.ID, &receiver.Username, &receiver.Avatar)
	if errors.Is(err, pgx.ErrNoRows) {
		return Chat{}, ErrNotFound
	}
	if err != nil {
		return Chat{}, err
	}
	c.Receiver = receiver.owner()

	rows, err := s.db.Query(ctx, `
		SELECT id, text, user_id, chat_id, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC
	`, id)
	if err != nil {
		return Chat{}, err
	}
	defer rows.Close()

	c.Messages = []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Text, &m.UserID, &m.ChatID, &m.CreatedAt); err != nil {
			return Chat{}, err
		}
		c.Messages = append(c.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return Chat{}, err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE chats SET seen_by = array_append(seen_by, $2)
		WHERE id = $1 AND NOT ($2 = ANY(seen_by))
	`, id, userID)
	if err != nil {
		return Chat{}, err
	}
	if !contains(c.SeenBy, userID) {
		c.SeenBy = append(c.SeenBy, userID)
	}
	return c, nil
}

// CreateChat opens a conversation between the caller and receiverID.
// Duplicate pairs are allowed; the client reuses whichever chat it
// navigated from.
func (s *Service) CreateChat(ctx context.Context, userID, receiverID string) (Chat, error) {
	c := Chat{
		ID:      uuid.NewString(),
		UserIDs: []string{userID, receiverID},
		SeenBy:  []string{userID},
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO chats (id, user_ids, seen_by, last_message)
		VALUES ($1, $2, $3, '')
		RETURNING created_at
	`, c.ID, c.UserIDs, c.SeenBy).Scan(&c.CreatedAt)
	if err != nil {
		return Chat{}, err
	}
	return c, nil
}

// MarkRead resets the seen set to just the caller.
func (s *Service) MarkRead(ctx context.Context, id, userID string) (Chat, error) {
	var c Chat
	err := s.db.QueryRow(ctx, `
		UPDATE chats SET seen_by = ARRAY[$2]
		WHERE id = $1 AND $2 = ANY(user_ids)
		RETURNING id, user_ids, seen_by, last_message, created_at
	`, id, userID).Scan(&c.ID, &c.UserIDs, &c.SeenBy, &c.LastMessage, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Chat{}, ErrNotFound
	}
	if err != nil {
		return Chat{}, err
	}
	return c, nil
}

func (s *Service) DeleteChat(ctx context.Context, id, userID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM chats WHERE id = $1 AND $2 = ANY(user_ids)
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMessage persists a message and updates the chat's envelope in one
// transaction, then notifies the receiver. A failed notification never
// fails the send.
func (s *Service) AddMessage(ctx context.Context, chatID, userID, text string) (Message, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Message{}, err
	}
	defer tx.Rollback(ctx)

	var userIDs []string
	err = tx.QueryRow(ctx, `
		SELECT user_ids FROM chats
		WHERE id = $1 AND $2 = ANY(user_ids)
		FOR UPDATE
	`, chatID, userID).Scan(&userIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return Message{}, ErrNotFound
	}
	if err != nil {
		return Message{}, err
	}

	msg := Message{
		ID:     uuid.NewString(),
		Text:   text,
		UserID: userID,
		ChatID: chatID,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO messages (id, chat_id, user_id, text)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, msg.ID, msg.ChatID, msg.UserID, msg.Text).Scan(&msg.CreatedAt)
	if err != nil {
		return Message{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE chats SET seen_by = ARRAY[$2], last_message = $3
		WHERE id = $1
	`, chatID, userID, text)
	if err != nil {
		return Message{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Message{}, err
	}

	if s.notifier != nil {
		receiverID := otherParticipant(userIDs, userID)
		if receiverID != "" {
			if err := s.notifier.NewMessage(ctx, receiverID, msg); err != nil {
				log.Printf("notify %s about message %s: %v", receiverID, msg.ID, err)
			}
		}
	}
	return msg, nil
}

type ownerRow struct {
	ID       string
	Username string
	Avatar   string
}

func (r ownerRow) owner() *listing.Owner {
	return &listing.Owner{ID: r.ID, Username: r.Username, Avatar: r.Avatar}
}

func otherParticipant(userIDs []string, userID string) string {
	for _, id := range userIDs {
		if id != userID {
			return id
		}
	}
	return ""
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
