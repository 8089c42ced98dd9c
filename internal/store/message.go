package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/famfeed/internal/database"
	"github.com/dukerupert/famfeed/internal/model"
	"github.com/google/uuid"
)

type MessageStore struct {
	db database.DBTX
}

func NewMessageStore(db database.DBTX) *MessageStore {
	return &MessageStore{db: db}
}

func scanMessage(scanner interface{ Scan(...any) error }) (*model.Message, error) {
	var m model.Message
	err := scanner.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.IsRead,
		&m.SenderName, &m.SenderAvatar, &m.RecipientName, &m.RecipientAvatar, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const messageCols = `m.id, m.sender_id, m.recipient_id, m.content, m.is_read,
	s.name, s.avatar, r.name, r.avatar, m.created_at`

const messageFrom = ` FROM messages m JOIN users s ON s.id = m.sender_id JOIN users r ON r.id = m.recipient_id`

func (s *MessageStore) Create(ctx context.Context, senderID, recipientID, content string) (*model.Message, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, sender_id, recipient_id, content, is_read, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, senderID, recipientID, content, false, database.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *MessageStore) GetByID(ctx context.Context, id string) (*model.Message, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+messageCols+messageFrom+` WHERE m.id = ?`, id)
	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

// ListConversation returns messages exchanged between two users in either
// direction, oldest first.
func (s *MessageStore) ListConversation(ctx context.Context, userID, otherUserID string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+messageCols+messageFrom+`
		 WHERE (m.sender_id = ? AND m.recipient_id = ?) OR (m.sender_id = ? AND m.recipient_id = ?)
		 ORDER BY m.created_at ASC, m.id ASC`,
		userID, otherUserID, otherUserID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// ListUnread returns unread messages addressed to the user, newest first.
func (s *MessageStore) ListUnread(ctx context.Context, recipientID string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+messageCols+messageFrom+`
		 WHERE m.recipient_id = ? AND m.is_read = ?
		 ORDER BY m.created_at DESC, m.id DESC`,
		recipientID, false,
	)
	if err != nil {
		return nil, fmt.Errorf("list unread messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// MarkRead sets is_read regardless of its current value.
func (s *MessageStore) MarkRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE messages SET is_read = ? WHERE id = ?`, true, id)
	if err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}

func scanMessages(rows *sql.Rows) ([]model.Message, error) {
	messages := []model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}
