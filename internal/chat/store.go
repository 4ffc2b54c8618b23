package chat

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matdash/matdash/internal/db"
)

// Store persists chat sessions and their transcripts.
type Store struct {
	db *db.DB
}

// NewStore creates a transcript store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// CreateSession starts a new transcript session and returns its ID.
func (s *Store) CreateSession(ctx context.Context, origin string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, origin, created_at) VALUES (?, ?, ?)`,
		id, origin, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return id, nil
}

// SessionExists reports whether a session ID is known.
func (s *Store) SessionExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM chat_sessions WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking session: %w", err)
	}
	return true, nil
}

// Append records one message in a session's transcript.
func (s *Store) Append(ctx context.Context, sessionID string, sender Sender, body string, data []byte) error {
	var dataVal any
	if len(data) > 0 {
		dataVal = string(data)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (session_id, sender, body, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, string(sender), body, dataVal, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// History returns a session's messages in insertion order, capped at
// limit (0 means all).
func (s *Store) History(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	q := `SELECT id, session_id, sender, body, data, created_at
	      FROM chat_messages WHERE session_id = ? ORDER BY id`
	args := []any{sessionID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		var sender string
		var data sql.NullString
		var createdAt time.Time
		if err := rows.Scan(&m.ID, &m.SessionID, &sender, &m.Body, &data, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Sender = Sender(sender)
		m.CreatedAt = createdAt
		if data.Valid {
			m.Data = []byte(data.String)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages, nil
}
