package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArchiveStore persists session transcripts to PostgreSQL for long-term
// history. Redis remains the working store; the archive is best effort
// and a nil receiver disables it entirely.
type ArchiveStore struct {
	db *sql.DB
}

// NewArchiveStore creates a transcript archive backed by the given database.
func NewArchiveStore(db *sql.DB) *ArchiveStore {
	if db == nil {
		return nil
	}
	return &ArchiveStore{db: db}
}

// SessionRecord represents an archived session.
type SessionRecord struct {
	ID             uuid.UUID
	SessionID      string
	MessageCount   int
	CustomerCount  int
	AssistantCount int
	StartedAt      time.Time
	LastMessageAt  *time.Time
}

// ArchivedMessage represents one archived transcript message.
type ArchivedMessage struct {
	ID        uuid.UUID
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}

// EnsureSession creates the session row if it does not exist yet and
// returns its UUID.
func (s *ArchiveStore) EnsureSession(ctx context.Context, sessionID string) (uuid.UUID, error) {
	if s == nil || s.db == nil {
		return uuid.Nil, nil
	}
	if strings.TrimSpace(sessionID) == "" {
		return uuid.Nil, fmt.Errorf("conversation: session id is required")
	}

	var existingID uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM conversations WHERE session_id = $1`,
		sessionID,
	).Scan(&existingID)
	if err == nil {
		return existingID, nil
	}
	if err != sql.ErrNoRows {
		return uuid.Nil, fmt.Errorf("conversation: failed to check existing: %w", err)
	}

	newID := uuid.New()
	now := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (
			id, session_id, message_count, customer_message_count,
			ai_message_count, started_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, newID, sessionID, 0, 0, 0, now, now, now)
	if err != nil {
		// Another process may have created it concurrently.
		if strings.Contains(err.Error(), "duplicate key") {
			return s.EnsureSession(ctx, sessionID)
		}
		return uuid.Nil, fmt.Errorf("conversation: failed to create: %w", err)
	}
	return newID, nil
}

// AppendMessage archives one message and bumps the session counters.
func (s *ArchiveStore) AppendMessage(ctx context.Context, sessionID string, msg StoredMessage) error {
	if s == nil || s.db == nil {
		return nil
	}

	if _, err := s.EnsureSession(ctx, sessionID); err != nil {
		return err
	}

	timestamp := msg.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_messages (
			id, session_id, role, content, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), sessionID, msg.Role, msg.Content, timestamp)
	if err != nil {
		return fmt.Errorf("conversation: failed to insert message: %w", err)
	}

	counterColumn := "ai_message_count"
	if msg.Role == ChatRoleUser {
		counterColumn = "customer_message_count"
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE conversations SET
			message_count = message_count + 1,
			%s = %s + 1,
			last_message_at = $1,
			updated_at = $1
		WHERE session_id = $2
	`, counterColumn, counterColumn), timestamp, sessionID)
	if err != nil {
		return fmt.Errorf("conversation: failed to update counters: %w", err)
	}
	return nil
}

// Messages returns the archived transcript for a session in order.
func (s *ArchiveStore) Messages(ctx context.Context, sessionID string, limit int) ([]ArchivedMessage, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	query := `
		SELECT id, session_id, role, content, created_at
		FROM conversation_messages
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to get messages: %w", err)
	}
	defer rows.Close()

	var messages []ArchivedMessage
	for rows.Next() {
		var msg ArchivedMessage
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
