package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/glossglow/salon-ai-receptionist/internal/booking"
)

const (
	sessionMessagesKeyFmt = "session:%s:messages"
	sessionFieldsKeyFmt   = "session:%s:fields"
	sessionBookingKeyFmt  = "session:%s:booking_id"
)

// StoredMessage is one turn of a session transcript as kept in Redis.
// Metadata holds per-message annotations such as the audio duration of
// a voice turn; most turns carry none.
type StoredMessage struct {
	ID        string            `json:"id"`
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata"`
}

// SessionStore keeps per-session transcripts and the booking fields
// gathered so far in Redis. Keys carry no TTL; retention is handled
// out of band.
type SessionStore struct {
	client redis.Cmdable
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client redis.Cmdable) *SessionStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	return &SessionStore{client: client}
}

// AppendMessage pushes one message onto the session transcript. Each
// message gets its own id so archived copies stay addressable.
func (s *SessionStore) AppendMessage(ctx context.Context, sessionID, role, content string, metadata map[string]string) error {
	if metadata == nil {
		metadata = map[string]string{}
	}
	msg := StoredMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("conversation: marshal message: %w", err)
	}
	key := fmt.Sprintf(sessionMessagesKeyFmt, sessionID)
	if err := s.client.RPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("conversation: append message: %w", err)
	}
	return nil
}

// History returns the full session transcript in order.
func (s *SessionStore) History(ctx context.Context, sessionID string) ([]StoredMessage, error) {
	key := fmt.Sprintf(sessionMessagesKeyFmt, sessionID)
	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("conversation: load history: %w", err)
	}
	messages := make([]StoredMessage, 0, len(raw))
	for _, item := range raw {
		var msg StoredMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// RecentWindow returns up to limit trailing messages of the transcript.
func (s *SessionStore) RecentWindow(ctx context.Context, sessionID string, limit int) ([]StoredMessage, error) {
	if limit <= 0 {
		return nil, nil
	}
	key := fmt.Sprintf(sessionMessagesKeyFmt, sessionID)
	raw, err := s.client.LRange(ctx, key, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("conversation: load history window: %w", err)
	}
	messages := make([]StoredMessage, 0, len(raw))
	for _, item := range raw {
		var msg StoredMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// MergeFields overlays non-empty updates onto the stored booking fields.
// A field absent from updates is never erased; callers hand in only the
// values they actually extracted this turn.
func (s *SessionStore) MergeFields(ctx context.Context, sessionID string, updates booking.Fields) error {
	if len(updates) == 0 {
		return nil
	}
	values := make(map[string]any, len(updates))
	for slot, value := range updates {
		if value == "" {
			continue
		}
		values[slot] = value
	}
	if len(values) == 0 {
		return nil
	}
	key := fmt.Sprintf(sessionFieldsKeyFmt, sessionID)
	if err := s.client.HSet(ctx, key, values).Err(); err != nil {
		return fmt.Errorf("conversation: merge fields: %w", err)
	}
	return nil
}

// Fields returns the booking fields accumulated for the session.
func (s *SessionStore) Fields(ctx context.Context, sessionID string) (booking.Fields, error) {
	key := fmt.Sprintf(sessionFieldsKeyFmt, sessionID)
	stored, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("conversation: load fields: %w", err)
	}
	fields := make(booking.Fields, len(stored))
	for slot, value := range stored {
		fields[slot] = value
	}
	return fields, nil
}

// ClaimBooking records the booking id for a session if none exists yet.
// It reports false when the session already committed a booking, which
// keeps repeated confirmation replies from double-booking.
func (s *SessionStore) ClaimBooking(ctx context.Context, sessionID, bookingID string) (bool, error) {
	key := fmt.Sprintf(sessionBookingKeyFmt, sessionID)
	claimed, err := s.client.SetNX(ctx, key, bookingID, 0).Result()
	if err != nil {
		return false, fmt.Errorf("conversation: claim booking: %w", err)
	}
	return claimed, nil
}

// RecordBooking overwrites the claim with the real appointment id once
// the booking persisted.
func (s *SessionStore) RecordBooking(ctx context.Context, sessionID, bookingID string) error {
	key := fmt.Sprintf(sessionBookingKeyFmt, sessionID)
	if err := s.client.Set(ctx, key, bookingID, 0).Err(); err != nil {
		return fmt.Errorf("conversation: record booking: %w", err)
	}
	return nil
}

// ReleaseBooking clears a claim after a failed booking so a later
// confirmation can retry.
func (s *SessionStore) ReleaseBooking(ctx context.Context, sessionID string) error {
	key := fmt.Sprintf(sessionBookingKeyFmt, sessionID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("conversation: release booking: %w", err)
	}
	return nil
}

// BookingID returns the booking id committed for the session, if any.
func (s *SessionStore) BookingID(ctx context.Context, sessionID string) (string, error) {
	key := fmt.Sprintf(sessionBookingKeyFmt, sessionID)
	id, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("conversation: load booking id: %w", err)
	}
	return id, nil
}

// Clear drops all session state. Used when a caller explicitly resets.
func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	keys := []string{
		fmt.Sprintf(sessionMessagesKeyFmt, sessionID),
		fmt.Sprintf(sessionFieldsKeyFmt, sessionID),
		fmt.Sprintf(sessionBookingKeyFmt, sessionID),
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("conversation: clear session: %w", err)
	}
	return nil
}
