package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossglow/salon-ai-receptionist/internal/booking"
	"github.com/glossglow/salon-ai-receptionist/internal/conversation"
	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

type fakeSessionReader struct {
	messages []conversation.StoredMessage
	fields   booking.Fields
	err      error
}

func (f *fakeSessionReader) History(context.Context, string) ([]conversation.StoredMessage, error) {
	return f.messages, f.err
}

func (f *fakeSessionReader) Fields(context.Context, string) (booking.Fields, error) {
	return f.fields, f.err
}

func newConversationRouter(reader sessionReader) *chi.Mux {
	h := NewConversationHandler(reader, logging.Default())
	r := chi.NewRouter()
	r.Get("/conversation/history/{sessionID}", h.History)
	return r
}

func TestConversationHistory(t *testing.T) {
	reader := &fakeSessionReader{
		messages: []conversation.StoredMessage{
			{Role: conversation.ChatRoleAssistant, Content: "Hello!", Timestamp: time.Now()},
			{Role: conversation.ChatRoleUser, Content: "Hi, haircut please", Timestamp: time.Now()},
		},
		fields: booking.Fields{booking.SlotServiceType: "Haircut"},
	}
	router := newConversationRouter(reader)

	req := httptest.NewRequest(http.MethodGet, "/conversation/history/s1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		SessionID string                       `json:"session_id"`
		Messages  []conversation.StoredMessage `json:"messages"`
		Fields    map[string]string            `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "s1", payload.SessionID)
	require.Len(t, payload.Messages, 2)
	assert.Equal(t, "Hello!", payload.Messages[0].Content)
	assert.Equal(t, "Haircut", payload.Fields[booking.SlotServiceType])
}

func TestConversationHistoryEmptySession(t *testing.T) {
	router := newConversationRouter(&fakeSessionReader{})

	req := httptest.NewRequest(http.MethodGet, "/conversation/history/unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Messages []conversation.StoredMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.NotNil(t, payload.Messages)
	assert.Empty(t, payload.Messages)
}

func TestConversationHistoryStoreError(t *testing.T) {
	router := newConversationRouter(&fakeSessionReader{err: errors.New("redis down")})

	req := httptest.NewRequest(http.MethodGet, "/conversation/history/s1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
