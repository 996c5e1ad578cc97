package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/glossglow/salon-ai-receptionist/internal/booking"
	"github.com/glossglow/salon-ai-receptionist/internal/conversation"
	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

type sessionReader interface {
	History(ctx context.Context, sessionID string) ([]conversation.StoredMessage, error)
	Fields(ctx context.Context, sessionID string) (booking.Fields, error)
}

// ConversationHandler exposes per-session transcripts and the booking
// fields gathered so far.
type ConversationHandler struct {
	sessions sessionReader
	logger   *logging.Logger
}

func NewConversationHandler(sessions sessionReader, logger *logging.Logger) *ConversationHandler {
	if sessions == nil {
		panic("handlers: session reader required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ConversationHandler{sessions: sessions, logger: logger}
}

// History returns the transcript and gathered fields for a session.
// GET /conversation/history/{sessionID}
func (h *ConversationHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session id required")
		return
	}

	messages, err := h.sessions.History(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("history load failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	fields, err := h.sessions.Fields(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("fields load failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if messages == nil {
		messages = []conversation.StoredMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   messages,
		"fields":     fields,
	})
}
