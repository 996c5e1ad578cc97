// Package ws carries the realtime voice channel: callers stream audio
// frames over a websocket and receive spoken replies plus JSON events.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/glossglow/salon-ai-receptionist/internal/appointments"
	"github.com/glossglow/salon-ai-receptionist/internal/conversation"
	"github.com/glossglow/salon-ai-receptionist/internal/salon"
	"github.com/glossglow/salon-ai-receptionist/internal/voice"
	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

const (
	writeTimeout = 10 * time.Second
	turnTimeout  = 60 * time.Second
)

// Event types pushed to the client as JSON text frames. Reply audio
// arrives as separate binary frames.
const (
	EventGreeting             = "greeting"
	EventTranscript           = "transcript"
	EventReply                = "reply"
	EventAppointmentConfirmed = "appointment_confirmed"
	EventError                = "error"
)

// Event is one JSON frame pushed to the client.
type Event struct {
	Type        string                    `json:"type"`
	Content     string                    `json:"content,omitempty"`
	Appointment *appointments.Appointment `json:"appointment,omitempty"`
}

// inboundMessage is a typed text turn sent by the client.
type inboundMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// TurnProcessor runs one conversation turn.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, sessionID, channel, transcript string) (conversation.TurnResult, error)
	GreetingTurn(ctx context.Context, sessionID, greeting string) error
}

// Handler upgrades /ws/{clientID} connections and drives the audio
// conversation loop.
type Handler struct {
	turns       TurnProcessor
	transcriber voice.Transcriber
	synthesizer voice.Synthesizer
	profile     salon.Profile
	upgrader    websocket.Upgrader
	logger      *logging.Logger
}

// NewHandler builds the websocket handler. transcriber and synthesizer
// may be nil, which disables the audio leg (text frames still work).
func NewHandler(turns TurnProcessor, transcriber voice.Transcriber, synthesizer voice.Synthesizer, profile salon.Profile, logger *logging.Logger) *Handler {
	if turns == nil {
		panic("ws: turn processor required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		turns:       turns,
		transcriber: transcriber,
		synthesizer: synthesizer,
		profile:     profile,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 16,
			WriteBufferSize: 1 << 16,
			// Browser demo clients connect from arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the connection and runs the session loop until the
// client disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(chi.URLParam(r, "clientID"))
	if clientID == "" {
		http.Error(w, "client id required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "client_id", clientID, "error", err)
		return
	}
	defer conn.Close()

	h.logger.Info("websocket connected", "client_id", clientID)
	h.greet(r.Context(), conn, clientID)

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", "client_id", clientID, "error", err)
			}
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
		switch msgType {
		case websocket.BinaryMessage:
			h.handleAudioTurn(ctx, conn, clientID, payload)
		case websocket.TextMessage:
			h.handleTextTurn(ctx, conn, clientID, payload)
		}
		cancel()
	}
}

// greet opens the session with the salon greeting, spoken and written.
func (h *Handler) greet(ctx context.Context, conn *websocket.Conn, clientID string) {
	greeting := h.profile.Greeting()
	if err := h.turns.GreetingTurn(ctx, clientID, greeting); err != nil {
		h.logger.Error("greeting persist failed", "client_id", clientID, "error", err)
	}
	h.writeEvent(conn, Event{Type: EventGreeting, Content: greeting})
	h.speak(ctx, conn, clientID, greeting)
}

func (h *Handler) handleAudioTurn(ctx context.Context, conn *websocket.Conn, clientID string, audio []byte) {
	if h.transcriber == nil {
		h.writeEvent(conn, Event{Type: EventError, Content: "audio input is not enabled"})
		return
	}

	transcript, err := h.transcriber.Transcribe(ctx, audio)
	if err != nil {
		h.logger.Error("transcription failed", "client_id", clientID, "error", err)
		h.writeEvent(conn, Event{Type: EventError, Content: "could not understand audio"})
		return
	}
	// Silence or noise transcribes to nothing; the turn is dropped.
	if transcript == "" {
		return
	}

	h.writeEvent(conn, Event{Type: EventTranscript, Content: transcript})
	h.runTurn(ctx, conn, clientID, transcript)
}

func (h *Handler) handleTextTurn(ctx context.Context, conn *websocket.Conn, clientID string, payload []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		// Plain text frames are accepted as the message itself.
		msg.Content = string(payload)
	}
	if strings.TrimSpace(msg.Content) == "" {
		return
	}
	h.runTurn(ctx, conn, clientID, msg.Content)
}

func (h *Handler) runTurn(ctx context.Context, conn *websocket.Conn, clientID, transcript string) {
	result, err := h.turns.ProcessTurn(ctx, clientID, "websocket", transcript)
	if err != nil {
		h.logger.Error("turn processing failed", "client_id", clientID, "error", err)
		h.writeEvent(conn, Event{Type: EventError, Content: "something went wrong, please try again"})
		return
	}
	if result.Skipped {
		return
	}

	h.writeEvent(conn, Event{Type: EventReply, Content: result.Reply})
	h.speak(ctx, conn, clientID, result.Reply)

	if result.Appointment != nil {
		h.writeEvent(conn, Event{Type: EventAppointmentConfirmed, Appointment: result.Appointment})
	}
}

// speak synthesizes text and ships it as a binary frame. Synthesis is
// best effort; the text event already carried the content.
func (h *Handler) speak(ctx context.Context, conn *websocket.Conn, clientID, text string) {
	if h.synthesizer == nil {
		return
	}
	audio, err := h.synthesizer.Synthesize(ctx, text)
	if err != nil {
		h.logger.Error("synthesis failed", "client_id", clientID, "error", err)
		return
	}
	if len(audio) == 0 {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		h.logger.Warn("audio write failed", "client_id", clientID, "error", err)
	}
}

func (h *Handler) writeEvent(conn *websocket.Conn, event Event) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(event); err != nil {
		h.logger.Warn("event write failed", "type", event.Type, "error", err)
	}
}
