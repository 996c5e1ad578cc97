package conversation

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/glossglow/salon-ai-receptionist/internal/appointments"
	"github.com/glossglow/salon-ai-receptionist/internal/booking"
	"github.com/glossglow/salon-ai-receptionist/internal/observability/metrics"
	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

var turnTracer = otel.Tracer("salon.internal.conversation")

// Booker commits a booking from gathered fields.
type Booker interface {
	Book(ctx context.Context, sessionID string, fields booking.Fields) (*appointments.Appointment, error)
}

// TurnResult is everything one processed customer turn produced.
type TurnResult struct {
	SessionID  string
	Transcript string
	Reply      string
	Fields     booking.Fields
	// Appointment is non-nil only on the turn that committed a booking.
	Appointment *appointments.Appointment
	// Skipped is set when the turn carried no usable input.
	Skipped bool
}

// Service orchestrates one conversation turn: persist the customer's
// message, extract booking fields, generate the reply, and commit the
// booking when the reply confirms one.
type Service struct {
	store         *SessionStore
	archive       *ArchiveStore
	extractor     *Extractor
	responder     *Responder
	booker        Booker
	metrics       *metrics.ReceptionistMetrics
	contextWindow int
	logger        *logging.Logger
}

// NewService wires the turn pipeline together. archive and booker may
// be nil; the conversation then runs without long-term history or
// booking commits.
func NewService(
	store *SessionStore,
	archive *ArchiveStore,
	extractor *Extractor,
	responder *Responder,
	booker Booker,
	m *metrics.ReceptionistMetrics,
	contextWindow int,
	logger *logging.Logger,
) *Service {
	if store == nil {
		panic("conversation: session store required")
	}
	if extractor == nil {
		panic("conversation: extractor required")
	}
	if responder == nil {
		panic("conversation: responder required")
	}
	if contextWindow <= 0 {
		contextWindow = 5
	}
	if logger == nil {
		logger = logging.Default()
	}
	extractor.OnFallback(m.ObserveExtractionFallback)
	return &Service{
		store:         store,
		archive:       archive,
		extractor:     extractor,
		responder:     responder,
		booker:        booker,
		metrics:       m,
		contextWindow: contextWindow,
		logger:        logger,
	}
}

// ProcessTurn runs the pipeline for one customer utterance. An empty
// transcript skips the turn entirely so silence never produces a reply.
func (s *Service) ProcessTurn(ctx context.Context, sessionID, channel, transcript string) (TurnResult, error) {
	ctx, span := turnTracer.Start(ctx, "conversation.turn", trace.WithAttributes(
		attribute.String("salon.session_id", sessionID),
		attribute.String("salon.channel", channel),
	))
	defer span.End()

	result := TurnResult{SessionID: sessionID, Transcript: transcript}

	if strings.TrimSpace(transcript) == "" {
		result.Skipped = true
		s.metrics.ObserveTurn(channel, "skipped")
		return result, nil
	}

	if err := s.store.AppendMessage(ctx, sessionID, ChatRoleUser, transcript, nil); err != nil {
		span.RecordError(err)
		s.metrics.ObserveTurn(channel, "error")
		return result, err
	}
	s.archiveMessage(ctx, sessionID, StoredMessage{Role: ChatRoleUser, Content: transcript})

	window, err := s.store.RecentWindow(ctx, sessionID, s.contextWindow)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveTurn(channel, "error")
		return result, err
	}

	known, err := s.store.Fields(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveTurn(channel, "error")
		return result, err
	}

	updates := s.extractor.Extract(ctx, window, known)
	if err := s.store.MergeFields(ctx, sessionID, updates); err != nil {
		span.RecordError(err)
		s.logger.Error("field merge failed", "session_id", sessionID, "error", err)
	}

	fields, err := s.store.Fields(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveTurn(channel, "error")
		return result, err
	}
	result.Fields = fields

	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveTurn(channel, "error")
		return result, err
	}

	reply := s.responder.Reply(ctx, history)
	result.Reply = reply

	if err := s.store.AppendMessage(ctx, sessionID, ChatRoleAssistant, reply, nil); err != nil {
		span.RecordError(err)
		s.logger.Error("reply persist failed", "session_id", sessionID, "error", err)
	}
	s.archiveMessage(ctx, sessionID, StoredMessage{Role: ChatRoleAssistant, Content: reply})

	if booking.ShouldBook(reply, fields) {
		result.Appointment = s.commitBooking(ctx, sessionID, fields)
	}

	s.metrics.ObserveTurn(channel, "ok")
	return result, nil
}

// GreetingTurn records the opening assistant line for a new session.
func (s *Service) GreetingTurn(ctx context.Context, sessionID, greeting string) error {
	if err := s.store.AppendMessage(ctx, sessionID, ChatRoleAssistant, greeting, nil); err != nil {
		return err
	}
	s.archiveMessage(ctx, sessionID, StoredMessage{Role: ChatRoleAssistant, Content: greeting})
	return nil
}

// History exposes the session transcript for the REST API.
func (s *Service) History(ctx context.Context, sessionID string) ([]StoredMessage, error) {
	return s.store.History(ctx, sessionID)
}

// Fields exposes the gathered booking fields for the REST API.
func (s *Service) Fields(ctx context.Context, sessionID string) (booking.Fields, error) {
	return s.store.Fields(ctx, sessionID)
}

// commitBooking books at most once per session. The Redis claim is the
// gate: whichever turn wins it performs the booking, and repeated
// confirmation replies afterwards are no-ops.
func (s *Service) commitBooking(ctx context.Context, sessionID string, fields booking.Fields) *appointments.Appointment {
	if s.booker == nil {
		return nil
	}

	claimed, err := s.store.ClaimBooking(ctx, sessionID, "pending")
	if err != nil {
		s.logger.Error("booking claim failed", "session_id", sessionID, "error", err)
		return nil
	}
	if !claimed {
		s.logger.Info("booking already committed for session", "session_id", sessionID)
		return nil
	}

	appt, err := s.booker.Book(ctx, sessionID, fields)
	if err != nil {
		s.logger.Error("booking failed", "session_id", sessionID, "error", err)
		if releaseErr := s.store.ReleaseBooking(ctx, sessionID); releaseErr != nil {
			s.logger.Error("booking claim release failed", "session_id", sessionID, "error", releaseErr)
		}
		return nil
	}

	if err := s.store.RecordBooking(ctx, sessionID, appt.ID); err != nil {
		s.logger.Error("booking id persist failed", "session_id", sessionID, "error", err)
	}
	return appt
}

func (s *Service) archiveMessage(ctx context.Context, sessionID string, msg StoredMessage) {
	if s.archive == nil {
		return
	}
	if err := s.archive.AppendMessage(ctx, sessionID, msg); err != nil {
		s.logger.Warn("transcript archive failed", "session_id", sessionID, "error", err)
	}
}
