package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/glossglow/salon-ai-receptionist/internal/appointments"
	"github.com/glossglow/salon-ai-receptionist/internal/booking"
	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

// ScheduleRequest is the REST booking payload. The same normalization
// rules as the voice flow apply, so spoken-style emails are accepted
// here too.
type ScheduleRequest struct {
	CustomerName     string `json:"customer_name"`
	ServiceType      string `json:"service_type"`
	PreferredStylist string `json:"preferred_stylist"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	SessionID        string `json:"session_id"`
}

// AppointmentsHandler serves the booking REST endpoints.
type AppointmentsHandler struct {
	coordinator *appointments.Coordinator
	logger      *logging.Logger
}

func NewAppointmentsHandler(coordinator *appointments.Coordinator, logger *logging.Logger) *AppointmentsHandler {
	if coordinator == nil {
		panic("handlers: appointments coordinator required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{coordinator: coordinator, logger: logger}
}

// Schedule books an appointment directly.
// POST /appointments/schedule
func (h *AppointmentsHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	fields := booking.Fields{}
	for slot, raw := range map[string]string{
		booking.SlotCustomerName:     req.CustomerName,
		booking.SlotServiceType:      req.ServiceType,
		booking.SlotPreferredStylist: req.PreferredStylist,
		booking.SlotDate:             req.Date,
		booking.SlotTime:             req.Time,
		booking.SlotEmail:            req.Email,
		booking.SlotPhone:            req.Phone,
	} {
		if normalized, ok := booking.NormalizeField(slot, raw); ok {
			fields[slot] = normalized
		}
	}

	appt, err := h.coordinator.Book(r.Context(), strings.TrimSpace(req.SessionID), fields)
	if err != nil {
		if errors.Is(err, appointments.ErrIncompleteDetails) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("schedule request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, appt)
}

// List returns recent appointments.
// GET /appointments
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			writeError(w, http.StatusBadRequest, "invalid limit; must be 1-500")
			return
		}
		limit = parsed
	}

	appts, err := h.coordinator.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("appointment list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if appts == nil {
		appts = []appointments.Appointment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

// Get returns one appointment by id.
// GET /appointments/{id}
func (h *AppointmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "appointment id required")
		return
	}

	appt, err := h.coordinator.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, appointments.ErrNotFound) {
			writeError(w, http.StatusNotFound, "appointment not found")
			return
		}
		h.logger.Error("appointment load failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
