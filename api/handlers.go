/*
handlers.go - HTTP handlers for the booking API

PURPOSE:
  Exposes the booking engine and query service over REST. Handles HTTP
  request/response, JSON serialization, and delegates every decision to the
  domain layer.

REQUEST FLOW:
  1. Parse HTTP request (path params, query params, JSON body)
  2. Call the engine (writes) or query service (reads)
  3. Serialize response
  4. On failure: map booking.Error.Status, wrap in the error envelope,
     append one record to the audit stream

ERROR HANDLING:
  - 400: bad date/time input, inverted window
  - 404: room or booking not found
  - 409: overlap conflict
  - 422: capacity / daily cap / cutoff / malformed request shape
  - 500: storage faults and anything unexpected

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - booking/engine.go: The validation order behind POST /bookings
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campuskit/roombook/booking"
)

// Version reported by GET /api.
const Version = "0.3.0"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *booking.Engine
	Query  *booking.Query
	Audit  booking.ErrorLog
}

// NewHandler creates a handler over the engine, query service, and audit
// stream.
func NewHandler(engine *booking.Engine, query *booking.Query, audit booking.ErrorLog) *Handler {
	return &Handler{Engine: engine, Query: query, Audit: audit}
}

// =============================================================================
// META
// =============================================================================

// Meta returns service metadata.
// GET /api
func (h *Handler) Meta(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MetaDTO{
		OK:      true,
		Service: "Study Room Booking",
		Version: Version,
		Endpoints: []string{
			"/rooms", "/search", "/bookings", "/users/{user_id}/bookings",
		},
	})
}

// Health is the liveness probe.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// ROOMS
// =============================================================================

// ListRooms returns the room catalog in load order.
// GET /rooms
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toRoomDTOs(h.Query.ListRooms()))
}

// Search returns rooms free for the whole window.
// GET /search?date=YYYY-MM-DD&start=HH:MM&end=HH:MM
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	window, err := booking.ParseWindow(q.Get("date"), q.Get("start"), q.Get("end"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rooms, err := h.Query.SearchAvailable(r.Context(), window)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomDTOs(rooms))
}

// =============================================================================
// BOOKINGS
// =============================================================================

// CreateBooking validates and commits a booking.
// POST /bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, booking.ErrValidation("invalid request body", map[string]any{"detail": err.Error()}))
		return
	}

	window, err := booking.ParseInstantWindow(req.Start, req.End)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	created, err := h.Engine.CreateBooking(r.Context(), req.UserID, req.RoomID, window, req.GroupSize)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingDTO(created))
}

// CancelBooking flips a booking to cancelled and returns the record.
// DELETE /bookings/{id}
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, booking.ErrValidation("booking id must be an integer", map[string]any{"id": chi.URLParam(r, "id")}))
		return
	}

	cancelled, err := h.Engine.CancelBooking(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(cancelled))
}

// UserBookings lists all of a user's bookings, start ascending.
// GET /users/{id}/bookings
func (h *Handler) UserBookings(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, booking.ErrValidation("user id must be an integer", map[string]any{"id": chi.URLParam(r, "id")}))
		return
	}

	bookings, err := h.Query.ListUserBookings(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTOs(bookings))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// fail writes the error envelope and appends exactly one audit record.
// Unknown error types are treated as internal faults.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var be *booking.Error
	if !errors.As(err, &be) {
		be = booking.ErrInternal(err)
	}

	body := ErrorBody{
		Code:      be.Code,
		Message:   be.Message,
		Hint:      be.Hint,
		Extras:    be.Extras,
		Status:    be.Status,
		Path:      r.URL.Path,
		Method:    r.Method,
		RequestID: requestIDFrom(r.Context()),
		Ts:        time.Now().Format(time.RFC3339),
	}

	if h.Audit != nil {
		h.Audit.AppendError(r.Context(), map[string]any{
			"code":       body.Code,
			"message":    body.Message,
			"hint":       body.Hint,
			"extras":     body.Extras,
			"status":     body.Status,
			"path":       body.Path,
			"method":     body.Method,
			"request_id": body.RequestID,
			"ts":         body.Ts,
		})
	}

	writeJSON(w, be.Status, ErrorEnvelope{Error: body})
}
