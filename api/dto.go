/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

ERROR ENVELOPE:
  Every failure serializes as {"error": {...}} with the stable machine code,
  human message, optional hint/extras, the HTTP status, and request
  metadata (path, method, request id, timestamp). The same payload is
  appended to the errors.ndjson audit stream.

SEE ALSO:
  - handlers.go: Uses these types
  - booking/errors.go: Source of codes and hints
*/
package api

import (
	"time"

	"github.com/campuskit/roombook/booking"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// RoomDTO represents a room in API responses.
type RoomDTO struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
}

// BookingDTO represents a booking in API responses.
type BookingDTO struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	RoomID    int    `json:"room_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	GroupSize int    `json:"group_size"`
	CreatedAt string `json:"created_at,omitempty"`
	Status    string `json:"status"`
}

// CreateBookingRequest is the request body for POST /bookings.
// Start and end are ISO-8601 instants, e.g. 2025-11-02T13:00:00.
type CreateBookingRequest struct {
	UserID    int    `json:"user_id"`
	RoomID    int    `json:"room_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	GroupSize int    `json:"group_size"`
}

// MetaDTO is the GET /api service metadata payload.
type MetaDTO struct {
	OK        bool     `json:"ok"`
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

// =============================================================================
// ERROR ENVELOPE
// =============================================================================

// ErrorBody carries everything a caller needs to decide whether to retry
// with different parameters or treat the failure as permanent.
type ErrorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Hint      string         `json:"hint,omitempty"`
	Extras    map[string]any `json:"extras,omitempty"`
	Status    int            `json:"status"`
	Path      string         `json:"path"`
	Method    string         `json:"method"`
	RequestID string         `json:"request_id,omitempty"`
	Ts        string         `json:"ts"`
}

// ErrorEnvelope is the standard failure response shape.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toRoomDTO(r booking.Room) RoomDTO {
	return RoomDTO{ID: r.ID, Name: r.Name, Location: r.Location, Capacity: r.Capacity}
}

func toRoomDTOs(rooms []booking.Room) []RoomDTO {
	dtos := make([]RoomDTO, len(rooms))
	for i, r := range rooms {
		dtos[i] = toRoomDTO(r)
	}
	return dtos
}

func toBookingDTO(b booking.Booking) BookingDTO {
	dto := BookingDTO{
		ID:        b.ID,
		UserID:    b.UserID,
		RoomID:    b.RoomID,
		Start:     b.Start.Format(time.RFC3339),
		End:       b.End.Format(time.RFC3339),
		GroupSize: b.GroupSize,
		Status:    string(b.Status),
	}
	if !b.CreatedAt.IsZero() {
		dto.CreatedAt = b.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toBookingDTOs(bookings []booking.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = toBookingDTO(b)
	}
	return dtos
}
