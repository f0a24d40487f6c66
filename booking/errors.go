/*
errors.go - Centralized error taxonomy for the booking engine

PURPOSE:
  Every failure the engine, catalog, window parser, or query service can
  produce is one of the named kinds below. Each carries a stable machine
  code, a human message, an optional hint, optional extras, and the
  HTTP-equivalent status the caller should map it to.

ERROR KINDS:
  BAD_DATETIME_FORMAT  unparseable time input                       400
  END_NOT_AFTER_START  window inverted or zero-length               400
  ROOM_NOT_FOUND       unknown room id                              404
  BOOKING_NOT_FOUND    unknown (or already cancelled) booking id    404
  OVERLAP_CONFLICT     room already booked for that window          409
  CAPACITY_EXCEEDED    group too large for room                     422
  DAILY_CAP_EXCEEDED   user over the per-day time budget            422
  CANCEL_CUTOFF        cancellation too close to or after start     422
  VALIDATION_ERROR     malformed request shape                      422
  INTERNAL_ERROR       unexpected failure (e.g. storage I/O)        500

PROPAGATION POLICY:
  Validation failures are detected synchronously and returned as typed
  results, never panics. The engine never retries: conflicts are
  caller-visible. Storage faults surface as INTERNAL_ERROR and, thanks to
  atomic replace, never leave a half-written ledger behind.

USAGE:
  var be *booking.Error
  if errors.As(err, &be) {
      w.WriteHeader(be.Status)
  }
*/
package booking

import "fmt"

// =============================================================================
// ERROR CODES - Stable, machine-readable
// =============================================================================

const (
	CodeBadDatetime      = "BAD_DATETIME_FORMAT"
	CodeEndNotAfterStart = "END_NOT_AFTER_START"
	CodeRoomNotFound     = "ROOM_NOT_FOUND"
	CodeBookingNotFound  = "BOOKING_NOT_FOUND"
	CodeOverlapConflict  = "OVERLAP_CONFLICT"
	CodeCapacityExceeded = "CAPACITY_EXCEEDED"
	CodeDailyCapExceeded = "DAILY_CAP_EXCEEDED"
	CodeCancelCutoff     = "CANCEL_CUTOFF"
	CodeValidation       = "VALIDATION_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
)

// =============================================================================
// ERROR TYPE
// =============================================================================

// Error is the single structured error type the engine returns.
type Error struct {
	Code    string
	Message string
	Hint    string
	Extras  map[string]any
	Status  int // HTTP-equivalent status for the caller to map to
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// =============================================================================
// CONSTRUCTORS - One per kind
// =============================================================================

func ErrBadDatetime(input string) *Error {
	return &Error{
		Code:    CodeBadDatetime,
		Message: "use YYYY-MM-DD for date, HH:MM for time, or an ISO-8601 instant",
		Hint:    "Example: /search?date=2025-11-16&start=13:00&end=14:00",
		Extras:  map[string]any{"input": input},
		Status:  400,
	}
}

func ErrEndNotAfterStart() *Error {
	return &Error{
		Code:    CodeEndNotAfterStart,
		Message: "end must be after start",
		Hint:    "Ensure end time is later than start time.",
		Status:  400,
	}
}

func ErrRoomNotFound(roomID int) *Error {
	return &Error{
		Code:    CodeRoomNotFound,
		Message: "room not found",
		Extras:  map[string]any{"room_id": roomID},
		Status:  404,
	}
}

func ErrBookingNotFound(bookingID int) *Error {
	return &Error{
		Code:    CodeBookingNotFound,
		Message: "booking not found",
		Extras:  map[string]any{"booking_id": bookingID},
		Status:  404,
	}
}

func ErrOverlapConflict(roomID int) *Error {
	return &Error{
		Code:    CodeOverlapConflict,
		Message: "room already booked for that window",
		Hint:    "Pick a different time or room.",
		Extras:  map[string]any{"room_id": roomID},
		Status:  409,
	}
}

func ErrCapacityExceeded(capacity int) *Error {
	return &Error{
		Code:    CodeCapacityExceeded,
		Message: "group_size exceeds room capacity",
		Hint:    fmt.Sprintf("Room capacity is %d.", capacity),
		Extras:  map[string]any{"room_capacity": capacity},
		Status:  422,
	}
}

func ErrDailyCapExceeded(capHours int) *Error {
	return &Error{
		Code:    CodeDailyCapExceeded,
		Message: "daily booking hours limit exceeded",
		Hint:    fmt.Sprintf("Max per day is %d hours.", capHours),
		Extras:  map[string]any{"max_hours_per_day": capHours},
		Status:  422,
	}
}

func ErrCancelCutoff(cutoffMinutes int) *Error {
	return &Error{
		Code:    CodeCancelCutoff,
		Message: fmt.Sprintf("cannot cancel within %d minutes of start", cutoffMinutes),
		Hint:    fmt.Sprintf("Cutoff is %d minutes.", cutoffMinutes),
		Extras:  map[string]any{"cutoff_minutes": cutoffMinutes},
		Status:  422,
	}
}

func ErrValidation(message string, extras map[string]any) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: message,
		Hint:    "Check field names and types.",
		Extras:  extras,
		Status:  422,
	}
}

func ErrInternal(cause error) *Error {
	return &Error{
		Code:    CodeInternal,
		Message: "unexpected server error",
		Hint:    "Try again or contact the developer.",
		Status:  500,
		cause:   cause,
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// CodeOf returns the machine code for err, or INTERNAL_ERROR for anything
// that is not a *booking.Error.
func CodeOf(err error) string {
	if be, ok := err.(*Error); ok {
		return be.Code
	}
	return CodeInternal
}

// IsNotFound reports whether err names a missing room or booking.
func IsNotFound(err error) bool {
	c := CodeOf(err)
	return c == CodeRoomNotFound || c == CodeBookingNotFound
}

// IsConflict reports whether err might succeed with different parameters
// (different window, smaller group, earlier cancellation).
func IsConflict(err error) bool {
	switch CodeOf(err) {
	case CodeOverlapConflict, CodeCapacityExceeded, CodeDailyCapExceeded, CodeCancelCutoff:
		return true
	}
	return false
}
