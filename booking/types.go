/*
Package booking provides the study room booking engine.

PURPOSE:
  This package contains the domain types and algorithms for booking shared
  study rooms: time-window math, the room catalog, the booking ledger, the
  validation/commit engine, and the read-only query service.

KEY CONCEPTS IN THIS FILE (types.go):
  - Room: A bookable room with a fixed capacity
  - Booking: An immutable ledger record (cancellation flips status, never deletes)
  - Status: active | cancelled
  - Store: Persistence contract for the catalog and the ledger snapshot

DESIGN PRINCIPLES:
  1. Audit trail: Bookings are never removed from the ledger; cancellation
     is a status transition, so history stays explainable.
  2. Snapshot discipline: Every mutation reads the full ledger, validates in
     memory, and writes the full ledger back atomically.
  3. Monotonic identity: Booking ids are max(existing)+1 over ALL records,
     including cancelled ones, so ids are never reused.

SEE ALSO:
  - window.go: Half-open time interval type and parsing
  - errors.go: The error taxonomy callers receive
  - engine.go: The only write path into the ledger
  - query.go: Availability search and per-user listing
*/
package booking

import (
	"context"
	"time"
)

// =============================================================================
// ROOM - Immutable after load; identity is the integer id
// =============================================================================

type Room struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
}

// =============================================================================
// BOOKING - One ledger record
// =============================================================================

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

type Booking struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	RoomID    int       `json:"room_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	GroupSize int       `json:"group_size"`
	CreatedAt time.Time `json:"created_at"`
	Status    Status    `json:"status"`
}

// Window returns the booking's reserved interval.
func (b Booking) Window() Window {
	return Window{Start: b.Start, End: b.End}
}

// IsActive reports whether the booking still counts against overlap,
// capacity, and daily-cap checks.
func (b Booking) IsActive() bool {
	return b.Status == StatusActive
}

// =============================================================================
// STORE - Persistence contract for catalog and ledger
// =============================================================================

// Store is the durable home of the room catalog and the booking ledger.
//
// INVARIANTS:
//   - LoadBookings returns the complete ledger, all statuses, ordered by id.
//   - SaveBookings replaces the complete ledger atomically: a reader never
//     observes a partially written snapshot, and a crash mid-write leaves
//     the previous snapshot intact.
//
// Implementations: store/file (canonical), store/sqlite, store/memory.
type Store interface {
	// LoadRooms returns the room catalog in stable order.
	LoadRooms(ctx context.Context) ([]Room, error)

	// LoadBookings returns the full ledger snapshot ordered by id.
	LoadBookings(ctx context.Context) ([]Booking, error)

	// SaveBookings atomically replaces the full ledger snapshot.
	SaveBookings(ctx context.Context, snapshot []Booking) error
}

// ErrorLog is the append-only failure/audit stream. Appending must never
// block or fail the primary request path; implementations swallow their own
// I/O errors.
type ErrorLog interface {
	AppendError(ctx context.Context, record map[string]any)
}

// Notifier emits a best-effort confirmation artifact per successful booking.
// A notifier failure never fails the booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, b Booking) error
}
