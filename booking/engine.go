/*
engine.go - The booking engine: the only write path into the ledger

PURPOSE:
  Validates booking creation and cancellation against the current ledger
  snapshot and commits accepted decisions atomically.

MUTATION DISCIPLINE:
  read-full-snapshot -> validate-in-memory -> write-full-snapshot, under a
  single-writer mutex. Two concurrent creations can therefore never both
  pass the overlap check against a stale snapshot and both commit (the
  classic lost-update / double-booking hazard). There are no network calls
  and no unbounded waits inside the critical section.

VALIDATION ORDER (create, first failure wins):
  1. Window shape        -> BAD_DATETIME_FORMAT / END_NOT_AFTER_START
  2. Room resolution     -> ROOM_NOT_FOUND
  3. Capacity            -> CAPACITY_EXCEEDED
  4. Overlap scan        -> OVERLAP_CONFLICT
  5. Daily cap           -> DAILY_CAP_EXCEEDED
  6. Assign id, persist  -> INTERNAL_ERROR on storage fault
  7. Confirmation        -> best-effort, never fails the booking

RULES:
  - Daily cap: sum of a user's active-booking durations starting on one
    calendar day must not exceed 2 hours (decimal arithmetic, so exactly
    2h passes and 2h1m fails).
  - Cancel cutoff: cancellation must happen strictly before
    start - 30min; at or after that instant it is rejected, including any
    attempt after the booking has started.

SEE ALSO:
  - query.go: The read-only side built on the same snapshot
  - store/file: The atomic-replace persistence behind SaveBookings
*/
package booking

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RULES
// =============================================================================

// Rules holds the fairness policy knobs.
type Rules struct {
	DailyCapHours   int // max cumulative active hours per user per calendar day
	CancelCutoffMin int // minimum lead time before start for cancellation
}

// DefaultRules matches the campus policy: 2 hours per day, 30 minute cutoff.
func DefaultRules() Rules {
	return Rules{DailyCapHours: 2, CancelCutoffMin: 30}
}

// dailyCap is the budget in minutes. Summing in whole decimal minutes keeps
// the boundary exact: three 40-minute bookings total exactly 120.
func (r Rules) dailyCap() decimal.Decimal {
	return decimal.NewFromInt(int64(r.DailyCapHours) * 60)
}

func (r Rules) cutoff() time.Duration {
	return time.Duration(r.CancelCutoffMin) * time.Minute
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine validates and commits booking mutations. It holds the only
// in-process write path to the ledger.
type Engine struct {
	mu       sync.Mutex // single-writer critical section around read-validate-write
	store    Store
	catalog  *Catalog
	rules    Rules
	notifier Notifier
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules overrides the default fairness rules.
func WithRules(r Rules) Option {
	return func(e *Engine) { e.rules = r }
}

// WithNotifier attaches a confirmation notifier.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithClock overrides the engine clock. Tests use this to pin "now".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a booking engine over the given store and catalog.
func NewEngine(store Store, catalog *Catalog, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		catalog: catalog,
		rules:   DefaultRules(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the policy the engine enforces.
func (e *Engine) Rules() Rules { return e.rules }

// =============================================================================
// CREATE
// =============================================================================

// CreateBooking validates the requested window against room capacity, the
// user's daily cap, and existing reservations, then commits atomically.
func (e *Engine) CreateBooking(ctx context.Context, userID, roomID int, window Window, groupSize int) (Booking, error) {
	// 1. Window shape, before any other check.
	if err := window.Validate(); err != nil {
		return Booking{}, err
	}
	if err := validateRequestShape(userID, groupSize); err != nil {
		return Booking{}, err
	}

	// 2. Room resolution.
	room, err := e.catalog.Get(roomID)
	if err != nil {
		return Booking{}, err
	}

	// 3. Capacity.
	if groupSize > room.Capacity {
		return Booking{}, ErrCapacityExceeded(room.Capacity)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// 4. Overlap scan against the current snapshot.
	snapshot, err := e.store.LoadBookings(ctx)
	if err != nil {
		return Booking{}, ErrInternal(err)
	}
	for _, b := range snapshot {
		if b.RoomID == roomID && b.IsActive() && b.Window().Overlaps(window) {
			return Booking{}, ErrOverlapConflict(roomID)
		}
	}

	// 5. Daily cap, including the new window.
	total := minutesOf(window)
	for _, b := range snapshot {
		if b.UserID == userID && b.IsActive() && b.Window().StartsOnDay(window.Start) {
			total = total.Add(minutesOf(b.Window()))
		}
	}
	if total.GreaterThan(e.rules.dailyCap()) {
		return Booking{}, ErrDailyCapExceeded(e.rules.DailyCapHours)
	}

	// 6. Assign next id and persist atomically.
	created := Booking{
		ID:        nextID(snapshot),
		UserID:    userID,
		RoomID:    roomID,
		Start:     window.Start,
		End:       window.End,
		GroupSize: groupSize,
		CreatedAt: e.now(),
		Status:    StatusActive,
	}
	snapshot = append(snapshot, created)
	if err := e.store.SaveBookings(ctx, snapshot); err != nil {
		return Booking{}, ErrInternal(err)
	}

	// 7. Best-effort confirmation.
	if e.notifier != nil {
		if err := e.notifier.BookingConfirmed(ctx, created); err != nil {
			log.Printf("booking: confirmation for #%d failed: %v", created.ID, err)
		}
	}

	return created, nil
}

// =============================================================================
// CANCEL
// =============================================================================

// CancelBooking flips a booking to cancelled, subject to the cutoff policy.
// Cancelled bookings are treated as absent, so double-cancel reports
// BOOKING_NOT_FOUND.
func (e *Engine) CancelBooking(ctx context.Context, bookingID int) (Booking, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.store.LoadBookings(ctx)
	if err != nil {
		return Booking{}, ErrInternal(err)
	}

	idx := -1
	for i, b := range snapshot {
		if b.ID == bookingID && b.IsActive() {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Booking{}, ErrBookingNotFound(bookingID)
	}

	// Reject at and after start - cutoff; a started booking can never be
	// cancelled.
	deadline := snapshot[idx].Start.Add(-e.rules.cutoff())
	if !e.now().Before(deadline) {
		return Booking{}, ErrCancelCutoff(e.rules.CancelCutoffMin)
	}

	snapshot[idx].Status = StatusCancelled
	if err := e.store.SaveBookings(ctx, snapshot); err != nil {
		return Booking{}, ErrInternal(err)
	}
	return snapshot[idx], nil
}

// =============================================================================
// HELPERS
// =============================================================================

func validateRequestShape(userID, groupSize int) error {
	if userID <= 0 {
		return ErrValidation("user_id must be positive", map[string]any{"user_id": userID})
	}
	if groupSize < 1 {
		return ErrValidation("group_size must be >= 1", map[string]any{"group_size": groupSize})
	}
	return nil
}

// nextID is max existing id + 1, over all records including cancelled ones,
// or 1 for an empty ledger. Ids are never reused.
func nextID(snapshot []Booking) int {
	next := 1
	for _, b := range snapshot {
		if b.ID >= next {
			next = b.ID + 1
		}
	}
	return next
}

// minutesOf converts a window's duration to decimal minutes.
func minutesOf(w Window) decimal.Decimal {
	return decimal.NewFromFloat(w.Duration().Minutes())
}
