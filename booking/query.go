/*
query.go - Read-only availability search and per-user listing

Queries read the same ledger snapshot the engine writes, but take no lock:
the atomic-replace discipline in the store guarantees a reader always
observes a complete snapshot. Queries never mutate the ledger.
*/
package booking

import (
	"context"
	"sort"
)

// Query is the read-only side of the booking system.
type Query struct {
	store   Store
	catalog *Catalog
}

// NewQuery creates a query service over the same store and catalog the
// engine uses.
func NewQuery(store Store, catalog *Catalog) *Query {
	return &Query{store: store, catalog: catalog}
}

// ListRooms returns the catalog in load order.
func (q *Query) ListRooms() []Room {
	return q.catalog.List()
}

// SearchAvailable returns every room with no active booking overlapping the
// window, in catalog order.
func (q *Query) SearchAvailable(ctx context.Context, window Window) ([]Room, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	snapshot, err := q.store.LoadBookings(ctx)
	if err != nil {
		return nil, ErrInternal(err)
	}

	busy := make(map[int]bool)
	for _, b := range snapshot {
		if b.IsActive() && b.Window().Overlaps(window) {
			busy[b.RoomID] = true
		}
	}

	available := make([]Room, 0, q.catalog.Len())
	for _, r := range q.catalog.List() {
		if !busy[r.ID] {
			available = append(available, r)
		}
	}
	return available, nil
}

// ListUserBookings returns all of a user's bookings, active and cancelled,
// ordered by start time ascending.
func (q *Query) ListUserBookings(ctx context.Context, userID int) ([]Booking, error) {
	snapshot, err := q.store.LoadBookings(ctx)
	if err != nil {
		return nil, ErrInternal(err)
	}

	mine := make([]Booking, 0)
	for _, b := range snapshot {
		if b.UserID == userID {
			mine = append(mine, b)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].Start.Before(mine[j].Start)
	})
	return mine, nil
}
