// Package memory provides an in-memory booking.Store for tests and dev.
package memory

import (
	"context"
	"sync"

	"github.com/campuskit/roombook/booking"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store keeps the catalog and ledger in process memory. Snapshots are
// defensively copied on every load and save, matching the isolation a
// reader gets from the file backend.
type Store struct {
	mu       sync.RWMutex
	rooms    []booking.Room
	bookings []booking.Booking

	// FailSaves makes SaveBookings return this error, for INTERNAL_ERROR
	// path tests.
	FailSaves error
}

// New creates a memory store with the given catalog and an empty ledger.
func New(rooms []booking.Room) *Store {
	s := &Store{rooms: make([]booking.Room, len(rooms))}
	copy(s.rooms, rooms)
	return s
}

func (s *Store) LoadRooms(_ context.Context) ([]booking.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]booking.Room, len(s.rooms))
	copy(out, s.rooms)
	return out, nil
}

func (s *Store) LoadBookings(_ context.Context) ([]booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]booking.Booking, len(s.bookings))
	copy(out, s.bookings)
	return out, nil
}

func (s *Store) SaveBookings(_ context.Context, snapshot []booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves != nil {
		return s.FailSaves
	}
	s.bookings = make([]booking.Booking, len(snapshot))
	copy(s.bookings, snapshot)
	return nil
}
