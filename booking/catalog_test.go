package booking_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/roombook/booking"
)

func TestCatalog_GetAndList(t *testing.T) {
	// GIVEN a catalog of two rooms
	c := booking.NewCatalog(testRooms())

	// WHEN a known room is resolved
	room, err := c.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "Room B", room.Name)
	assert.Equal(t, 2, c.Len())

	// THEN an unknown id yields ROOM_NOT_FOUND
	_, err = c.Get(99)
	require.Error(t, err)
	assert.Equal(t, booking.CodeRoomNotFound, booking.CodeOf(err))
}

func TestCatalog_ListReturnsACopy(t *testing.T) {
	// GIVEN a catalog
	c := booking.NewCatalog(testRooms())

	// WHEN a caller mutates the listed slice
	listed := c.List()
	listed[0].Name = "Hijacked"

	// THEN the catalog is unaffected
	again := c.List()
	assert.Equal(t, "Room A", again[0].Name)
}

func TestCatalog_DuplicateIDsKeepFirst(t *testing.T) {
	// GIVEN a room list with a duplicated id
	c := booking.NewCatalog([]booking.Room{
		{ID: 1, Name: "Room A", Capacity: 4, Location: "Library L1"},
		{ID: 1, Name: "Room A clone", Capacity: 99, Location: "Library L1"},
	})

	// WHEN the duplicate id is resolved
	room, err := c.Get(1)
	require.NoError(t, err)

	// THEN the first occurrence wins
	assert.Equal(t, "Room A", room.Name)
	assert.Equal(t, 4, room.Capacity)
}

type failingStore struct {
	booking.Store
	err error
}

func (f failingStore) LoadRooms(context.Context) ([]booking.Room, error) { return nil, f.err }

func TestLoadCatalog_StoreFaultIsInternal(t *testing.T) {
	// GIVEN a store whose room read fails
	s := failingStore{err: assert.AnError}

	// WHEN the catalog is loaded
	_, err := booking.LoadCatalog(context.Background(), s)

	// THEN the fault surfaces as INTERNAL_ERROR
	require.Error(t, err)
	assert.Equal(t, booking.CodeInternal, booking.CodeOf(err))
}
