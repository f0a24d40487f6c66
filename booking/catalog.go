/*
catalog.go - Immutable room catalog

The catalog is loaded once from the Store at process start and is read-only
for the rest of the run. List preserves the store's order; Get is O(1).
*/
package booking

import "context"

// Catalog is the immutable-per-run set of rooms.
type Catalog struct {
	rooms []Room
	byID  map[int]Room
}

// LoadCatalog reads the room catalog from the store once.
func LoadCatalog(ctx context.Context, store Store) (*Catalog, error) {
	rooms, err := store.LoadRooms(ctx)
	if err != nil {
		return nil, ErrInternal(err)
	}
	return NewCatalog(rooms), nil
}

// NewCatalog builds a catalog from an already-loaded room list.
func NewCatalog(rooms []Room) *Catalog {
	c := &Catalog{
		rooms: make([]Room, len(rooms)),
		byID:  make(map[int]Room, len(rooms)),
	}
	copy(c.rooms, rooms)
	for _, r := range rooms {
		if _, dup := c.byID[r.ID]; !dup {
			c.byID[r.ID] = r
		}
	}
	return c
}

// Get resolves a room by id.
func (c *Catalog) Get(roomID int) (Room, error) {
	r, ok := c.byID[roomID]
	if !ok {
		return Room{}, ErrRoomNotFound(roomID)
	}
	return r, nil
}

// List returns the rooms in load order. The returned slice is a copy.
func (c *Catalog) List() []Room {
	out := make([]Room, len(c.rooms))
	copy(out, c.rooms)
	return out
}

// Len returns the number of rooms.
func (c *Catalog) Len() int { return len(c.rooms) }
