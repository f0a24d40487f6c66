/*
Package file is the canonical persistence backend: JSON files with
crash-safe atomic replace-on-write.

PURPOSE:
  Durable storage of the room catalog and the booking ledger without a
  database. The store exclusively owns the on-disk representation.

LAYOUT (inside the data directory):
  rooms.json      room catalog, ordered by id, seeded if missing
  bookings.json   full booking ledger, ordered by id, all statuses retained
  errors.ndjson   append-only error/audit stream (see audit.go)
  outbox/         confirmation artifacts (see notify package)

ATOMIC WRITE CONTRACT:
  Serialize to a temporary file in the same directory, fsync, then rename
  over the canonical path in one step. A reader never observes a partially
  written file; a crash mid-write leaves the previous valid snapshot intact.

LOAD HYGIENE:
  Invalid room or booking records are skipped (not fatal), duplicate room
  ids keep the first occurrence, and both collections come back in stable
  id order.
*/
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/campuskit/roombook/booking"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const timeLayout = time.RFC3339

// =============================================================================
// STORE
// =============================================================================

// Store is a file-backed booking.Store.
type Store struct {
	dataDir      string
	roomsPath    string
	bookingsPath string
}

// New opens (and if necessary seeds) a file store rooted at dataDir.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{
		dataDir:      dataDir,
		roomsPath:    filepath.Join(dataDir, "rooms.json"),
		bookingsPath: filepath.Join(dataDir, "bookings.json"),
	}

	if _, err := os.Stat(s.roomsPath); errors.Is(err, fs.ErrNotExist) {
		if err := s.writeRooms(defaultRooms()); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(s.bookingsPath); errors.Is(err, fs.ErrNotExist) {
		if err := atomicWrite(s.bookingsPath, []byte("[]")); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DataDir returns the directory the store owns.
func (s *Store) DataDir() string { return s.dataDir }

// defaultRooms is the minimal seed used only when rooms.json is missing.
func defaultRooms() []booking.Room {
	return []booking.Room{
		{ID: 1, Name: "Room A", Capacity: 4, Location: "Library L1"},
		{ID: 2, Name: "Room B", Capacity: 6, Location: "Library L2"},
		{ID: 3, Name: "Room C", Capacity: 8, Location: "Engineering 2F"},
	}
}

// =============================================================================
// ROOMS
// =============================================================================

// LoadRooms reads and validates the room catalog, in stable id order.
func (s *Store) LoadRooms(_ context.Context) ([]booking.Room, error) {
	raw, err := os.ReadFile(s.roomsPath)
	if err != nil {
		return nil, fmt.Errorf("read rooms: %w", err)
	}

	var records []roomRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse rooms: %w", err)
	}

	rooms := make([]booking.Room, 0, len(records))
	seen := make(map[int]bool)
	for i, rec := range records {
		room, err := rec.normalize()
		if err != nil {
			log.Printf("[store] skipping invalid room at index %d: %v", i, err)
			continue
		}
		if seen[room.ID] {
			log.Printf("[store] duplicate room id %d ignored (keeping first)", room.ID)
			continue
		}
		seen[room.ID] = true
		rooms = append(rooms, room)
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (s *Store) writeRooms(rooms []booking.Room) error {
	records := make([]roomRecord, len(rooms))
	for i, r := range rooms {
		records[i] = roomRecord{ID: r.ID, Name: r.Name, Capacity: r.Capacity, Location: r.Location}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rooms: %w", err)
	}
	return atomicWrite(s.roomsPath, data)
}

// =============================================================================
// BOOKINGS
// =============================================================================

// LoadBookings reads the full ledger snapshot, all statuses, ordered by id.
func (s *Store) LoadBookings(_ context.Context) ([]booking.Booking, error) {
	raw, err := os.ReadFile(s.bookingsPath)
	if err != nil {
		return nil, fmt.Errorf("read bookings: %w", err)
	}

	var records []bookingRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse bookings: %w", err)
	}

	bookings := make([]booking.Booking, 0, len(records))
	for i, rec := range records {
		b, err := rec.normalize()
		if err != nil {
			log.Printf("[store] skipping invalid booking at index %d: %v", i, err)
			continue
		}
		bookings = append(bookings, b)
	}

	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

// SaveBookings atomically replaces the complete ledger.
func (s *Store) SaveBookings(_ context.Context, snapshot []booking.Booking) error {
	records := make([]bookingRecord, len(snapshot))
	for i, b := range snapshot {
		records[i] = toRecord(b)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bookings: %w", err)
	}
	return atomicWrite(s.bookingsPath, data)
}

// =============================================================================
// RECORDS - On-disk representation (timestamps as RFC 3339 strings)
// =============================================================================

type roomRecord struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Location string `json:"location"`
}

func (r roomRecord) normalize() (booking.Room, error) {
	if r.ID <= 0 {
		return booking.Room{}, errors.New("room.id must be positive")
	}
	if r.Name == "" {
		return booking.Room{}, errors.New("room.name is required")
	}
	if r.Capacity < 1 {
		return booking.Room{}, errors.New("room.capacity must be >= 1")
	}
	if r.Location == "" {
		return booking.Room{}, errors.New("room.location is required")
	}
	return booking.Room{ID: r.ID, Name: r.Name, Capacity: r.Capacity, Location: r.Location}, nil
}

type bookingRecord struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	RoomID    int    `json:"room_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	GroupSize int    `json:"group_size"`
	CreatedAt string `json:"created_at,omitempty"`
	Status    string `json:"status"`
}

func toRecord(b booking.Booking) bookingRecord {
	rec := bookingRecord{
		ID:        b.ID,
		UserID:    b.UserID,
		RoomID:    b.RoomID,
		Start:     b.Start.Format(timeLayout),
		End:       b.End.Format(timeLayout),
		GroupSize: b.GroupSize,
		Status:    string(b.Status),
	}
	if !b.CreatedAt.IsZero() {
		rec.CreatedAt = b.CreatedAt.Format(timeLayout)
	}
	return rec
}

func (r bookingRecord) normalize() (booking.Booking, error) {
	if r.ID <= 0 {
		return booking.Booking{}, errors.New("booking.id must be positive")
	}
	start, err := time.Parse(timeLayout, r.Start)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("booking.start: %w", err)
	}
	end, err := time.Parse(timeLayout, r.End)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("booking.end: %w", err)
	}
	if !end.After(start) {
		return booking.Booking{}, errors.New("end must be after start")
	}
	if r.GroupSize < 1 {
		return booking.Booking{}, errors.New("group_size must be >= 1")
	}

	status := booking.Status(r.Status)
	if status == "" {
		status = booking.StatusActive // legacy records predate the status field
	}
	if status != booking.StatusActive && status != booking.StatusCancelled {
		return booking.Booking{}, fmt.Errorf("unknown status %q", r.Status)
	}

	b := booking.Booking{
		ID:        r.ID,
		UserID:    r.UserID,
		RoomID:    r.RoomID,
		Start:     start,
		End:       end,
		GroupSize: r.GroupSize,
		Status:    status,
	}
	if r.CreatedAt != "" {
		createdAt, err := time.Parse(timeLayout, r.CreatedAt)
		if err != nil {
			return booking.Booking{}, fmt.Errorf("booking.created_at: %w", err)
		}
		b.CreatedAt = createdAt
	}
	return b, nil
}

// =============================================================================
// ATOMIC WRITE - write temp, fsync, rename over canonical
// =============================================================================

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
