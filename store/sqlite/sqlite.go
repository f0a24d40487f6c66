/*
Package sqlite provides a SQLite-backed implementation of booking.Store.

PURPOSE:
  An alternative embedded backend for deployments that prefer a single
  database file over the JSON snapshot files. It implements the exact same
  snapshot contract as store/file: LoadBookings returns the full ledger and
  SaveBookings replaces it wholesale.

SNAPSHOT SEMANTICS:
  SaveBookings runs DELETE + INSERT of the complete ledger inside one SQL
  transaction, so a reader still sees either the previous snapshot or the
  new one, never a mix. The engine's single-writer mutex serializes writers
  above this layer.

KEY TABLES:
  rooms:     Room catalog (seeded on first open if empty)
  bookings:  Full booking ledger, all statuses retained

WAL MODE:
  SQLite is opened with WAL for better read concurrency and crash recovery.

USAGE:
  store, err := sqlite.New("./data/roombook.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - booking/types.go: Store contract
  - store/file: The canonical file backend
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/campuskit/roombook/booking"
)

const timeLayout = time.RFC3339

// Store implements booking.Store on SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := store.seedRooms(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed rooms: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rooms (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		capacity INTEGER NOT NULL CHECK (capacity >= 1)
	);

	CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL,
		room_id INTEGER NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		group_size INTEGER NOT NULL CHECK (group_size >= 1),
		created_at TEXT,
		status TEXT NOT NULL CHECK (status IN ('active', 'cancelled'))
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_room ON bookings(room_id);
	CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// seedRooms inserts the default catalog when the rooms table is empty,
// mirroring the file backend's first-run seed.
func (s *Store) seedRooms() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM rooms`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seed := []booking.Room{
		{ID: 1, Name: "Room A", Capacity: 4, Location: "Library L1"},
		{ID: 2, Name: "Room B", Capacity: 6, Location: "Library L2"},
		{ID: 3, Name: "Room C", Capacity: 8, Location: "Engineering 2F"},
	}
	for _, r := range seed {
		if _, err := s.db.Exec(
			`INSERT INTO rooms (id, name, location, capacity) VALUES (?, ?, ?, ?)`,
			r.ID, r.Name, r.Location, r.Capacity,
		); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// STORE IMPLEMENTATION
// =============================================================================

// LoadRooms returns the catalog ordered by id.
func (s *Store) LoadRooms(ctx context.Context) ([]booking.Room, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, location, capacity FROM rooms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	defer rows.Close()

	var rooms []booking.Room
	for rows.Next() {
		var r booking.Room
		if err := rows.Scan(&r.ID, &r.Name, &r.Location, &r.Capacity); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// LoadBookings returns the full ledger snapshot ordered by id.
func (s *Store) LoadBookings(ctx context.Context) ([]booking.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, room_id, start_at, end_at, group_size, created_at, status
		 FROM bookings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]booking.Booking, 0)
	for rows.Next() {
		var (
			b        booking.Booking
			startS   string
			endS     string
			status   string
			createdS sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.RoomID, &startS, &endS, &b.GroupSize, &createdS, &status); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		if b.Start, err = time.Parse(timeLayout, startS); err != nil {
			return nil, fmt.Errorf("booking %d start: %w", b.ID, err)
		}
		if b.End, err = time.Parse(timeLayout, endS); err != nil {
			return nil, fmt.Errorf("booking %d end: %w", b.ID, err)
		}
		if createdS.Valid && createdS.String != "" {
			if b.CreatedAt, err = time.Parse(timeLayout, createdS.String); err != nil {
				return nil, fmt.Errorf("booking %d created_at: %w", b.ID, err)
			}
		}
		b.Status = booking.Status(status)
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// SaveBookings replaces the complete ledger inside one transaction.
func (s *Store) SaveBookings(ctx context.Context, snapshot []booking.Booking) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
		return fmt.Errorf("clear bookings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO bookings (id, user_id, room_id, start_at, end_at, group_size, created_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range snapshot {
		var createdS any
		if !b.CreatedAt.IsZero() {
			createdS = b.CreatedAt.Format(timeLayout)
		}
		if _, err := stmt.ExecContext(ctx,
			b.ID, b.UserID, b.RoomID,
			b.Start.Format(timeLayout), b.End.Format(timeLayout),
			b.GroupSize, createdS, string(b.Status),
		); err != nil {
			return fmt.Errorf("insert booking %d: %w", b.ID, err)
		}
	}

	return tx.Commit()
}
