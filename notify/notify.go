/*
Package notify emits best-effort confirmation artifacts for successful
bookings.

A confirmation is a side artifact, never part of the booking decision: the
engine logs and ignores any error returned from here. Two notifiers exist:

  Outbox - writes a notification-style text file per booking into
           <data>/outbox/ (always on; this is the canonical artifact)
  AMQP   - additionally publishes a JSON confirmation event to a topic
           exchange when a broker URL is configured

Multi fans a confirmation out to several notifiers, keeping going past
individual failures.
*/
package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/campuskit/roombook/booking"
)

// =============================================================================
// OUTBOX - File artifact per booking
// =============================================================================

// Outbox writes booking_<id>.txt confirmations into dir.
type Outbox struct {
	dir string
}

// NewOutbox creates the outbox directory under the store's data dir.
func NewOutbox(dataDir string) (*Outbox, error) {
	dir := filepath.Join(dataDir, "outbox")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create outbox: %w", err)
	}
	return &Outbox{dir: dir}, nil
}

// Dir returns the outbox directory.
func (o *Outbox) Dir() string { return o.dir }

// BookingConfirmed writes the confirmation file. The recipient address is
// derived from the user id, as the upstream system has no user directory.
func (o *Outbox) BookingConfirmed(_ context.Context, b booking.Booking) error {
	path := filepath.Join(o.dir, fmt.Sprintf("booking_%d.txt", b.ID))
	content := fmt.Sprintf(
		"To: user%d@example.edu\nSubject: Booking Confirmation #%d\n\nYour booking #%d has been recorded at %s",
		b.UserID, b.ID, b.ID, time.Now().Format(time.RFC3339),
	)
	return os.WriteFile(path, []byte(content), 0o644)
}

// =============================================================================
// MULTI - Fan-out
// =============================================================================

// Multi sends a confirmation to every notifier, collecting the first error
// after trying all of them.
type Multi []booking.Notifier

func (m Multi) BookingConfirmed(ctx context.Context, b booking.Booking) error {
	var first error
	for _, n := range m {
		if err := n.BookingConfirmed(ctx, b); err != nil && first == nil {
			first = err
		}
	}
	return first
}
