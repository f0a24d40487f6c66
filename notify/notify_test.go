package notify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/roombook/booking"
)

func confirmedBooking() booking.Booking {
	day := time.Date(2025, 11, 16, 0, 0, 0, 0, time.UTC)
	return booking.Booking{
		ID: 7, UserID: 42, RoomID: 1,
		Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour),
		GroupSize: 3, Status: booking.StatusActive,
	}
}

func TestOutbox_WritesConfirmationArtifact(t *testing.T) {
	// GIVEN an outbox rooted in a fresh data directory
	dataDir := t.TempDir()
	o, err := NewOutbox(dataDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "outbox"), o.Dir())

	// WHEN a booking is confirmed
	require.NoError(t, o.BookingConfirmed(context.Background(), confirmedBooking()))

	// THEN the artifact names the booking and addresses the derived recipient
	raw, err := os.ReadFile(filepath.Join(o.Dir(), "booking_7.txt"))
	require.NoError(t, err)
	content := string(raw)
	assert.True(t, strings.HasPrefix(content, "To: user42@example.edu\n"))
	assert.Contains(t, content, "Subject: Booking Confirmation #7")
	assert.Contains(t, content, "Your booking #7 has been recorded at ")
}

func TestOutbox_OneFilePerBooking(t *testing.T) {
	// GIVEN an outbox
	o, err := NewOutbox(t.TempDir())
	require.NoError(t, err)

	// WHEN two distinct bookings are confirmed
	first := confirmedBooking()
	second := confirmedBooking()
	second.ID = 8
	require.NoError(t, o.BookingConfirmed(context.Background(), first))
	require.NoError(t, o.BookingConfirmed(context.Background(), second))

	// THEN each booking has its own artifact
	entries, err := os.ReadDir(o.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "booking_7.txt", entries[0].Name())
	assert.Equal(t, "booking_8.txt", entries[1].Name())
}

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) BookingConfirmed(context.Context, booking.Booking) error {
	r.calls++
	return r.err
}

func TestMulti_FansOutPastFailures(t *testing.T) {
	// GIVEN a fan-out where the first notifier fails
	boom := errors.New("broker unreachable")
	failing := &recordingNotifier{err: boom}
	healthy := &recordingNotifier{}
	m := Multi{failing, healthy}

	// WHEN a booking is confirmed
	err := m.BookingConfirmed(context.Background(), confirmedBooking())

	// THEN every notifier still ran and the first error is reported
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, healthy.calls)
}

func TestMulti_NoNotifiersIsANoOp(t *testing.T) {
	assert.NoError(t, Multi{}.BookingConfirmed(context.Background(), confirmedBooking()))
}
