/*
window.go - Half-open time intervals and request-time parsing

PURPOSE:
  A Window is the half-open interval [Start, End) describing a requested or
  existing reservation. All overlap, duration, and calendar-day reasoning in
  the engine goes through this type.

ACCEPTED INPUT SHAPES:
  - Dates:    YYYY-MM-DD             (2006-01-02)
  - Times:    HH:MM                  (15:04, 24h)
  - Instants: ISO-8601 combined date-time, with or without seconds/offset

Anything else fails with BAD_DATETIME_FORMAT. The end-after-start check is
raised before any other engine validation.

SEE ALSO:
  - engine.go: Validation order for create/cancel
*/
package booking

import "time"

// =============================================================================
// WINDOW
// =============================================================================

type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
// Touching edges ([10,11) vs [11,12)) do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Duration is End - Start.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// StartsOnDay reports whether the window starts on the given calendar day.
func (w Window) StartsOnDay(day time.Time) bool {
	y1, m1, d1 := w.Start.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Validate enforces end > start strictly.
func (w Window) Validate() error {
	if !w.End.After(w.Start) {
		return ErrEndNotAfterStart()
	}
	return nil
}

// =============================================================================
// PARSING
// =============================================================================

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// instantLayouts are tried in order for full date-time inputs.
var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrBadDatetime(s)
	}
	return t, nil
}

// ParseInstant parses an ISO-8601 combined date-time.
func ParseInstant(s string) (time.Time, error) {
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadDatetime(s)
}

// ParseWindow combines a date with HH:MM start and end times into a
// validated window on that day.
func ParseWindow(date, start, end string) (Window, error) {
	day, err := ParseDate(date)
	if err != nil {
		return Window{}, err
	}
	startTod, err := time.Parse(clockLayout, start)
	if err != nil {
		return Window{}, ErrBadDatetime(start)
	}
	endTod, err := time.Parse(clockLayout, end)
	if err != nil {
		return Window{}, ErrBadDatetime(end)
	}

	w := Window{
		Start: day.Add(clockOffset(startTod)),
		End:   day.Add(clockOffset(endTod)),
	}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// ParseInstantWindow builds a validated window from two ISO-8601 instants.
func ParseInstantWindow(start, end string) (Window, error) {
	startAt, err := ParseInstant(start)
	if err != nil {
		return Window{}, err
	}
	endAt, err := ParseInstant(end)
	if err != nil {
		return Window{}, err
	}
	w := Window{Start: startAt, End: endAt}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

func clockOffset(tod time.Time) time.Duration {
	return time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute
}
