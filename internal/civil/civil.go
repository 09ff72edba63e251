// Package civil pins every timestamp the planner compares to one fixed local
// zone. Offset-less input is read as wall-clock time in that zone; input with
// an offset is converted into it.
package civil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DefaultZone = "Asia/Seoul"

var ErrBadTimestamp = errors.New("malformed timestamp")

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type Zone struct {
	loc *time.Location
}

func Load(name string) (Zone, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Zone{}, fmt.Errorf("load zone %q: %w", name, err)
	}
	return Zone{loc: loc}, nil
}

func FixedZone(name string, offsetSeconds int) Zone {
	return Zone{loc: time.FixedZone(name, offsetSeconds)}
}

func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.Local
	}
	return z.loc
}

// Normalize converts t into the zone and drops the monotonic reading so that
// equal instants compare equal with ==.
func (z Zone) Normalize(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(z.Location()).Round(0)
}

func (z Zone) NormalizePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := z.Normalize(*t)
	return &n
}

// Parse accepts RFC 3339 (with offset or Z) and offset-less ISO-8601 forms.
func (z Zone) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrBadTimestamp)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return z.Normalize(t), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, z.Location()); err == nil {
			return t.Round(0), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
}

// At returns hour:minute on the civil date of day.
func (z Zone) At(day time.Time, hour, minute int) time.Time {
	d := day.In(z.Location())
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, z.Location())
}

func (z Zone) StartOfDay(t time.Time) time.Time {
	return z.At(t, 0, 0)
}

// DateKey identifies the civil calendar day of t.
func (z Zone) DateKey(t time.Time) string {
	return t.In(z.Location()).Format("2006-01-02")
}

func (z Zone) Hour(t time.Time) int {
	return t.In(z.Location()).Hour()
}

// DayLabel renders a human readable day, e.g. "Oct 16 (Friday)".
func (z Zone) DayLabel(t time.Time) string {
	return t.In(z.Location()).Format("Jan 2 (Monday)")
}
