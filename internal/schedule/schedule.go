// Package schedule holds the calendar arithmetic the booking engine is built on:
// the time-of-day type, the slot grid, and date helpers. Everything here is pure;
// callers pass "today" in explicitly.
package schedule

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TimeOfDay is a clock time with minute precision, stored as minutes since
// midnight. It round-trips through the database as "HH:MM".
type TimeOfDay int

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid time literal %s", b)
	}
	v, err := ParseTimeOfDay(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		return t.Scan(string(v))
	case time.Time:
		*t = TimeOfDay(v.Hour()*60 + v.Minute())
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

// Grid is the ordered set of bookable times for one day. It is built once at
// startup from configuration and treated as read-only afterwards.
type Grid []TimeOfDay

// BuildGrid steps from open to close by intervalMins, inclusive of close when
// the step lands on it exactly.
func BuildGrid(open, close TimeOfDay, intervalMins int) (Grid, error) {
	if intervalMins <= 0 {
		return nil, fmt.Errorf("slot interval must be positive, got %d", intervalMins)
	}
	if close < open {
		return nil, fmt.Errorf("closing time %s is before opening time %s", close, open)
	}
	var grid Grid
	for t := open; t <= close; t += TimeOfDay(intervalMins) {
		grid = append(grid, t)
	}
	return grid, nil
}

func (g Grid) Contains(t TimeOfDay) bool {
	for _, s := range g {
		if s == t {
			return true
		}
	}
	return false
}

// DateOnly strips the clock portion, normalizing to midnight UTC so that
// calendar dates compare with == regardless of the source location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsPast reports whether date falls strictly before today. Both arguments are
// compared as calendar dates.
func IsPast(date, today time.Time) bool {
	return DateOnly(date).Before(DateOnly(today))
}

// AgeAt returns whole years between birth and today, floor semantics: the year
// counter only advances once the anniversary has passed.
func AgeAt(birth, today time.Time) int {
	years := today.Year() - birth.Year()
	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() < birth.Day()) {
		years--
	}
	return years
}

// MonthBounds returns the first and last day of ref's month. The December case
// rolls into January of the following year.
func MonthBounds(ref time.Time) (first, last time.Time) {
	first = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	if ref.Month() == time.December {
		last = time.Date(ref.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	} else {
		last = time.Date(ref.Year(), ref.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	}
	return first, last
}
