package filter

import (
	"errors"
	"fmt"
	"time"
)

// Range presets offered by the records view.
const (
	PresetToday = "today"
	PresetWeek  = "week"
	PresetMonth = "month"
	PresetAll   = "all"
)

// Presets lists the valid preset names.
var Presets = []string{PresetToday, PresetWeek, PresetMonth, PresetAll}

var errUnknownPreset = errors.New("unknown range preset")

// Preset returns the day bounds for a named range relative to now.
// PresetAll returns zero bounds (unbounded).
func Preset(name string, now time.Time) (from, to time.Time, err error) {
	today := StartOfDay(now, now.Location())

	switch name {
	case PresetToday:
		return today, today, nil
	case PresetWeek:
		return today.AddDate(0, 0, -6), today, nil
	case PresetMonth:
		first := today.AddDate(0, 0, 1-today.Day())

		return first, first.AddDate(0, 1, -1), nil
	case PresetAll:
		return time.Time{}, time.Time{}, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q (want today|week|month|all)", errUnknownPreset, name)
	}
}

// MonthToDate returns the first day of now's month and today: the
// dashboard's default range.
func MonthToDate(now time.Time) (from, to time.Time) {
	today := StartOfDay(now, now.Location())

	return today.AddDate(0, 0, 1-today.Day()), today
}

// ParseDay parses a YYYY-MM-DD day bound in loc. Empty input is the zero
// time (unbounded).
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}

	return t, nil
}
