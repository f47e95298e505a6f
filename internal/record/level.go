package record

import (
	"fmt"
	"strings"
)

// Level is a three-valued rank used for difficulty and priority.
// The zero value is LevelUnknown.
type Level int

// Level values. Ranking order for display and bucketing is High, Mid, Low.
const (
	LevelUnknown Level = iota
	LevelHigh
	LevelMid
	LevelLow
)

// Levels lists the known levels in rank order.
var Levels = []Level{LevelHigh, LevelMid, LevelLow}

// Sheet labels used by the backing spreadsheet.
const (
	labelHigh = "高"
	labelMid  = "中"
	labelLow  = "低"
)

// ParseLevel accepts HIGH|MID|LOW (any case) and the sheet labels 高|中|低.
// Anything else is LevelUnknown.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH", labelHigh:
		return LevelHigh
	case "MID", "MEDIUM", labelMid:
		return LevelMid
	case "LOW", labelLow:
		return LevelLow
	default:
		return LevelUnknown
	}
}

// String returns HIGH, MID, LOW or "" for LevelUnknown.
func (l Level) String() string {
	switch l {
	case LevelHigh:
		return "HIGH"
	case LevelMid:
		return "MID"
	case LevelLow:
		return "LOW"
	default:
		return ""
	}
}

// Label returns the label stored in the sheet.
func (l Level) Label() string {
	switch l {
	case LevelHigh:
		return labelHigh
	case LevelMid:
		return labelMid
	case LevelLow:
		return labelLow
	default:
		return ""
	}
}

// Known reports whether l is one of the three ranked values.
func (l Level) Known() bool {
	return l >= LevelHigh && l <= LevelLow
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*l = LevelUnknown

		return nil
	}

	parsed := ParseLevel(string(text))
	if parsed == LevelUnknown {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, string(text))
	}

	*l = parsed

	return nil
}
