// Package filter narrows a record collection to the records matching a set
// of user-chosen criteria.
package filter

import (
	"strings"
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/record"
)

// Tristate is a boolean constraint that may be unset.
type Tristate int

// Tristate values.
const (
	Unset Tristate = iota
	Yes
	No
)

// Criteria configures Apply. The zero value matches every record.
//
// String fields match exactly (case-sensitive) except SubModule, which
// matches by substring containment. From and To bound the calendar day of
// QuestionDate, both inclusive.
type Criteria struct {
	Person       string // exact match on HandlerName ("" = all)
	System       string
	SubModule    string // substring of SubModule
	Questioner   string
	QuestionType string
	Difficulty   record.Level // LevelUnknown = all
	Priority     record.Level
	Done         Tristate
	From         time.Time // zero = unbounded
	To           time.Time // zero = unbounded; inclusive to end of day
}

// IsEmpty reports whether c sets no constraint.
func (c *Criteria) IsEmpty() bool {
	return c.Person == "" && c.System == "" && c.SubModule == "" &&
		c.Questioner == "" && c.QuestionType == "" &&
		c.Difficulty == record.LevelUnknown && c.Priority == record.LevelUnknown &&
		c.Done == Unset && !c.hasDateBound()
}

func (c *Criteria) hasDateBound() bool {
	return !c.From.IsZero() || !c.To.IsZero()
}

// Apply returns the records matching every set criterion, in input order.
// An empty criteria set returns records unchanged. Contradictory criteria
// (From after To, a sub-module outside the chosen system) yield an empty
// result.
func Apply(records []record.Record, c Criteria) []record.Record {
	if c.IsEmpty() {
		return records
	}

	filtered := make([]record.Record, 0, len(records))

	for i := range records {
		if Matches(&records[i], &c) {
			filtered = append(filtered, records[i])
		}
	}

	return filtered
}

// Matches reports whether rec satisfies every set criterion in c.
func Matches(rec *record.Record, c *Criteria) bool {
	if c.Person != "" && rec.HandlerName != c.Person {
		return false
	}

	if c.System != "" && rec.System != c.System {
		return false
	}

	if c.SubModule != "" && !strings.Contains(rec.SubModule, c.SubModule) {
		return false
	}

	if c.Questioner != "" && rec.Questioner != c.Questioner {
		return false
	}

	if c.QuestionType != "" && rec.QuestionType.String() != c.QuestionType {
		return false
	}

	if c.Difficulty != record.LevelUnknown && rec.Difficulty != c.Difficulty {
		return false
	}

	if c.Priority != record.LevelUnknown && rec.Priority != c.Priority {
		return false
	}

	switch c.Done {
	case Yes:
		if !rec.IsDone {
			return false
		}
	case No:
		if rec.IsDone {
			return false
		}
	case Unset:
	}

	if c.hasDateBound() {
		return inDateRange(rec, c)
	}

	return true
}

// inDateRange compares at day granularity in the record's location.
// Records without a parsed date never match a bounded range.
func inDateRange(rec *record.Record, c *Criteria) bool {
	if !rec.HasQuestionDate() {
		return false
	}

	at := rec.QuestionDate
	loc := at.Location()

	if !c.From.IsZero() && at.Before(StartOfDay(c.From, loc)) {
		return false
	}

	if !c.To.IsZero() && !at.Before(StartOfDay(c.To, loc).AddDate(0, 0, 1)) {
		return false
	}

	return true
}

// StartOfDay returns midnight of t's calendar date, in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
