// Package record defines the work-item record logged by users and its
// conversion from the schema-less rows of the backing spreadsheet.
package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is one logged work item.
//
// Fields are filled from a schema-less row: anything missing or malformed
// degrades to the zero value. A zero QuestionDate means the date is unknown.
type Record struct {
	ID           int
	RowIndex     int
	System       string
	SubModule    string
	HandlerName  string
	Questioner   string
	QuestionType Category
	QuestionDate time.Time
	ClosedDate   time.Time
	Difficulty   Level
	Priority     Level
	IsDone       bool
	Minutes      int
	Note         string
	CreatedAt    time.Time

	// Cell text of the date columns as read, kept for display when the
	// value could not be parsed.
	QuestionDateRaw string
	ClosedDateRaw   string
}

// HasQuestionDate reports whether QuestionDate parsed.
func (r *Record) HasQuestionDate() bool {
	return !r.QuestionDate.IsZero()
}

// Field names a record attribute for grouping, sorting and display.
type Field string

// Record fields.
const (
	FieldID           Field = "id"
	FieldRowIndex     Field = "rowIndex"
	FieldSystem       Field = "system"
	FieldSubModule    Field = "subModule"
	FieldHandler      Field = "handlerName"
	FieldQuestioner   Field = "questioner"
	FieldQuestionType Field = "questionType"
	FieldQuestionDate Field = "questionDate"
	FieldClosedDate   Field = "closedDate"
	FieldDifficulty   Field = "difficulty"
	FieldPriority     Field = "priority"
	FieldIsDone       Field = "isDone"
	FieldMinutes      Field = "minutes"
	FieldNote         Field = "note"
	FieldCreatedAt    Field = "createdAt"
)

// Fields lists every field in display order.
var Fields = []Field{
	FieldID, FieldRowIndex, FieldSystem, FieldSubModule, FieldHandler,
	FieldQuestioner, FieldQuestionType, FieldQuestionDate, FieldClosedDate,
	FieldDifficulty, FieldPriority, FieldIsDone, FieldMinutes, FieldNote,
	FieldCreatedAt,
}

// ParseField resolves a field by its name (case-insensitive) or by its
// sheet header.
func ParseField(s string) (Field, error) {
	s = strings.TrimSpace(s)

	for _, f := range Fields {
		if strings.EqualFold(string(f), s) || headerFor(f) == s {
			return f, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidField, s)
}

// DateTimeLayout is the layout Value uses for timestamps. It sorts
// chronologically as a string.
const DateTimeLayout = "2006-01-02T15:04:05"

// Value returns the field as a display string. It is also the sort key
// for tabular display.
func (r *Record) Value(f Field) string {
	switch f {
	case FieldID:
		return intString(r.ID)
	case FieldRowIndex:
		return intString(r.RowIndex)
	case FieldSystem:
		return r.System
	case FieldSubModule:
		return r.SubModule
	case FieldHandler:
		return r.HandlerName
	case FieldQuestioner:
		return r.Questioner
	case FieldQuestionType:
		return r.QuestionType.String()
	case FieldQuestionDate:
		return dateString(r.QuestionDate, r.QuestionDateRaw)
	case FieldClosedDate:
		return dateString(r.ClosedDate, r.ClosedDateRaw)
	case FieldDifficulty:
		return r.Difficulty.String()
	case FieldPriority:
		return r.Priority.String()
	case FieldIsDone:
		return strconv.FormatBool(r.IsDone)
	case FieldMinutes:
		if !r.IsDone && r.Minutes == 0 {
			return ""
		}

		return strconv.Itoa(r.Minutes)
	case FieldNote:
		return r.Note
	case FieldCreatedAt:
		return dateString(r.CreatedAt, "")
	default:
		return ""
	}
}

func intString(n int) string {
	if n == 0 {
		return ""
	}

	return strconv.Itoa(n)
}

func dateString(t time.Time, raw string) string {
	if t.IsZero() {
		return raw
	}

	return t.Format(DateTimeLayout)
}

// timeLayouts are tried in order by ParseTime for zone-less values.
var timeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2 15:04:05",
	"2006/1/2",
}

// ParseTime parses an ISO-ish timestamp. Values carrying a zone are
// converted to loc; zone-less values are interpreted in loc. The second
// result is false when s is empty or unparseable.
func ParseTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if loc == nil {
		loc = time.Local
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), true
	}

	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
