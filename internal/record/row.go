package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Sheet headers of the records sheet.
const (
	HeaderID           = "id"
	HeaderSystem       = "系統別"
	HeaderSubModule    = "子模組"
	HeaderHandler      = "處理人員姓名"
	HeaderQuestioner   = "提問人員"
	HeaderQuestionType = "提問方式"
	HeaderQuestionDate = "提問日期"
	HeaderClosedDate   = "結案日期"
	HeaderDifficulty   = "難度"
	HeaderPriority     = "優先權"
	HeaderIsDone       = "是否完成"
	HeaderMinutes      = "處理分鐘數"
	HeaderNote         = "備註"
	HeaderCreatedAt    = "建立日期時間"

	// RowIndexKey carries the row handle in rows returned by the store.
	RowIndexKey = "_rowIndex"
)

// Headers is the column order of the records sheet.
var Headers = []string{
	HeaderID, HeaderSystem, HeaderSubModule, HeaderHandler, HeaderQuestioner,
	HeaderQuestionType, HeaderQuestionDate, HeaderClosedDate, HeaderDifficulty,
	HeaderPriority, HeaderIsDone, HeaderMinutes, HeaderNote, HeaderCreatedAt,
}

// Sheet values for the completion column.
const (
	DoneYes = "是"
	DoneNo  = "否"
)

func headerFor(f Field) string {
	switch f {
	case FieldID:
		return HeaderID
	case FieldRowIndex:
		return RowIndexKey
	case FieldSystem:
		return HeaderSystem
	case FieldSubModule:
		return HeaderSubModule
	case FieldHandler:
		return HeaderHandler
	case FieldQuestioner:
		return HeaderQuestioner
	case FieldQuestionType:
		return HeaderQuestionType
	case FieldQuestionDate:
		return HeaderQuestionDate
	case FieldClosedDate:
		return HeaderClosedDate
	case FieldDifficulty:
		return HeaderDifficulty
	case FieldPriority:
		return HeaderPriority
	case FieldIsDone:
		return HeaderIsDone
	case FieldMinutes:
		return HeaderMinutes
	case FieldNote:
		return HeaderNote
	case FieldCreatedAt:
		return HeaderCreatedAt
	default:
		return ""
	}
}

// Header returns the sheet header of a field.
func (f Field) Header() string {
	return headerFor(f)
}

// lookup returns the cell for f, trying the sheet header first and the
// field name second.
func lookup(row map[string]any, f Field) any {
	if v, ok := row[headerFor(f)]; ok {
		return v
	}

	if v, ok := row[string(f)]; ok {
		return v
	}

	// The proxy spells the handler column "handler" in payloads.
	if f == FieldHandler {
		return row["handler"]
	}

	return nil
}

// FromRow builds a Record from a schema-less row. It never fails: missing
// or malformed cells become zero values.
func FromRow(row map[string]any, loc *time.Location) Record {
	str := func(f Field) string { return CellString(lookup(row, f)) }

	rec := Record{
		ID:              cellInt(lookup(row, FieldID)),
		RowIndex:        cellInt(row[RowIndexKey]),
		System:          str(FieldSystem),
		SubModule:       str(FieldSubModule),
		HandlerName:     str(FieldHandler),
		Questioner:      str(FieldQuestioner),
		QuestionType:    Known(str(FieldQuestionType)),
		Difficulty:      ParseLevel(str(FieldDifficulty)),
		Priority:        ParseLevel(str(FieldPriority)),
		IsDone:          cellBool(lookup(row, FieldIsDone)),
		Note:            str(FieldNote),
		QuestionDateRaw: str(FieldQuestionDate),
		ClosedDateRaw:   str(FieldClosedDate),
	}

	rec.QuestionDate, _ = ParseTime(rec.QuestionDateRaw, loc)
	rec.ClosedDate, _ = ParseTime(rec.ClosedDateRaw, loc)
	rec.CreatedAt, _ = ParseTime(str(FieldCreatedAt), loc)

	if minutes := cellInt(lookup(row, FieldMinutes)); minutes > 0 {
		rec.Minutes = minutes
	}

	return rec
}

// CellString renders a cell value as text. Numbers print without
// trailing zeros.
func CellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// MaxCellInt bounds the whole numbers read from cells. Larger magnitudes
// are treated as malformed.
const MaxCellInt = 1_000_000_000

// cellInt reads a whole number; non-numeric or out of range values are 0.
func cellInt(v any) int {
	switch val := v.(type) {
	case int:
		return boundInt(int64(val))
	case int64:
		return boundInt(val)
	}

	f, ok := v.(float64)
	if !ok {
		s := CellString(v)
		if s == "" {
			return 0
		}

		var err error

		f, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
	}

	if math.IsNaN(f) || math.Abs(f) > MaxCellInt {
		return 0
	}

	return int(math.Round(f))
}

func boundInt(n int64) int {
	if n > MaxCellInt || n < -MaxCellInt {
		return 0
	}

	return int(n)
}

func cellBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}

	switch strings.ToLower(CellString(v)) {
	case DoneYes, "true", "y", "yes", "1":
		return true
	default:
		return false
	}
}
