// Package refdata holds the reference data administrators maintain: users,
// systems, sub-modules, question types and employees.
//
// Admin sheets are schema-less ([Sheet] of generic [Row]s); the application
// reads them through typed views derived by [UsersFrom] and [OptionsFrom].
package refdata

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/calvinalkan/kpi-tracker/internal/record"
)

// SheetKey names one admin sheet.
type SheetKey string

// Admin sheets.
const (
	SheetUsers         SheetKey = "users"
	SheetSystems       SheetKey = "systems"
	SheetSubModules    SheetKey = "subModules"
	SheetQuestionTypes SheetKey = "questionTypes"
	SheetEmployees     SheetKey = "employees"
)

// SheetKeys lists the admin sheets in display order.
var SheetKeys = []SheetKey{SheetUsers, SheetSystems, SheetSubModules, SheetQuestionTypes, SheetEmployees}

// Row keys shared by every sheet.
const (
	IDKey       = "id"
	RowIndexKey = record.RowIndexKey
)

// Column headers of the admin sheets.
const (
	HeaderEmpID        = "使用者工號"
	HeaderUserName     = "使用者姓名"
	HeaderLoginID      = "LOGIN ID"
	HeaderPassword     = "Password"
	HeaderUserEnabled  = "是否啟用"
	HeaderIsAdmin      = "是否為管理者"
	HeaderSystem       = "系統別"
	HeaderParentSystem = "父系統"
	HeaderSubModule    = "子模組"
	HeaderQuestionType = "提問方式"
	HeaderEmployeeID   = "提問人工號"
	HeaderEmployeeName = "提問人姓名"
	HeaderEnabled      = "是否開啟"
	HeaderOrder        = "排序"
)

// Flag values of Y/N columns.
const (
	FlagYes = "Y"
	FlagNo  = "N"
)

var (
	// ErrUnknownSheet is returned for a sheet key outside SheetKeys.
	ErrUnknownSheet = errors.New("unknown sheet")
	// ErrReadOnlyColumn is returned when a row sets a read-only column.
	ErrReadOnlyColumn = errors.New("column is read-only")
	// ErrUnknownColumn is returned when a row sets a column the sheet lacks.
	ErrUnknownColumn = errors.New("unknown column")
)

var defaultHeaders = map[SheetKey][]string{
	SheetUsers:         {IDKey, HeaderEmpID, HeaderUserName, HeaderLoginID, HeaderPassword, HeaderUserEnabled, HeaderIsAdmin},
	SheetSystems:       {IDKey, HeaderSystem, HeaderEnabled, HeaderOrder},
	SheetSubModules:    {IDKey, HeaderParentSystem, HeaderSubModule, HeaderEnabled, HeaderOrder},
	SheetQuestionTypes: {IDKey, HeaderQuestionType, HeaderEnabled, HeaderOrder},
	SheetEmployees:     {IDKey, HeaderEmployeeID, HeaderEmployeeName, HeaderEnabled},
}

// ParseSheetKey validates s as a sheet key.
func ParseSheetKey(s string) (SheetKey, error) {
	for _, k := range SheetKeys {
		if string(k) == s {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownSheet, s, joinKeys())
}

func joinKeys() string {
	names := make([]string, len(SheetKeys))
	for i, k := range SheetKeys {
		names[i] = string(k)
	}

	return strings.Join(names, ", ")
}

// DefaultHeaders returns the column layout a new sheet is created with.
func DefaultHeaders(key SheetKey) []string {
	return append([]string(nil), defaultHeaders[key]...)
}

// IsReadOnly reports whether header is managed by the store.
func IsReadOnly(header string) bool {
	return header == IDKey
}

// IsFlag reports whether header holds a Y/N value.
func IsFlag(header string) bool {
	return strings.Contains(header, "是否") || strings.Contains(header, "管理者")
}

// IsNumeric reports whether header holds a number.
func IsNumeric(header string) bool {
	return header == HeaderOrder || header == IDKey
}

// Row is one schema-less admin row keyed by header. It carries the
// read-only "id" and the store's "_rowIndex" handle.
type Row map[string]any

// String returns the cell under key as text.
func (r Row) String(key string) string {
	return record.CellString(r[key])
}

// Int returns the cell under key as an integer, 0 when not numeric.
func (r Row) Int(key string) int {
	f, err := strconv.ParseFloat(r.String(key), 64)
	if err != nil {
		return 0
	}

	return int(f)
}

// Flag reports whether the Y/N cell under key is set.
func (r Row) Flag(key string) bool {
	return strings.EqualFold(r.String(key), FlagYes)
}

// RowIndex returns the store handle of the row, 0 when unset.
func (r Row) RowIndex() int {
	return r.Int(RowIndexKey)
}

// ID returns the row's id column.
func (r Row) ID() string {
	return r.String(IDKey)
}

// Sheet is the content of one admin sheet.
type Sheet struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"data"`
}

// Find returns the row with the given row index.
func (s *Sheet) Find(rowIndex int) (Row, bool) {
	for _, r := range s.Rows {
		if r.RowIndex() == rowIndex {
			return r, true
		}
	}

	return nil, false
}

// HasHeader reports whether the sheet has a column named h.
func (s *Sheet) HasHeader(h string) bool {
	for _, header := range s.Headers {
		if header == h {
			return true
		}
	}

	return false
}

// Writable returns the headers an add or save may set.
func (s *Sheet) Writable() []string {
	out := make([]string, 0, len(s.Headers))

	for _, h := range s.Headers {
		if !IsReadOnly(h) {
			out = append(out, h)
		}
	}

	return out
}

// CheckRow verifies that row only sets writable columns of s.
func (s *Sheet) CheckRow(row Row) error {
	for key := range row {
		if key == RowIndexKey {
			continue
		}

		if IsReadOnly(key) {
			return fmt.Errorf("%w: %s", ErrReadOnlyColumn, key)
		}

		if !s.HasHeader(key) {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
		}
	}

	return nil
}
