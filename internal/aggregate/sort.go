package aggregate

import (
	"slices"

	"github.com/calvinalkan/kpi-tracker/internal/record"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is a sort direction.
type Direction int

// Sort directions.
const (
	Asc Direction = iota
	Desc
)

// Comparator returns a comparison function over field values for tabular
// display. Values compare as strings in natural order: digit runs compare
// numerically ("2" < "10") and text follows Traditional Chinese
// collation.
//
// The returned function holds a collator and is not safe for concurrent
// use.
func Comparator(field record.Field, dir Direction) func(a, b *record.Record) int {
	col := collate.New(language.TraditionalChinese, collate.Numeric)

	return func(a, b *record.Record) int {
		c := col.CompareString(a.Value(field), b.Value(field))
		if dir == Desc {
			return -c
		}

		return c
	}
}

// SortRecords sorts records in place by field. Equal values keep their
// relative order.
func SortRecords(records []record.Record, field record.Field, dir Direction) {
	cmp := Comparator(field, dir)

	slices.SortStableFunc(records, func(a, b record.Record) int {
		return cmp(&a, &b)
	})
}
