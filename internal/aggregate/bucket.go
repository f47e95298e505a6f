package aggregate

import (
	"slices"
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/record"
)

// DayCount is the number of records whose question arrived on Day.
type DayCount struct {
	Day   time.Time `json:"day"`   // midnight, in the bucketing location
	Label string    `json:"label"` // display only, never a sort key
	Count int       `json:"count"`
}

// ByDay buckets records by the calendar day of QuestionDate in loc and
// returns the buckets in chronological order. Equal instants always share
// a bucket whatever zone they were parsed in. A nil loc means UTC.
// Records without a parsed date are left out.
//
// Labels are MM-DD, or YYYY-MM-DD when the buckets span more than one
// year.
func ByDay(records []record.Record, loc *time.Location) []DayCount {
	if loc == nil {
		loc = time.UTC
	}

	index := make(map[string]int)
	buckets := make([]DayCount, 0)

	for i := range records {
		rec := &records[i]
		if !rec.HasQuestionDate() {
			continue
		}

		y, m, d := rec.QuestionDate.In(loc).Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, loc)
		key := day.Format(time.DateOnly)

		pos, ok := index[key]
		if !ok {
			pos = len(buckets)
			index[key] = pos
			buckets = append(buckets, DayCount{Day: day})
		}

		buckets[pos].Count++
	}

	slices.SortFunc(buckets, func(a, b DayCount) int {
		return a.Day.Compare(b.Day)
	})

	layout := "01-02"
	if len(buckets) > 1 && buckets[0].Day.Year() != buckets[len(buckets)-1].Day.Year() {
		layout = time.DateOnly
	}

	for i := range buckets {
		buckets[i].Label = buckets[i].Day.Format(layout)
	}

	return buckets
}
