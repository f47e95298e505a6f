package aggregate

import (
	"slices"

	"github.com/calvinalkan/kpi-tracker/internal/record"
)

// UnknownLabel is the bucket for records with an empty grouping value.
const UnknownLabel = "unknown"

// Count is one bucket of a categorical grouping.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// GroupBy counts records per distinct value of field. Buckets are sorted
// by count descending; ties keep first-seen order. Counts always sum to
// len(records).
func GroupBy(records []record.Record, field record.Field) []Count {
	index := make(map[string]int)
	counts := make([]Count, 0)

	for i := range records {
		label := records[i].Value(field)
		if label == "" {
			label = UnknownLabel
		}

		pos, ok := index[label]
		if !ok {
			pos = len(counts)
			index[label] = pos
			counts = append(counts, Count{Label: label})
		}

		counts[pos].Count++
	}

	slices.SortStableFunc(counts, func(a, b Count) int {
		return b.Count - a.Count
	})

	return counts
}
