package aggregate

import (
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/record"
)

// Summary is everything the dashboard renders for one record set.
type Summary struct {
	KPIs           KPIs             `json:"kpis"`
	BySystem       []Count          `json:"bySystem"`
	ByQuestionType []Count          `json:"byQuestionType"`
	ByDay          []DayCount       `json:"byDay"`
	Difficulty     []DifficultyStat `json:"difficulty"`
}

// Summarize computes the dashboard aggregates of records. Days are
// bucketed in loc.
func Summarize(records []record.Record, loc *time.Location) Summary {
	return Summary{
		KPIs:           ComputeKPIs(records),
		BySystem:       GroupBy(records, record.FieldSystem),
		ByQuestionType: GroupBy(records, record.FieldQuestionType),
		ByDay:          ByDay(records, loc),
		Difficulty:     ByDifficulty(Done(records)),
	}
}
