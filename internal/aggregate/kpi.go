// Package aggregate computes KPIs, grouped counts and time buckets from a
// record collection. Every function is pure and never fails: missing or
// malformed fields contribute zero.
package aggregate

import (
	"math"

	"github.com/calvinalkan/kpi-tracker/internal/record"
)

// KPIs are the scalar summary statistics of a record set.
type KPIs struct {
	TotalCases     int `json:"totalCases"`
	DoneCases      int `json:"doneCases"`
	CompletionRate int `json:"completionRate"` // percent, 0..100
	TotalMinutes   int `json:"totalMinutes"`   // over done records only
	AvgMinutes     int `json:"avgMinutes"`
	PendingCases   int `json:"pendingCases"`
	UrgentPending  int `json:"urgentPending"` // not done and HIGH priority
}

// ComputeKPIs derives the KPIs of records.
func ComputeKPIs(records []record.Record) KPIs {
	var k KPIs

	k.TotalCases = len(records)

	for i := range records {
		rec := &records[i]

		if rec.IsDone {
			k.DoneCases++
			k.TotalMinutes += minutesOf(rec)

			continue
		}

		if rec.Priority == record.LevelHigh {
			k.UrgentPending++
		}
	}

	k.PendingCases = k.TotalCases - k.DoneCases
	k.CompletionRate = roundRatio(k.DoneCases*100, k.TotalCases)
	k.AvgMinutes = roundRatio(k.TotalMinutes, k.DoneCases)

	return k
}

// Done returns the completed records, in input order.
func Done(records []record.Record) []record.Record {
	done := make([]record.Record, 0, len(records))

	for i := range records {
		if records[i].IsDone {
			done = append(done, records[i])
		}
	}

	return done
}

// minutesOf returns the handling time that counts toward time KPIs.
func minutesOf(rec *record.Record) int {
	if !rec.IsDone || rec.Minutes < 0 || rec.Minutes > record.MaxCellInt {
		return 0
	}

	return rec.Minutes
}

// roundRatio returns round(num/den), or 0 when den is 0.
func roundRatio(num, den int) int {
	if den == 0 {
		return 0
	}

	return int(math.Round(float64(num) / float64(den)))
}
