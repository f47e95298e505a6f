package aggregate

import "github.com/calvinalkan/kpi-tracker/internal/record"

// DifficultyStat is the handling time of completed records at one
// difficulty level.
type DifficultyStat struct {
	Level        record.Level `json:"level"`
	Count        int          `json:"count"`
	TotalMinutes int          `json:"totalMinutes"`
	AvgMinutes   int          `json:"avgMinutes"`
}

// ByDifficulty returns exactly one entry per level in rank order (HIGH,
// MID, LOW). Only completed records count; pass Done(records) or the full
// set. A level without records reports an average of 0. Records with an
// unknown difficulty are not attributed to any level.
func ByDifficulty(records []record.Record) []DifficultyStat {
	stats := make([]DifficultyStat, len(record.Levels))
	for i, level := range record.Levels {
		stats[i].Level = level
	}

	for i := range records {
		rec := &records[i]
		if !rec.IsDone || !rec.Difficulty.Known() {
			continue
		}

		// Levels are declared in rank order starting at LevelHigh.
		stat := &stats[rec.Difficulty-record.LevelHigh]
		stat.Count++
		stat.TotalMinutes += minutesOf(rec)
	}

	for i := range stats {
		stats[i].AvgMinutes = roundRatio(stats[i].TotalMinutes, stats[i].Count)
	}

	return stats
}
