package aggregate_test

import (
	"testing"
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/aggregate"
	"github.com/calvinalkan/kpi-tracker/internal/record"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func at(t *testing.T, s string) time.Time {
	t.Helper()

	parsed, ok := record.ParseTime(s, time.UTC)
	if !ok {
		t.Fatalf("bad test time %q", s)
	}

	return parsed
}

func TestComputeKPIsScenario(t *testing.T) {
	t.Parallel()

	records := []record.Record{
		{IsDone: true, Minutes: 30, Priority: record.LevelLow},
		{IsDone: true, Minutes: 50, Priority: record.LevelHigh},
		{IsDone: false, Priority: record.LevelHigh},
	}

	want := aggregate.KPIs{
		TotalCases:     3,
		DoneCases:      2,
		CompletionRate: 67,
		TotalMinutes:   80,
		AvgMinutes:     40,
		PendingCases:   1,
		UrgentPending:  1,
	}

	if diff := cmp.Diff(want, aggregate.ComputeKPIs(records)); diff != "" {
		t.Errorf("KPIs mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeKPIsEmpty(t *testing.T) {
	t.Parallel()

	for _, records := range [][]record.Record{nil, {}} {
		got := aggregate.ComputeKPIs(records)
		if diff := cmp.Diff(aggregate.KPIs{}, got); diff != "" {
			t.Errorf("KPIs of empty set (-want +got):\n%s", diff)
		}
	}
}

func TestComputeKPIsIgnoresMinutesOfOpenRecords(t *testing.T) {
	t.Parallel()

	records := []record.Record{
		{IsDone: false, Minutes: 500},
		{IsDone: true, Minutes: 10},
		{IsDone: true},
	}

	got := aggregate.ComputeKPIs(records)

	if got.TotalMinutes != 10 {
		t.Errorf("TotalMinutes = %d, want 10", got.TotalMinutes)
	}

	if got.AvgMinutes != 5 {
		t.Errorf("AvgMinutes = %d, want 5", got.AvgMinutes)
	}
}

func TestComputeKPIsSkipsOversizedMinutes(t *testing.T) {
	t.Parallel()

	records := []record.Record{
		{IsDone: true, Minutes: 1 << 62},
		{IsDone: true, Minutes: 1 << 62},
		{IsDone: true, Minutes: 20},
	}

	got := aggregate.ComputeKPIs(records)

	if got.TotalMinutes != 20 {
		t.Errorf("TotalMinutes = %d, want 20", got.TotalMinutes)
	}

	for _, stat := range aggregate.ByDifficulty(records) {
		if stat.TotalMinutes < 0 {
			t.Errorf("%v TotalMinutes = %d, want non-negative", stat.Level, stat.TotalMinutes)
		}
	}
}

func TestComputeKPIsInvariants(t *testing.T) {
	t.Parallel()

	sets := [][]record.Record{
		{},
		{{IsDone: true}},
		{{IsDone: false}},
		{{IsDone: true}, {IsDone: false}, {IsDone: false}},
		{{IsDone: true}, {IsDone: true}, {IsDone: true}, {IsDone: false, Priority: record.LevelHigh}},
	}

	for _, records := range sets {
		k := aggregate.ComputeKPIs(records)

		if k.CompletionRate < 0 || k.CompletionRate > 100 {
			t.Errorf("CompletionRate = %d out of range for %d records", k.CompletionRate, len(records))
		}

		if k.PendingCases+k.DoneCases != k.TotalCases {
			t.Errorf("pending %d + done %d != total %d", k.PendingCases, k.DoneCases, k.TotalCases)
		}
	}
}

func TestGroupBySystemScenario(t *testing.T) {
	t.Parallel()

	records := []record.Record{{System: "ERP"}, {System: "ERP"}, {System: ""}}

	want := []aggregate.Count{{Label: "ERP", Count: 2}, {Label: "unknown", Count: 1}}

	if diff := cmp.Diff(want, aggregate.GroupBy(records, record.FieldSystem)); diff != "" {
		t.Errorf("GroupBy mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupByTiesKeepFirstSeenOrder(t *testing.T) {
	t.Parallel()

	records := []record.Record{
		{QuestionType: record.Known("Teams")},
		{QuestionType: record.Known("電話")},
		{QuestionType: record.Other("LINE")},
		{QuestionType: record.Known("電話")},
		{QuestionType: record.Known("Teams")},
		{},
	}

	want := []aggregate.Count{
		{Label: "Teams", Count: 2},
		{Label: "電話", Count: 2},
		{Label: "LINE", Count: 1},
		{Label: "unknown", Count: 1},
	}

	got := aggregate.GroupBy(records, record.FieldQuestionType)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GroupBy mismatch (-want +got):\n%s", diff)
	}

	sum := 0
	for _, c := range got {
		sum += c.Count
	}

	if sum != len(records) {
		t.Errorf("counts sum to %d, want %d", sum, len(records))
	}
}

func TestGroupByEmpty(t *testing.T) {
	t.Parallel()

	if got := aggregate.GroupBy(nil, record.FieldSystem); len(got) != 0 {
		t.Errorf("GroupBy(nil) = %v, want empty", got)
	}
}

func TestByDaySortsAcrossYearBoundary(t *testing.T) {
	t.Parallel()

	records := []record.Record{
		{QuestionDate: at(t, "2025-01-02T10:00:00")},
		{QuestionDate: at(t, "2024-12-31T09:00:00")},
		{QuestionDateRaw: "garbage"},
		{QuestionDate: at(t, "2025-01-02T18:00:00")},
		{QuestionDate: at(t, "2024-12-30T23:59:59")},
	}

	got := aggregate.ByDay(records, time.UTC)

	want := []aggregate.DayCount{
		{Day: at(t, "2024-12-30"), Label: "2024-12-30", Count: 1},
		{Day: at(t, "2024-12-31"), Label: "2024-12-31", Count: 1},
		{Day: at(t, "2025-01-02"), Label: "2025-01-02", Count: 2},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ByDay mismatch (-want +got):\n%s", diff)
	}

	for i := 1; i < len(got); i++ {
		if got[i].Day.Before(got[i-1].Day) {
			t.Errorf("bucket %d (%s) before bucket %d (%s)", i, got[i].Label, i-1, got[i-1].Label)
		}
	}
}

func TestByDayShortLabelsWithinOneYear(t *testing.T) {
	t.Parallel()

	records := []record.Record{
		{QuestionDate: at(t, "2024-06-02T10:00:00")},
		{QuestionDate: at(t, "2024-06-01T23:30:00")},
	}

	got := aggregate.ByDay(records, time.UTC)

	labels := make([]string, 0, len(got))
	for _, b := range got {
		labels = append(labels, b.Label)
	}

	if diff := cmp.Diff([]string{"06-01", "06-02"}, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestByDayExcludesUnparsedDates(t *testing.T) {
	t.Parallel()

	got := aggregate.ByDay([]record.Record{{QuestionDateRaw: "n/a"}, {}}, time.UTC)
	if len(got) != 0 {
		t.Errorf("ByDay = %v, want no buckets", got)
	}
}

func TestByDayBucketsEqualInstantsTogether(t *testing.T) {
	t.Parallel()

	taipei := time.FixedZone("UTC+8", 8*60*60)
	instant := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

	records := []record.Record{
		{QuestionDate: instant},
		{QuestionDate: instant.In(taipei)},
	}

	got := aggregate.ByDay(records, taipei)

	want := []aggregate.DayCount{
		{Day: time.Date(2024, 6, 2, 0, 0, 0, 0, taipei), Label: "06-02", Count: 2},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ByDay mismatch (-want +got):\n%s", diff)
	}
}

func TestByDifficultyAlwaysThreeLevels(t *testing.T) {
	t.Parallel()

	records := []record.Record{
		{IsDone: true, Difficulty: record.LevelHigh, Minutes: 90},
		{IsDone: true, Difficulty: record.LevelHigh, Minutes: 31},
		{IsDone: true, Difficulty: record.LevelLow, Minutes: 5},
		{IsDone: false, Difficulty: record.LevelMid, Minutes: 100},
		{IsDone: true, Minutes: 1000},
	}

	want := []aggregate.DifficultyStat{
		{Level: record.LevelHigh, Count: 2, TotalMinutes: 121, AvgMinutes: 61},
		{Level: record.LevelMid, Count: 0, TotalMinutes: 0, AvgMinutes: 0},
		{Level: record.LevelLow, Count: 1, TotalMinutes: 5, AvgMinutes: 5},
	}

	if diff := cmp.Diff(want, aggregate.ByDifficulty(records)); diff != "" {
		t.Errorf("ByDifficulty mismatch (-want +got):\n%s", diff)
	}

	empty := aggregate.ByDifficulty(nil)
	if len(empty) != 3 {
		t.Fatalf("ByDifficulty(nil) returned %d entries, want 3", len(empty))
	}

	for _, s := range empty {
		if s.AvgMinutes != 0 || s.Count != 0 {
			t.Errorf("empty level %v = %+v, want zeros", s.Level, s)
		}
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	records := []record.Record{
		{System: "ERP", QuestionType: record.Known("電話"), QuestionDate: at(t, "2024-06-01T09:00:00"),
			IsDone: true, Minutes: 20, Difficulty: record.LevelMid},
		{System: "CRM", QuestionType: record.Known("電話"), QuestionDate: at(t, "2024-06-01T11:00:00"),
			Priority: record.LevelHigh},
	}

	got := aggregate.Summarize(records, time.UTC)

	if got.KPIs.TotalCases != 2 || got.KPIs.UrgentPending != 1 {
		t.Errorf("KPIs = %+v", got.KPIs)
	}

	if diff := cmp.Diff([]aggregate.Count{{Label: "電話", Count: 2}}, got.ByQuestionType); diff != "" {
		t.Errorf("ByQuestionType (-want +got):\n%s", diff)
	}

	if len(got.BySystem) != 2 || len(got.ByDay) != 1 || got.ByDay[0].Count != 2 {
		t.Errorf("unexpected buckets: systems=%v days=%v", got.BySystem, got.ByDay)
	}

	mid := got.Difficulty[1]
	if diff := cmp.Diff(aggregate.DifficultyStat{Level: record.LevelMid, Count: 1, TotalMinutes: 20, AvgMinutes: 20}, mid,
		cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("MID stat (-want +got):\n%s", diff)
	}
}
