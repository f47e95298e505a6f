package filter_test

import (
	"testing"
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/filter"
)

func TestPreset(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 2, 14, 15, 4, 5, 0, time.UTC)
	date := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name     string
		wantFrom time.Time
		wantTo   time.Time
	}{
		{filter.PresetToday, date(2024, 2, 14), date(2024, 2, 14)},
		{filter.PresetWeek, date(2024, 2, 8), date(2024, 2, 14)},
		{filter.PresetMonth, date(2024, 2, 1), date(2024, 2, 29)},
		{filter.PresetAll, time.Time{}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			from, to, err := filter.Preset(tt.name, now)
			if err != nil {
				t.Fatalf("Preset(%q): %v", tt.name, err)
			}

			if !from.Equal(tt.wantFrom) || !to.Equal(tt.wantTo) {
				t.Errorf("Preset(%q) = [%v, %v], want [%v, %v]", tt.name, from, to, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestPresetUnknown(t *testing.T) {
	t.Parallel()

	_, _, err := filter.Preset("fortnight", time.Now())
	if err == nil {
		t.Fatal("expected error for unknown preset")
	}
}

func TestMonthToDate(t *testing.T) {
	t.Parallel()

	from, to := filter.MonthToDate(time.Date(2025, 1, 9, 8, 0, 0, 0, time.UTC))

	if want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Errorf("from = %v, want %v", from, want)
	}

	if want := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC); !to.Equal(want) {
		t.Errorf("to = %v, want %v", to, want)
	}
}

func TestParseDay(t *testing.T) {
	t.Parallel()

	got, err := filter.ParseDay("2024-06-01", time.UTC)
	if err != nil {
		t.Fatal(err)
	}

	if want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got, err := filter.ParseDay("", time.UTC); err != nil || !got.IsZero() {
		t.Errorf("empty input = %v, %v; want zero, nil", got, err)
	}

	if _, err := filter.ParseDay("06/01/2024", time.UTC); err == nil {
		t.Error("expected error for non-ISO day")
	}
}
