package record_test

import (
	"testing"
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() record.Payload {
	return record.Payload{
		System:       "ERP",
		SubModule:    "庫存管理",
		Handler:      "張小明",
		Questioner:   "林二郎",
		Difficulty:   record.LevelMid,
		Priority:     record.LevelHigh,
		QuestionDate: "2024-06-01T09:30",
		QuestionType: "Email",
	}
}

func TestPayloadValidate(t *testing.T) {
	t.Parallel()

	minutes := 45
	negative := -1

	tests := []struct {
		name    string
		mutate  func(p *record.Payload)
		wantErr string
	}{
		{name: "valid open item", mutate: func(*record.Payload) {}},
		{
			name: "valid closed item",
			mutate: func(p *record.Payload) {
				p.IsDone = true
				p.ClosedDate = "2024-06-01T10:15"
				p.Minutes = &minutes
			},
		},
		{name: "missing system", mutate: func(p *record.Payload) { p.System = "" }, wantErr: "system (required)"},
		{name: "unknown level", mutate: func(p *record.Payload) { p.Priority = record.LevelUnknown }, wantErr: "priority (required)"},
		{name: "bad date", mutate: func(p *record.Payload) { p.QuestionDate = "01/06/2024" }, wantErr: "questionDate (datetime)"},
		{
			name: "negative minutes",
			mutate: func(p *record.Payload) {
				p.IsDone = true
				p.Minutes = &negative
			},
			wantErr: "minutes (min)",
		},
		{name: "minutes on open item", mutate: func(p *record.Payload) { p.Minutes = &minutes }, wantErr: "require isDone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := validPayload()
			tt.mutate(&p)

			err := p.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, record.ErrInvalidPayload)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPayloadCellsUseSheetLabels(t *testing.T) {
	t.Parallel()

	minutes := 30
	p := validPayload()
	p.IsDone = true
	p.Minutes = &minutes

	cells := p.Cells()

	assert.Equal(t, "中", cells[record.HeaderDifficulty])
	assert.Equal(t, "高", cells[record.HeaderPriority])
	assert.Equal(t, record.DoneYes, cells[record.HeaderIsDone])
	assert.Equal(t, 30, cells[record.HeaderMinutes])
	assert.NotContains(t, cells, record.HeaderID)
}

func TestPayloadFromRoundTripsThroughRow(t *testing.T) {
	t.Parallel()

	minutes := 20
	p := validPayload()
	p.IsDone = true
	p.ClosedDate = "2024-06-02T11:00"
	p.Minutes = &minutes

	rec := record.FromRow(p.Cells(), time.UTC)
	got := record.PayloadFrom(&rec)

	assert.Equal(t, p, got)
}

func TestPayloadFromDefaultsUnknownLevelsToMid(t *testing.T) {
	t.Parallel()

	rec := record.Record{System: "OA"}
	got := record.PayloadFrom(&rec)

	assert.Equal(t, record.LevelMid, got.Difficulty)
	assert.Equal(t, record.LevelMid, got.Priority)
	assert.Empty(t, got.QuestionDate)
}
