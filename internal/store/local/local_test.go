package local_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/record"
	"github.com/calvinalkan/kpi-tracker/internal/refdata"
	"github.com/calvinalkan/kpi-tracker/internal/store"
	"github.com/calvinalkan/kpi-tracker/internal/store/local"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSeeded(t *testing.T) (*store.Table, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), local.DefaultFileName)
	require.NoError(t, local.Init(path, store.DefaultRecordsSheet, refdata.Seed(), false))

	logger, _ := test.NewNullLogger()

	return local.Open(path, store.TableOptions{Location: time.UTC, Logger: logger}), path
}

func TestInitSeedsReferenceData(t *testing.T) {
	t.Parallel()

	tbl, _ := openSeeded(t)

	users, err := tbl.Users(t.Context())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "張小明", users[0].Name)
	assert.True(t, users[0].IsAdmin)
	assert.False(t, users[1].IsAdmin)

	opts, err := tbl.FormOptions(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"ERP", "CRM", "OA", "其它"}, opts.SystemNames())
	assert.Equal(t, []string{"請假系統", "公文流程"}, opts.SubModulesOf("OA"))

	records, err := tbl.FetchRecords(t.Context(), "", true)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestInitRefusesToOverwrite(t *testing.T) {
	t.Parallel()

	_, path := openSeeded(t)

	err := local.Init(path, store.DefaultRecordsSheet, refdata.Seed(), false)
	require.ErrorIs(t, err, local.ErrWorkbookExists)

	require.NoError(t, local.Init(path, store.DefaultRecordsSheet, nil, true))

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestMissingWorkbookIsUnavailable(t *testing.T) {
	t.Parallel()

	tbl := local.Open(filepath.Join(t.TempDir(), "nope.json"), store.TableOptions{})

	_, err := tbl.FetchRecords(t.Context(), "ming", false)
	require.ErrorIs(t, err, store.ErrUnavailable)
	require.ErrorIs(t, err, local.ErrNoWorkbook)
}

func TestRecordsSurviveReopen(t *testing.T) {
	t.Parallel()

	tbl, path := openSeeded(t)

	p := record.Payload{
		System: "CRM", SubModule: "客戶管理", Handler: "李大華", Questioner: "林二郎",
		Difficulty: record.LevelLow, Priority: record.LevelHigh,
		QuestionDate: "2024-06-02T14:00", QuestionType: "Email",
	}
	require.NoError(t, tbl.AppendRecord(t.Context(), p))

	reopened := local.Open(path, store.TableOptions{Location: time.UTC})

	got, err := reopened.FetchRecords(t.Context(), "李大華", false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "客戶管理", got[0].SubModule)
	assert.Equal(t, record.LevelHigh, got[0].Priority)
	assert.Equal(t, "Email", got[0].QuestionType.String())
	assert.True(t, time.Date(2024, 6, 2, 14, 0, 0, 0, time.UTC).Equal(got[0].QuestionDate))

	none, err := reopened.FetchRecords(t.Context(), "張小明", false)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestConcurrentAppendsAreSerialised(t *testing.T) {
	t.Parallel()

	_, path := openSeeded(t)

	const writers = 8

	var wg sync.WaitGroup

	errs := make(chan error, writers)

	for range writers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			tbl := local.Open(path, store.TableOptions{})
			errs <- tbl.AddRow(t.Context(), refdata.SheetEmployees,
				refdata.Row{"提問人工號": "S9", "提問人姓名": "x", "是否開啟": "Y"}, nil)
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	sheet, err := local.Open(path, store.TableOptions{}).Sheet(t.Context(), refdata.SheetEmployees)
	require.NoError(t, err)
	assert.Len(t, sheet.Rows, 4+writers)
}

func TestWriteOutOfRange(t *testing.T) {
	t.Parallel()

	_, path := openSeeded(t)
	b := local.New(path)

	err := b.Write(t.Context(), string(refdata.SheetUsers), 99, []any{"x"})
	require.ErrorIs(t, err, local.ErrRowOutOfRange)

	err = b.Delete(t.Context(), string(refdata.SheetUsers), 1)
	require.ErrorIs(t, err, local.ErrRowOutOfRange)
}
