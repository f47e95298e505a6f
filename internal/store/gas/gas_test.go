package gas_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/record"
	"github.com/calvinalkan/kpi-tracker/internal/refdata"
	"github.com/calvinalkan/kpi-tracker/internal/store"
	"github.com/calvinalkan/kpi-tracker/internal/store/gas"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProxy mimics the Apps Script web app.
type fakeProxy struct {
	mu    sync.Mutex
	posts []map[string]any
	reply string
}

func (f *fakeProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		body, _ := io.ReadAll(r.Body)

		var req map[string]any
		_ = json.Unmarshal(body, &req)

		f.mu.Lock()
		f.posts = append(f.posts, req)
		reply := f.reply
		f.mu.Unlock()

		if reply == "" {
			reply = `{"status":"ok"}`
		}

		_, _ = io.WriteString(w, reply)

		return
	}

	q := r.URL.Query()

	switch q.Get("action") {
	case "getUsers":
		_, _ = io.WriteString(w, `[{"id":"1","empId":"E001","name":"張小明","loginId":"ming","isAdmin":true}]`)
	case "getFormOptions":
		_, _ = io.WriteString(w, `{"systems":[{"id":"1","name":"ERP","order":1}],"subModules":[],"questionTypes":[],"employees":[]}`)
	case "getRecords":
		rows := `[
			{"_rowIndex":2,"id":1,"系統別":"ERP","處理人員姓名":"張小明","提問日期":"2024-06-01T01:00:00.000Z","是否完成":"是","處理分鐘數":30,"難度":"高"},
			{"_rowIndex":3,"id":2,"系統別":"CRM","處理人員姓名":"李大華","提問日期":"2024-06-02 10:00","是否完成":"否"}
		]`
		if q.Get("isAdmin") != "true" && q.Get("handler") != "" {
			rows = `[{"_rowIndex":2,"id":1,"系統別":"ERP","處理人員姓名":"` + q.Get("handler") + `"}]`
		}

		_, _ = io.WriteString(w, rows)
	case "getAdminSheet":
		_, _ = io.WriteString(w, `{"headers":["id","系統別","是否開啟","排序"],"data":[{"_rowIndex":2,"id":1,"系統別":"ERP","是否開啟":"Y","排序":1}]}`)
	case "broken":
		_, _ = io.WriteString(w, "<html>Error</html>")
	default:
		_, _ = io.WriteString(w, `{"status":"error","message":"unknown action"}`)
	}
}

func newClient(t *testing.T, h http.Handler) *gas.Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	logger, _ := test.NewNullLogger()

	return gas.New(srv.URL, gas.Options{
		HTTPClient: srv.Client(),
		Location:   time.FixedZone("UTC+8", 8*60*60),
		Logger:     logger,
	})
}

func TestReads(t *testing.T) {
	t.Parallel()

	c := newClient(t, &fakeProxy{})
	ctx := t.Context()

	users, err := c.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ming", users[0].LoginID)
	assert.True(t, users[0].IsAdmin)

	opts, err := c.FormOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ERP"}, opts.SystemNames())

	sheet, err := c.Sheet(ctx, refdata.SheetSystems)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "系統別", "是否開啟", "排序"}, sheet.Headers)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, 2, sheet.Rows[0].RowIndex())
}

func TestReadsAcceptNumericCells(t *testing.T) {
	t.Parallel()

	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "getUsers":
			_, _ = io.WriteString(w, `[{"id":1,"empId":"E001","name":"張小明","loginId":"ming","isAdmin":"Y"},`+
				`{"id":2,"empId":2,"name":"李大華","loginId":"hua","isAdmin":false}]`)
		case "getFormOptions":
			_, _ = io.WriteString(w, `{"systems":[{"id":1,"name":"ERP","order":"2"},{"id":2,"name":"CRM","order":1}],`+
				`"subModules":[{"id":7,"parentSystem":"ERP","name":"採購模組","order":1}],`+
				`"questionTypes":[{"id":3,"name":"電話","order":1}],`+
				`"employees":[{"id":4,"empId":1001,"name":"陳一心"}]}`)
		}
	}))
	ctx := t.Context()

	users, err := c.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []refdata.User{
		{ID: "1", EmpID: "E001", Name: "張小明", LoginID: "ming", IsAdmin: true},
		{ID: "2", EmpID: "2", Name: "李大華", LoginID: "hua"},
	}, users)

	opts, err := c.FormOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []refdata.System{{ID: "1", Name: "ERP", Order: 2}, {ID: "2", Name: "CRM", Order: 1}}, opts.Systems)
	assert.Equal(t, []refdata.SubModule{{ID: "7", ParentSystem: "ERP", Name: "採購模組", Order: 1}}, opts.SubModules)
	assert.Equal(t, []refdata.QuestionType{{ID: "3", Name: "電話", Order: 1}}, opts.QuestionTypes)
	assert.Equal(t, []refdata.Employee{{ID: "4", EmpID: "1001", Name: "陳一心"}}, opts.Employees)
}

func TestFetchRecords(t *testing.T) {
	t.Parallel()

	c := newClient(t, &fakeProxy{})

	all, err := c.FetchRecords(t.Context(), "張小明", true)
	require.NoError(t, err)
	require.Len(t, all, 2)

	first := all[0]
	assert.Equal(t, 2, first.RowIndex)
	assert.Equal(t, 30, first.Minutes)
	assert.Equal(t, record.LevelHigh, first.Difficulty)
	assert.Equal(t, 9, first.QuestionDate.Hour(), "UTC timestamp shown in UTC+8")
	assert.Equal(t, 10, all[1].QuestionDate.Hour())

	own, err := c.FetchRecords(t.Context(), "李大華", false)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "李大華", own[0].HandlerName)
}

func TestWritesPostActions(t *testing.T) {
	t.Parallel()

	proxy := &fakeProxy{}
	c := newClient(t, proxy)
	ctx := t.Context()

	p := record.Payload{
		System: "ERP", Handler: "張小明", Questioner: "陳一心",
		Difficulty: record.LevelLow, Priority: record.LevelHigh,
		QuestionDate: "2024-06-01T09:00", QuestionType: "電話",
	}

	require.NoError(t, c.AppendRecord(ctx, p))
	require.NoError(t, c.UpdateRecord(ctx, 5, p))
	require.NoError(t, c.AddRow(ctx, refdata.SheetSystems, refdata.Row{"系統別": "HR"}, []string{"系統別"}))
	require.NoError(t, c.SaveRow(ctx, refdata.SheetSystems, 3, refdata.Row{"系統別": "HR"}, []string{"系統別"}))
	require.NoError(t, c.DeleteRow(ctx, refdata.SheetSystems, 3))

	require.Len(t, proxy.posts, 5)

	appendReq := proxy.posts[0]
	assert.Equal(t, "appendRecord", appendReq["action"])
	assert.Equal(t, "ERP", appendReq["system"])
	assert.Equal(t, "HIGH", appendReq["priority"])

	updateReq := proxy.posts[1]
	assert.Equal(t, "updateRecord", updateReq["action"])
	assert.InDelta(t, 5, updateReq["rowIndex"], 0)
	assert.Equal(t, "LOW", updateReq["rowData"].(map[string]any)["difficulty"])

	assert.Equal(t, "addAdminRow", proxy.posts[2]["action"])
	assert.Equal(t, "saveAdminRow", proxy.posts[3]["action"])
	assert.Equal(t, "deleteAdminRow", proxy.posts[4]["action"])
	assert.Equal(t, "systems", proxy.posts[4]["sheet"])
}

func TestRejectedWriteKeepsMessage(t *testing.T) {
	t.Parallel()

	c := newClient(t, &fakeProxy{reply: `{"status":"error","message":"列不存在"}`})

	err := c.DeleteRow(t.Context(), refdata.SheetUsers, 42)
	require.ErrorIs(t, err, store.ErrRejected)
	assert.Contains(t, err.Error(), "列不存在")
}

func TestNonJSONIsUnavailable(t *testing.T) {
	t.Parallel()

	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>Sign in</html>")
	}))

	_, err := c.Users(t.Context())
	require.ErrorIs(t, err, store.ErrUnavailable)
	assert.Contains(t, err.Error(), "<html>Sign in</html>")

	err = c.DeleteRow(t.Context(), refdata.SheetUsers, 2)
	require.ErrorIs(t, err, store.ErrUnavailable)
}

func TestHTTPErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))

	_, err := c.FetchRecords(t.Context(), "ming", false)
	require.ErrorIs(t, err, store.ErrUnavailable)
	assert.Contains(t, err.Error(), "429")
}

func TestInvalidPayloadNeverSent(t *testing.T) {
	t.Parallel()

	proxy := &fakeProxy{}
	c := newClient(t, proxy)

	err := c.AppendRecord(t.Context(), record.Payload{})
	require.ErrorIs(t, err, record.ErrInvalidPayload)
	assert.Empty(t, proxy.posts)
}
