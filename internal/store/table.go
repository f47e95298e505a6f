package store

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/record"
	"github.com/calvinalkan/kpi-tracker/internal/refdata"

	"github.com/sirupsen/logrus"
)

// DefaultRecordsSheet is the sheet records are stored in unless configured
// otherwise.
const DefaultRecordsSheet = "records"

// firstDataRow is the row index of the first row below the header.
const firstDataRow = 2

// Backend is raw row storage organised as named sheets. Row 1 of a sheet
// holds the headers, data rows start at row 2.
type Backend interface {
	// Values returns every row of sheet, headers first. A sheet that does
	// not exist yet has no rows.
	Values(ctx context.Context, sheet string) ([][]any, error)
	// Append adds row below the last row, creating the sheet if needed.
	Append(ctx context.Context, sheet string, row []any) error
	// Write replaces the row at rowIndex.
	Write(ctx context.Context, sheet string, rowIndex int, row []any) error
	// Delete removes the row at rowIndex. Rows below move up by one.
	Delete(ctx context.Context, sheet string, rowIndex int) error
}

// TableOptions configures NewTable.
type TableOptions struct {
	RecordsSheet string           // default DefaultRecordsSheet
	Location     *time.Location   // zone-less dates; default time.Local
	Now          func() time.Time // default time.Now
	Logger       *logrus.Logger   // default logrus.StandardLogger()
}

// Table implements Store on top of a Backend. It owns everything the
// spreadsheet itself does not: id assignment, creation timestamps, owner
// filtering and header-keyed row mapping.
type Table struct {
	backend Backend
	records string
	loc     *time.Location
	now     func() time.Time
	log     *logrus.Logger
}

var _ Store = (*Table)(nil)

// NewTable returns a Store backed by b.
func NewTable(b Backend, opts TableOptions) *Table {
	t := &Table{
		backend: b,
		records: opts.RecordsSheet,
		loc:     opts.Location,
		now:     opts.Now,
		log:     opts.Logger,
	}

	if t.records == "" {
		t.records = DefaultRecordsSheet
	}

	if t.loc == nil {
		t.loc = time.Local
	}

	if t.now == nil {
		t.now = time.Now
	}

	if t.log == nil {
		t.log = logrus.StandardLogger()
	}

	return t
}

// Users returns the enabled users.
func (t *Table) Users(ctx context.Context) ([]refdata.User, error) {
	sheet, err := t.read(ctx, string(refdata.SheetUsers))
	if err != nil {
		return nil, err
	}

	return refdata.UsersFrom(sheet), nil
}

// FormOptions returns the enabled options of the four option sheets.
func (t *Table) FormOptions(ctx context.Context) (refdata.FormOptions, error) {
	keys := []refdata.SheetKey{
		refdata.SheetSystems, refdata.SheetSubModules, refdata.SheetQuestionTypes, refdata.SheetEmployees,
	}

	sheets := make([]refdata.Sheet, len(keys))

	for i, key := range keys {
		sheet, err := t.read(ctx, string(key))
		if err != nil {
			return refdata.FormOptions{}, err
		}

		sheets[i] = sheet
	}

	return refdata.OptionsFrom(sheets[0], sheets[1], sheets[2], sheets[3]), nil
}

// FetchRecords reads the records sheet.
func (t *Table) FetchRecords(ctx context.Context, owner string, privileged bool) ([]record.Record, error) {
	sheet, err := t.read(ctx, t.records)
	if err != nil {
		return nil, err
	}

	records := make([]record.Record, 0, len(sheet.Rows))

	for _, row := range sheet.Rows {
		rec := record.FromRow(row, t.loc)
		if !privileged && rec.HandlerName != owner {
			continue
		}

		records = append(records, rec)
	}

	return records, nil
}

// AppendRecord validates p and adds it as a new row with the next id and
// the current time as creation time.
func (t *Table) AppendRecord(ctx context.Context, p record.Payload) error {
	err := p.Validate()
	if err != nil {
		return err
	}

	cells := p.Cells()
	cells[record.HeaderCreatedAt] = t.now().In(t.loc).Format(record.DateTimeLayout)

	return t.append(ctx, t.records, record.Headers, cells)
}

// UpdateRecord validates p and overwrites the editable cells of the row at
// rowIndex. The id and creation time are kept.
func (t *Table) UpdateRecord(ctx context.Context, rowIndex int, p record.Payload) error {
	err := p.Validate()
	if err != nil {
		return err
	}

	sheet, err := t.read(ctx, t.records)
	if err != nil {
		return err
	}

	existing, ok := sheet.Find(rowIndex)
	if !ok {
		return fmt.Errorf("%w: %s row %d", ErrRowNotFound, t.records, rowIndex)
	}

	return t.write(ctx, t.records, rowIndex, rowValues(sheet.Headers, merge(existing, p.Cells())))
}

// Sheet returns an admin sheet. A sheet that does not exist yet has the
// default headers and no rows.
func (t *Table) Sheet(ctx context.Context, key refdata.SheetKey) (refdata.Sheet, error) {
	sheet, err := t.read(ctx, string(key))
	if err != nil {
		return refdata.Sheet{}, err
	}

	if len(sheet.Headers) == 0 {
		sheet.Headers = refdata.DefaultHeaders(key)
	}

	return sheet, nil
}

// AddRow appends row to an admin sheet with the next id. headers is the
// column layout used when the sheet is still empty.
func (t *Table) AddRow(ctx context.Context, key refdata.SheetKey, row refdata.Row, headers []string) error {
	sheet, err := t.read(ctx, string(key))
	if err != nil {
		return err
	}

	layout := sheet.Headers
	if len(layout) == 0 {
		layout = headers
	}

	if len(layout) == 0 {
		layout = refdata.DefaultHeaders(key)
	}

	check := refdata.Sheet{Headers: layout}

	err = check.CheckRow(row)
	if err != nil {
		return err
	}

	return t.append(ctx, string(key), layout, maps.Clone(row))
}

// SaveRow overwrites the writable cells of the admin row at rowIndex.
func (t *Table) SaveRow(ctx context.Context, key refdata.SheetKey, rowIndex int, row refdata.Row, _ []string) error {
	sheet, err := t.read(ctx, string(key))
	if err != nil {
		return err
	}

	existing, ok := sheet.Find(rowIndex)
	if !ok {
		return fmt.Errorf("%w: %s row %d", ErrRowNotFound, key, rowIndex)
	}

	err = sheet.CheckRow(row)
	if err != nil {
		return err
	}

	return t.write(ctx, string(key), rowIndex, rowValues(sheet.Headers, merge(existing, row)))
}

// DeleteRow removes the admin row at rowIndex.
func (t *Table) DeleteRow(ctx context.Context, key refdata.SheetKey, rowIndex int) error {
	sheet, err := t.read(ctx, string(key))
	if err != nil {
		return err
	}

	if _, ok := sheet.Find(rowIndex); !ok {
		return fmt.Errorf("%w: %s row %d", ErrRowNotFound, key, rowIndex)
	}

	start := time.Now()

	err = t.backend.Delete(ctx, string(key), rowIndex)
	if err != nil {
		return fmt.Errorf("%w: deleting %s row %d: %w", ErrUnavailable, key, rowIndex, err)
	}

	t.logCall("delete", string(key), 1, start)

	return nil
}

func (t *Table) read(ctx context.Context, sheet string) (refdata.Sheet, error) {
	start := time.Now()

	values, err := t.backend.Values(ctx, sheet)
	if err != nil {
		return refdata.Sheet{}, fmt.Errorf("%w: reading %s: %w", ErrUnavailable, sheet, err)
	}

	t.logCall("read", sheet, len(values), start)

	return ToSheet(values), nil
}

// append writes the header row first when the sheet is empty, then cells
// with the next free id.
func (t *Table) append(ctx context.Context, sheet string, headers []string, cells map[string]any) error {
	current, err := t.read(ctx, sheet)
	if err != nil {
		return err
	}

	start := time.Now()

	if len(current.Headers) == 0 {
		err = t.backend.Append(ctx, sheet, HeaderValues(headers))
		if err != nil {
			return fmt.Errorf("%w: creating %s: %w", ErrUnavailable, sheet, err)
		}
	} else {
		headers = current.Headers
	}

	cells[refdata.IDKey] = nextID(current)

	err = t.backend.Append(ctx, sheet, rowValues(headers, cells))
	if err != nil {
		return fmt.Errorf("%w: appending to %s: %w", ErrUnavailable, sheet, err)
	}

	t.logCall("append", sheet, 1, start)

	return nil
}

func (t *Table) write(ctx context.Context, sheet string, rowIndex int, values []any) error {
	start := time.Now()

	err := t.backend.Write(ctx, sheet, rowIndex, values)
	if err != nil {
		return fmt.Errorf("%w: writing %s row %d: %w", ErrUnavailable, sheet, rowIndex, err)
	}

	t.logCall("write", sheet, 1, start)

	return nil
}

func (t *Table) logCall(action, sheet string, rows int, start time.Time) {
	t.log.WithFields(logrus.Fields{
		"action":  action,
		"sheet":   sheet,
		"rows":    rows,
		"elapsed": time.Since(start).Round(time.Microsecond),
	}).Debug("store call")
}

// ToSheet maps raw sheet values (headers first) to header-keyed rows.
// Blank rows are skipped but keep their row index.
func ToSheet(values [][]any) refdata.Sheet {
	if len(values) == 0 {
		return refdata.Sheet{}
	}

	headers := make([]string, 0, len(values[0]))
	for _, h := range values[0] {
		headers = append(headers, record.CellString(h))
	}

	rows := make([]refdata.Row, 0, len(values)-1)

	for i, vals := range values[1:] {
		if isBlank(vals) {
			continue
		}

		row := refdata.Row{refdata.RowIndexKey: i + firstDataRow}

		for j, h := range headers {
			if h == "" {
				continue
			}

			if j < len(vals) {
				row[h] = vals[j]
			} else {
				row[h] = ""
			}
		}

		rows = append(rows, row)
	}

	return refdata.Sheet{Headers: headers, Rows: rows}
}

// HeaderValues returns headers as a row of cell values.
func HeaderValues(headers []string) []any {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}

	return row
}

func isBlank(vals []any) bool {
	for _, v := range vals {
		if record.CellString(v) != "" {
			return false
		}
	}

	return true
}

// rowValues lays cells out in header order. Missing cells are empty.
func rowValues(headers []string, cells map[string]any) []any {
	row := make([]any, len(headers))

	for i, h := range headers {
		v, ok := cells[h]
		if !ok || v == nil {
			row[i] = ""

			continue
		}

		row[i] = v
	}

	return row
}

// merge overlays cells onto a copy of existing, keeping the read-only id.
func merge(existing refdata.Row, cells map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(cells))

	for k, v := range existing {
		if k != refdata.RowIndexKey {
			merged[k] = v
		}
	}

	for k, v := range cells {
		if k == refdata.IDKey || k == refdata.RowIndexKey {
			continue
		}

		merged[k] = v
	}

	return merged
}

func nextID(sheet refdata.Sheet) int {
	highest := 0

	for _, row := range sheet.Rows {
		if id := row.Int(refdata.IDKey); id > highest {
			highest = id
		}
	}

	return highest + 1
}
