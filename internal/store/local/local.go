// Package local is an offline record store: one JSON workbook on disk
// holding every sheet as rows of cell values.
//
// Readers take a shared lock and writers an exclusive one, so concurrent
// kpi processes on the same workbook never observe a partial write. Files
// are replaced atomically.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/calvinalkan/kpi-tracker/internal/record"
	"github.com/calvinalkan/kpi-tracker/internal/refdata"
	"github.com/calvinalkan/kpi-tracker/internal/store"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

const (
	dirPerms  = 0o750
	filePerms = 0o600
)

// DefaultFileName is the workbook file name used unless configured.
const DefaultFileName = ".kpi-data.json"

var (
	// ErrNoWorkbook is returned when the workbook has not been created.
	ErrNoWorkbook = errors.New("workbook does not exist (run 'kpi init')")
	// ErrWorkbookExists is returned by Init when the workbook exists.
	ErrWorkbookExists = errors.New("workbook already exists")
	// ErrRowOutOfRange is returned for a row index outside the sheet.
	ErrRowOutOfRange = errors.New("row index out of range")
)

// workbook is the on-disk format.
type workbook struct {
	Sheets map[string][][]any `json:"sheets"`
}

// Backend implements store.Backend on a workbook file.
type Backend struct {
	path string
}

var _ store.Backend = (*Backend)(nil)

// New returns a backend for the workbook at path.
func New(path string) *Backend {
	return &Backend{path: path}
}

// Open returns a Store over the workbook at path.
func Open(path string, opts store.TableOptions) *store.Table {
	return store.NewTable(New(path), opts)
}

// Path returns the workbook path.
func (b *Backend) Path() string {
	return b.path
}

// Values returns the rows of sheet, headers first.
func (b *Backend) Values(ctx context.Context, sheet string) ([][]any, error) {
	var rows [][]any

	err := b.locked(ctx, unix.LOCK_SH, func() error {
		wb, err := b.load()
		if err != nil {
			return err
		}

		rows = wb.Sheets[sheet]

		return nil
	})

	return rows, err
}

// Append adds row at the end of sheet.
func (b *Backend) Append(ctx context.Context, sheet string, row []any) error {
	return b.update(ctx, func(wb *workbook) error {
		wb.Sheets[sheet] = append(wb.Sheets[sheet], row)

		return nil
	})
}

// Write replaces the row at rowIndex.
func (b *Backend) Write(ctx context.Context, sheet string, rowIndex int, row []any) error {
	return b.update(ctx, func(wb *workbook) error {
		rows := wb.Sheets[sheet]

		pos := rowIndex - 1
		if pos < 1 || pos >= len(rows) {
			return fmt.Errorf("%w: %s row %d", ErrRowOutOfRange, sheet, rowIndex)
		}

		rows[pos] = row

		return nil
	})
}

// Delete removes the row at rowIndex.
func (b *Backend) Delete(ctx context.Context, sheet string, rowIndex int) error {
	return b.update(ctx, func(wb *workbook) error {
		rows := wb.Sheets[sheet]

		pos := rowIndex - 1
		if pos < 1 || pos >= len(rows) {
			return fmt.Errorf("%w: %s row %d", ErrRowOutOfRange, sheet, rowIndex)
		}

		wb.Sheets[sheet] = slices.Delete(rows, pos, pos+1)

		return nil
	})
}

// Init creates the workbook with the given admin sheets and an empty
// records sheet. An existing workbook is only replaced when force is set.
func Init(path string, recordsSheet string, seed map[refdata.SheetKey]refdata.Sheet, force bool) error {
	b := New(path)

	err := os.MkdirAll(filepath.Dir(path), dirPerms)
	if err != nil {
		return fmt.Errorf("creating workbook dir: %w", err)
	}

	return withLock(path, unix.LOCK_EX, LockTimeout, func() error {
		if _, statErr := os.Stat(path); statErr == nil && !force {
			return fmt.Errorf("%w: %s", ErrWorkbookExists, path)
		}

		wb := workbook{Sheets: make(map[string][][]any, len(seed)+1)}
		wb.Sheets[recordsSheet] = [][]any{store.HeaderValues(record.Headers)}

		for key, sheet := range seed {
			wb.Sheets[string(key)] = sheetValues(sheet)
		}

		return b.save(&wb)
	})
}

func sheetValues(sheet refdata.Sheet) [][]any {
	values := make([][]any, 0, len(sheet.Rows)+1)
	values = append(values, store.HeaderValues(sheet.Headers))

	for _, row := range sheet.Rows {
		vals := make([]any, len(sheet.Headers))
		for i, h := range sheet.Headers {
			vals[i] = row[h]
		}

		values = append(values, vals)
	}

	return values
}

func (b *Backend) locked(ctx context.Context, how int, fn func() error) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	return withLock(b.path, how, LockTimeout, fn)
}

// update applies fn to the workbook under an exclusive lock and saves it.
func (b *Backend) update(ctx context.Context, fn func(wb *workbook) error) error {
	return b.locked(ctx, unix.LOCK_EX, func() error {
		wb, err := b.load()
		if err != nil {
			return err
		}

		err = fn(&wb)
		if err != nil {
			return err
		}

		return b.save(&wb)
	})
}

func (b *Backend) load() (workbook, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return workbook{}, fmt.Errorf("%w: %s", ErrNoWorkbook, b.path)
		}

		return workbook{}, fmt.Errorf("reading workbook: %w", err)
	}

	var wb workbook

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	err = dec.Decode(&wb)
	if err != nil {
		return workbook{}, fmt.Errorf("parsing workbook %s: %w", b.path, err)
	}

	if wb.Sheets == nil {
		wb.Sheets = make(map[string][][]any)
	}

	return wb, nil
}

func (b *Backend) save(wb *workbook) error {
	data, err := json.MarshalIndent(wb, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding workbook: %w", err)
	}

	data = append(data, '\n')

	err = atomic.WriteFile(b.path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}
