// Package sheets stores records directly in a Google spreadsheet through
// the Sheets API v4, authenticating with a service account key.
package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/calvinalkan/kpi-tracker/internal/store"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const (
	valueInputRaw     = "RAW"
	renderUnformatted = "UNFORMATTED_VALUE"
	renderDateString  = "FORMATTED_STRING"
	dimensionRows     = "ROWS"
)

// NewService builds a Sheets client from a service account JSON key.
func NewService(ctx context.Context, credentialsFile string) (*sheetsapi.Service, error) {
	key, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(key, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials %s: %w", credentialsFile, err)
	}

	srv, err := sheetsapi.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}

	return srv, nil
}

// Backend implements store.Backend on one spreadsheet. Each store sheet is
// a tab of that spreadsheet with the same title.
type Backend struct {
	srv           *sheetsapi.Service
	spreadsheetID string

	mu  sync.Mutex
	ids map[string]int64 // tab title to sheet id, nil until loaded
}

var _ store.Backend = (*Backend)(nil)

// New returns a backend for spreadsheetID.
func New(srv *sheetsapi.Service, spreadsheetID string) *Backend {
	return &Backend{srv: srv, spreadsheetID: spreadsheetID}
}

// Open returns a Store over a spreadsheet using a service account key.
func Open(ctx context.Context, credentialsFile, spreadsheetID string, opts store.TableOptions) (*store.Table, error) {
	srv, err := NewService(ctx, credentialsFile)
	if err != nil {
		return nil, err
	}

	return store.NewTable(New(srv, spreadsheetID), opts), nil
}

// Values returns every row of the tab, headers first. A missing tab has
// no rows.
func (b *Backend) Values(ctx context.Context, sheet string) ([][]any, error) {
	_, ok, err := b.sheetID(ctx, sheet)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	resp, err := b.srv.Spreadsheets.Values.Get(b.spreadsheetID, quote(sheet)).
		ValueRenderOption(renderUnformatted).
		DateTimeRenderOption(renderDateString).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("reading tab %s: %w", sheet, err)
	}

	return resp.Values, nil
}

// Append adds row below the last row, creating the tab if needed.
func (b *Backend) Append(ctx context.Context, sheet string, row []any) error {
	err := b.ensureSheet(ctx, sheet)
	if err != nil {
		return err
	}

	vr := &sheetsapi.ValueRange{Values: [][]any{row}}

	_, err = b.srv.Spreadsheets.Values.Append(b.spreadsheetID, quote(sheet)+"!A1", vr).
		ValueInputOption(valueInputRaw).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending to tab %s: %w", sheet, err)
	}

	return nil
}

// Write replaces the row at rowIndex.
func (b *Backend) Write(ctx context.Context, sheet string, rowIndex int, row []any) error {
	vr := &sheetsapi.ValueRange{Values: [][]any{row}}
	writeRange := fmt.Sprintf("%s!A%d", quote(sheet), rowIndex)

	_, err := b.srv.Spreadsheets.Values.Update(b.spreadsheetID, writeRange, vr).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("writing tab %s row %d: %w", sheet, rowIndex, err)
	}

	return nil
}

// Delete removes the row at rowIndex.
func (b *Backend) Delete(ctx context.Context, sheet string, rowIndex int) error {
	id, ok, err := b.sheetID(ctx, sheet)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: tab %s", store.ErrRowNotFound, sheet)
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			DeleteDimension: &sheetsapi.DeleteDimensionRequest{
				Range: &sheetsapi.DimensionRange{
					SheetId:    id,
					Dimension:  dimensionRows,
					StartIndex: int64(rowIndex - 1),
					EndIndex:   int64(rowIndex),
				},
			},
		}},
	}

	_, err = b.srv.Spreadsheets.BatchUpdate(b.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("deleting tab %s row %d: %w", sheet, rowIndex, err)
	}

	return nil
}

// ensureSheet creates the tab if the spreadsheet lacks it.
func (b *Backend) ensureSheet(ctx context.Context, title string) error {
	_, ok, err := b.sheetID(ctx, title)
	if err != nil || ok {
		return err
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: title},
			},
		}},
	}

	resp, err := b.srv.Spreadsheets.BatchUpdate(b.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("creating tab %s: %w", title, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Without a reply the metadata is reloaded on next use.
	if b.ids == nil || len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		b.ids = nil

		return nil
	}

	b.ids[title] = resp.Replies[0].AddSheet.Properties.SheetId

	return nil
}

// sheetID resolves a tab title, loading the spreadsheet metadata once.
func (b *Backend) sheetID(ctx context.Context, title string) (int64, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ids == nil {
		meta, err := b.srv.Spreadsheets.Get(b.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
		if err != nil {
			return 0, false, fmt.Errorf("reading spreadsheet %s: %w", b.spreadsheetID, err)
		}

		b.ids = make(map[string]int64, len(meta.Sheets))
		for _, s := range meta.Sheets {
			b.ids[s.Properties.Title] = s.Properties.SheetId
		}
	}

	id, ok := b.ids[title]

	return id, ok, nil
}

// quote wraps a tab title for A1 notation.
func quote(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
