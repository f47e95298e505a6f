// Package store defines the contract of the external record store and the
// tabular layer shared by spreadsheet-shaped backends.
//
// Implementations live in subpackages: gas (Apps Script proxy over HTTP),
// sheets (Google Sheets API) and local (a JSON workbook on disk).
package store

import (
	"context"
	"errors"

	"github.com/calvinalkan/kpi-tracker/internal/record"
	"github.com/calvinalkan/kpi-tracker/internal/refdata"
)

// Errors returned by stores.
var (
	// ErrUnavailable wraps any failure to reach or read the store. The
	// operation may succeed when retried.
	ErrUnavailable = errors.New("record store unavailable")
	// ErrRejected is returned when the store refuses a write.
	ErrRejected = errors.New("record store rejected the request")
	// ErrRowNotFound is returned for a row index that holds no row.
	ErrRowNotFound = errors.New("row not found")
)

// Store is the external record store.
//
// FetchRecords returns every record when privileged is true, and only the
// records whose handler is owner otherwise. Row indexes returned by the
// store are the handles UpdateRecord, SaveRow and DeleteRow accept.
type Store interface {
	Users(ctx context.Context) ([]refdata.User, error)
	FormOptions(ctx context.Context) (refdata.FormOptions, error)
	FetchRecords(ctx context.Context, owner string, privileged bool) ([]record.Record, error)
	AppendRecord(ctx context.Context, p record.Payload) error
	UpdateRecord(ctx context.Context, rowIndex int, p record.Payload) error

	Sheet(ctx context.Context, key refdata.SheetKey) (refdata.Sheet, error)
	AddRow(ctx context.Context, key refdata.SheetKey, row refdata.Row, headers []string) error
	SaveRow(ctx context.Context, key refdata.SheetKey, rowIndex int, row refdata.Row, headers []string) error
	DeleteRow(ctx context.Context, key refdata.SheetKey, rowIndex int) error
}

// OwnedBy returns the records whose handler is owner, in input order.
func OwnedBy(records []record.Record, owner string) []record.Record {
	owned := make([]record.Record, 0, len(records))

	for i := range records {
		if records[i].HandlerName == owner {
			owned = append(owned, records[i])
		}
	}

	return owned
}
