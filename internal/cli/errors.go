package cli

import (
	"errors"

	"github.com/calvinalkan/kpi-tracker/internal/store"
	"github.com/calvinalkan/kpi-tracker/internal/store/local"
)

var (
	errUnknownCommand = errors.New("unknown command")
	errInvalidFlag    = errors.New("invalid flag value")
	errMissingArg     = errors.New("missing argument")
	errAdminOnly      = errors.New("requires an admin user")
	errLocalOnly      = errors.New("only supported by the local backend")
	errAborted        = errors.New("aborted")
	errNoInput        = errors.New("no input")
	errBadAssignment  = errors.New("expected column=value")
)

// hintFor returns a follow-up suggestion for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, local.ErrNoWorkbook):
		return ""
	case errors.Is(err, store.ErrUnavailable):
		return "the record store could not be read; check the backend settings (kpi print-config) and retry"
	case errors.Is(err, store.ErrRejected):
		return "the record store refused the change; nothing was written"
	default:
		return ""
	}
}
