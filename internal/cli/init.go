package cli

import (
	"context"
	"fmt"

	"github.com/calvinalkan/kpi-tracker/internal/config"
	"github.com/calvinalkan/kpi-tracker/internal/refdata"
	"github.com/calvinalkan/kpi-tracker/internal/store/local"

	flag "github.com/spf13/pflag"
)

// InitCmd returns the init command.
func InitCmd(a *app) *Command {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.Bool("force", false, "Overwrite an existing workbook")

	return &Command{
		Flags: fs,
		Usage: "init [flags]",
		Short: "Create the local workbook with sample reference data",
		Long: `Create the local workbook file with the reference sheets (users,
systems, sub-modules, question types, employees) and an empty records sheet.
Only applies to the local backend.`,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			force, _ := fs.GetBool("force")

			return execInit(o, a, force)
		},
	}
}

func execInit(o *IO, a *app, force bool) error {
	if a.cfg.Backend != config.BackendLocal {
		return fmt.Errorf("init: %w (backend is %q)", errLocalOnly, a.cfg.Backend)
	}

	err := local.Init(a.cfg.DataFileAbs, a.cfg.RecordsSheet, refdata.Seed(), force)
	if err != nil {
		return err
	}

	o.Println("Created", a.cfg.DataFileAbs)

	return nil
}
