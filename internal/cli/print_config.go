package cli

import (
	"context"
	"strings"

	"github.com/calvinalkan/kpi-tracker/internal/config"

	flag "github.com/spf13/pflag"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and where it was loaded from.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			execPrintConfig(o, a.cfg)

			return nil
		},
	}
}

func execPrintConfig(o *IO, cfg *config.Config) {
	o.Println("effective_cwd=" + cfg.EffectiveCwd)
	o.Println("backend=" + cfg.Backend)

	switch cfg.Backend {
	case config.BackendGAS:
		o.Println("gas_url=" + cfg.GasURL)
	case config.BackendSheets:
		o.Println("spreadsheet_id=" + cfg.SpreadsheetID)
		o.Println("credentials_file=" + cfg.CredentialsAbs)
	default:
		o.Println("data_file=" + cfg.DataFileAbs)
	}

	o.Println("records_sheet=" + cfg.RecordsSheet)
	o.Println("timezone=" + cfg.Location.String())
	o.Println("timeout=" + cfg.TimeoutValue.String())

	o.Println("")
	o.Println("# sources")

	s := cfg.Sources
	if s.Global == "" && s.Project == "" && s.DotEnv == "" && len(s.Env) == 0 {
		o.Println("(defaults only)")

		return
	}

	if s.Global != "" {
		o.Println("global_config=" + s.Global)
	}

	if s.Project != "" {
		o.Println("project_config=" + s.Project)
	}

	if s.DotEnv != "" {
		o.Println("dotenv=" + s.DotEnv)
	}

	if len(s.Env) > 0 {
		o.Println("env=" + strings.Join(s.Env, ","))
	}
}
