package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/calvinalkan/kpi-tracker/internal/record"

	flag "github.com/spf13/pflag"
)

// OptionsCmd returns the options command.
func OptionsCmd(a *app) *Command {
	fs := flag.NewFlagSet("options", flag.ContinueOnError)
	fs.Bool("json", false, "Print the options as JSON")

	return &Command{
		Flags: fs,
		Usage: "options [flags]",
		Short: "Show the choices for add and update",
		Long:  "Show the enabled systems with their sub-modules, question types and employees.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			ctx, cancel := a.withTimeout(ctx)
			defer cancel()

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			opts, err := st.FormOptions(ctx)
			if err != nil {
				return fmt.Errorf("fetching form options: %w", err)
			}

			if asJSON, _ := fs.GetBool("json"); asJSON {
				data, err := json.MarshalIndent(opts, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding options: %w", err)
				}

				o.Println(string(data))

				return nil
			}

			heading(o, "Systems")

			for _, name := range opts.SystemNames() {
				subs := opts.SubModulesOf(name)

				switch {
				case name == record.OtherOption:
					o.Println("  " + name + ": (free text)")
				case len(subs) == 0:
					o.Println("  " + name)
				default:
					o.Println("  " + name + ": " + strings.Join(subs, ", "))
				}
			}

			o.Println()
			heading(o, "Question types")
			o.Println("  " + strings.Join(opts.QuestionTypeNames(), ", "))

			o.Println()
			heading(o, "Employees")
			o.Println("  " + strings.Join(opts.EmployeeNames(), ", "))

			return nil
		},
	}
}
