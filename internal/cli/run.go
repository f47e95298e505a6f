package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/config"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

// Run is the main entry point. Returns exit code.
//
// args includes the program name. The first signal received on sigCh
// cancels the running command; sigCh may be nil.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := flag.NewFlagSet("kpi", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(&strings.Builder{})

	flagCwd := globals.StringP("cwd", "C", "", "Run as if started in `dir`")
	flagConfig := globals.StringP("config", "c", "", "Use specified config `file`")
	flagBackend := globals.String("backend", "", "Record store to use (local|gas|sheets)")
	flagVerbose := globals.BoolP("verbose", "v", false, "Log record store calls to stderr")
	flagHelp := globals.BoolP("help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}

	err := globals.Parse(args)
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, globals)

		return 1
	}

	rest := globals.Args()
	if *flagHelp || len(rest) == 0 {
		printUsage(out, globals)

		return 0
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: *flagCwd,
		ConfigPath:      *flagConfig,
		Overrides:       config.Config{Backend: *flagBackend},
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	a := &app{
		cfg: &cfg,
		log: newLogger(errOut, *flagVerbose),
		env: env,
		in:  in,
		now: time.Now,
	}

	name := rest[0]

	var cmd *Command

	for _, c := range a.commands() {
		if c.Name() == name {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error:", fmt.Errorf("%w: %s", errUnknownCommand, name))
		printUsage(errOut, globals)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return cmd.Run(ctx, NewIO(in, out, errOut), rest[1:])
}

func newLogger(out io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)

	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, globals *flag.FlagSet) {
	fprintln(w, `kpi - log work items and report KPIs

Usage: kpi [global flags] <command> [args]

Commands:`)

	for _, c := range (&app{}).commands() {
		fprintln(w, c.HelpLine())
	}

	fprintln(w)
	fprintln(w, "Global flags:")

	var buf strings.Builder
	globals.SetOutput(&buf)
	globals.PrintDefaults()
	_, _ = io.WriteString(w, buf.String())

	fprintln(w)
	fprintln(w, `Run "kpi <command> --help" for command flags.`)
}
