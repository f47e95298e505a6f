package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/calvinalkan/kpi-tracker/internal/aggregate"
	"github.com/calvinalkan/kpi-tracker/internal/filter"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"
)

// DashboardCmd returns the dashboard command.
func DashboardCmd(a *app) *Command {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	addFilterFlags(fs)
	fs.String("range", "", "Quick date range (today|week|month|all)")
	fs.Bool("all", false, "Use every work item instead of month-to-date")
	fs.Bool("json", false, "Print the aggregates as JSON")

	return &Command{
		Flags: fs,
		Usage: "dashboard [flags]",
		Short: "Show KPIs and breakdowns",
		Long: `Show KPIs, work items per system and per question type, the daily trend
and time spent per difficulty. Covers the current month up to today unless
--all, --range or --from/--to is given.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execDashboard(ctx, o, a, fs)
		},
	}
}

func execDashboard(ctx context.Context, o *IO, a *app, fs *flag.FlagSet) error {
	all, _ := fs.GetBool("all")
	if all && (fs.Changed("from") || fs.Changed("to") || fs.Changed("range")) {
		return fmt.Errorf("%w: --all cannot be combined with --from/--to/--range", errInvalidFlag)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	u, err := a.freshUser(ctx, st)
	if err != nil {
		return err
	}

	now := a.now().In(a.cfg.Location)

	criteria, err := criteriaFrom(fs, u, now, a.cfg.Location)
	if err != nil {
		return err
	}

	if !all && !fs.Changed("from") && !fs.Changed("to") && !fs.Changed("range") {
		criteria.From, criteria.To = filter.MonthToDate(now)
	}

	records, err := a.visibleRecords(ctx, st, u)
	if err != nil {
		return err
	}

	summary := aggregate.Summarize(filter.Apply(records, criteria), a.cfg.Location)

	if asJSON, _ := fs.GetBool("json"); asJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding summary: %w", err)
		}

		o.Println(string(data))

		return nil
	}

	o.Println("Period: " + periodLabel(&criteria))
	o.Println()
	printDashboard(o, &summary)

	return nil
}

func periodLabel(c *filter.Criteria) string {
	if c.From.IsZero() && c.To.IsZero() {
		return "all time"
	}

	from, to := "start", "today"

	if !c.From.IsZero() {
		from = c.From.Format("2006-01-02")
	}

	if !c.To.IsZero() {
		to = c.To.Format("2006-01-02")
	}

	return from + " to " + to
}

func printDashboard(o *IO, s *aggregate.Summary) {
	k := s.KPIs

	heading(o, "KPIs")
	printTable(o, []string{"METRIC", "VALUE"}, [][]string{
		{"Total cases", humanize.Comma(int64(k.TotalCases))},
		{"Done", humanize.Comma(int64(k.DoneCases))},
		{"Completion rate", fmt.Sprintf("%d%%", k.CompletionRate)},
		{"Total minutes", humanize.Comma(int64(k.TotalMinutes))},
		{"Avg minutes", humanize.Comma(int64(k.AvgMinutes))},
		{"Pending", humanize.Comma(int64(k.PendingCases))},
		{"Urgent pending", humanize.Comma(int64(k.UrgentPending))},
	})

	if k.TotalCases == 0 {
		return
	}

	o.Println()
	heading(o, "By system")
	printCounts(o, s.BySystem)

	o.Println()
	heading(o, "By question type")
	printCounts(o, s.ByQuestionType)

	if len(s.ByDay) > 0 {
		o.Println()
		heading(o, "Trend")

		peak := 0
		for _, d := range s.ByDay {
			peak = max(peak, d.Count)
		}

		rows := make([][]string, 0, len(s.ByDay))
		for _, d := range s.ByDay {
			rows = append(rows, []string{d.Label, humanize.Comma(int64(d.Count)), bar(o, d.Count, peak)})
		}

		printTable(o, []string{"DAY", "CASES", ""}, rows)
	}

	o.Println()
	heading(o, "Difficulty vs time (done)")

	peak := 0
	for _, d := range s.Difficulty {
		peak = max(peak, d.AvgMinutes)
	}

	rows := make([][]string, 0, len(s.Difficulty))
	for _, d := range s.Difficulty {
		rows = append(rows, []string{
			d.Level.String(),
			humanize.Comma(int64(d.Count)),
			humanize.Comma(int64(d.TotalMinutes)),
			humanize.Comma(int64(d.AvgMinutes)),
			bar(o, d.AvgMinutes, peak),
		})
	}

	printTable(o, []string{"LEVEL", "CASES", "MINUTES", "AVG", ""}, rows)
}

func printCounts(o *IO, counts []aggregate.Count) {
	peak := 0
	for _, c := range counts {
		peak = max(peak, c.Count)
	}

	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Label, humanize.Comma(int64(c.Count)), bar(o, c.Count, peak)})
	}

	printTable(o, []string{"NAME", "CASES", ""}, rows)
}
