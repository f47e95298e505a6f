package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/calvinalkan/kpi-tracker/internal/refdata"
	"github.com/calvinalkan/kpi-tracker/internal/store"

	flag "github.com/spf13/pflag"
)

// AdminCmd returns the admin command.
func AdminCmd(a *app) *Command {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.Bool("yes", false, "Do not ask before deleting")
	fs.Bool("json", false, "Print the sheet as JSON (ls)")

	return &Command{
		Flags: fs,
		Usage: "admin <ls|add|set|rm> <sheet> [args]",
		Short: "Maintain reference sheets (admins)",
		Long: `Maintain the reference sheets: ` + sheetList() + `.

  kpi admin ls <sheet>
  kpi admin add <sheet> column=value...
  kpi admin set <sheet> <row> column=value...
  kpi admin rm <sheet> <row> [--yes]

Columns are the sheet headers. Y/N columns (是否...) take Y or N, 排序 takes a
number, and id is assigned by the store.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			yes, _ := fs.GetBool("yes")
			asJSON, _ := fs.GetBool("json")

			return execAdmin(ctx, o, a, args, yes, asJSON)
		},
	}
}

func sheetList() string {
	names := make([]string, 0, len(refdata.SheetKeys))
	for _, k := range refdata.SheetKeys {
		names = append(names, string(k))
	}

	return strings.Join(names, ", ")
}

func execAdmin(ctx context.Context, o *IO, a *app, args []string, yes, asJSON bool) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: want <ls|add|set|rm> <sheet>", errMissingArg)
	}

	action := args[0]
	if !slices.Contains([]string{"ls", "add", "set", "rm"}, action) {
		return fmt.Errorf("%w: admin %s", errUnknownCommand, action)
	}

	key, err := refdata.ParseSheetKey(args[1])
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	_, err = a.requireAdmin(ctx, st)
	if err != nil {
		return err
	}

	sheet, err := st.Sheet(ctx, key)
	if err != nil {
		return fmt.Errorf("fetching sheet %s: %w", key, err)
	}

	rest := args[2:]

	switch action {
	case "ls":
		return adminList(o, &sheet, asJSON)
	case "add":
		return adminAdd(ctx, o, st, key, &sheet, rest)
	case "set":
		return adminSet(ctx, o, st, key, &sheet, rest)
	default:
		return adminRemove(ctx, o, a, st, key, &sheet, rest, yes)
	}
}

func adminList(o *IO, sheet *refdata.Sheet, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(sheet, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding sheet: %w", err)
		}

		o.Println(string(data))

		return nil
	}

	if len(sheet.Rows) == 0 {
		o.Println("No rows")

		return nil
	}

	headers := append([]string{"ROW"}, sheet.Headers...)
	rows := make([][]string, 0, len(sheet.Rows))

	for _, r := range sheet.Rows {
		row := []string{strconv.Itoa(r.RowIndex())}
		for _, h := range sheet.Headers {
			row = append(row, r.String(h))
		}

		rows = append(rows, row)
	}

	printTable(o, headers, rows)

	return nil
}

func adminAdd(ctx context.Context, o *IO, st store.Store, key refdata.SheetKey, sheet *refdata.Sheet, args []string) error {
	headers := sheet.Headers
	if len(headers) == 0 {
		headers = refdata.DefaultHeaders(key)
		sheet = &refdata.Sheet{Headers: headers}
	}

	row, err := parseAssignments(sheet, args)
	if err != nil {
		return err
	}

	err = st.AddRow(ctx, key, row, headers)
	if err != nil {
		return err
	}

	o.Println("Added row to", key)

	return nil
}

func adminSet(ctx context.Context, o *IO, st store.Store, key refdata.SheetKey, sheet *refdata.Sheet, args []string) error {
	rowIndex, err := rowArg(sheet, args)
	if err != nil {
		return err
	}

	row, err := parseAssignments(sheet, args[1:])
	if err != nil {
		return err
	}

	err = st.SaveRow(ctx, key, rowIndex, row, sheet.Headers)
	if err != nil {
		return err
	}

	o.Println(fmt.Sprintf("Saved row %d of %s", rowIndex, key))

	return nil
}

func adminRemove(ctx context.Context, o *IO, a *app, st store.Store, key refdata.SheetKey, sheet *refdata.Sheet, args []string, yes bool) error {
	rowIndex, err := rowArg(sheet, args)
	if err != nil {
		return err
	}

	if len(args) > 1 {
		return fmt.Errorf("%w: unexpected arguments %v", errInvalidFlag, args[1:])
	}

	if !yes {
		ok, err := a.confirm(o, fmt.Sprintf("Delete row %d of %s?", rowIndex, key))
		if err != nil {
			return err
		}

		if !ok {
			return errAborted
		}
	}

	err = st.DeleteRow(ctx, key, rowIndex)
	if err != nil {
		return err
	}

	o.Println(fmt.Sprintf("Deleted row %d of %s", rowIndex, key))

	return nil
}

func rowArg(sheet *refdata.Sheet, args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: row", errMissingArg)
	}

	rowIndex, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: row %q", errInvalidFlag, args[0])
	}

	if _, ok := sheet.Find(rowIndex); !ok {
		return 0, fmt.Errorf("%w: %d", store.ErrRowNotFound, rowIndex)
	}

	return rowIndex, nil
}

// parseAssignments turns column=value arguments into a row, converting
// numeric and Y/N columns.
func parseAssignments(sheet *refdata.Sheet, args []string) (refdata.Row, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: no columns given (writable: %s)", errBadAssignment, strings.Join(sheet.Writable(), ", "))
	}

	row := refdata.Row{}

	for _, arg := range args {
		column, value, ok := strings.Cut(arg, "=")
		if !ok || column == "" {
			return nil, fmt.Errorf("%w: %q", errBadAssignment, arg)
		}

		value = strings.TrimSpace(value)

		switch {
		case refdata.IsReadOnly(column):
			row[column] = value
		case refdata.IsFlag(column):
			flagValue := strings.ToUpper(value)
			if flagValue != refdata.FlagYes && flagValue != refdata.FlagNo {
				return nil, fmt.Errorf("%w: %s must be Y or N", errInvalidFlag, column)
			}

			row[column] = flagValue
		case refdata.IsNumeric(column):
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be a number", errInvalidFlag, column)
			}

			row[column] = n
		default:
			row[column] = value
		}
	}

	err := sheet.CheckRow(row)
	if err != nil {
		return nil, err
	}

	return row, nil
}
