package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"paisa/internal/chart"
	"paisa/internal/config"
	"paisa/internal/core"
	"paisa/internal/export"
	"paisa/internal/view"
)

// ledger is the part of the transaction service the commands use.
type ledger interface {
	Add(ctx context.Context, description, amountInput, category string) (core.Transaction, error)
	Remove(ctx context.Context, id int64) (bool, error)
	Snapshot() core.State
	Theme(ctx context.Context) (core.Theme, error)
	SetTheme(ctx context.Context, theme core.Theme) error
	ToggleTheme(ctx context.Context) (core.Theme, error)
}

var (
	errUsage         = errors.New("usage: paisactl <add|list|delete|summary|chart|export|theme> [flags]")
	errMemoryBackend = errors.New("the memory backend keeps nothing after paisactl exits; set KV_BACKEND to sqlite or redis")
)

// selectBackend adapts the server configuration to a one-shot process.
// An unset KV_BACKEND means sqlite; an explicit memory backend is refused.
func selectBackend(cfg *config.Config, explicit bool) error {
	if cfg.KVBackend != config.BackendMemory {
		return nil
	}
	if explicit {
		return errMemoryBackend
	}
	cfg.KVBackend = config.BackendSQLite
	return nil
}

func run(ctx context.Context, l ledger, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "add":
		return runAdd(ctx, l, rest, out)
	case "list":
		return runList(l, out)
	case "delete", "rm":
		return runDelete(ctx, l, rest, out)
	case "summary":
		return runSummary(l, out)
	case "chart":
		return runChart(l, rest, out)
	case "export":
		return runExport(l, rest, out)
	case "theme":
		return runTheme(ctx, l, rest, out)
	default:
		return fmt.Errorf("unknown command %q\n%w", cmd, errUsage)
	}
}

func runAdd(ctx context.Context, l ledger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(out)
	desc := fs.String("d", "", "description")
	amount := fs.String("a", "", "signed amount in rupees, negative for expenses")
	category := fs.String("c", "", "expense category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tx, err := l.Add(ctx, *desc, *amount, *category)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "added %d: %s %s (%s)\n", tx.ID, tx.Description, view.FormatINR(tx.Amount), tx.Category)
	return nil
}

func runList(l ledger, out io.Writer) error {
	txs := l.Snapshot().Newest()
	if len(txs) == 0 {
		fmt.Fprintln(out, "No transactions yet.")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Date", "Description", "Category", "Amount"})
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
	})
	for _, t := range txs {
		table.Append([]string{
			strconv.FormatInt(t.ID, 10),
			time.UnixMilli(t.ID).Format("2006-01-02 15:04"),
			t.Description,
			t.Category,
			view.FormatINR(t.Amount),
		})
	}
	table.Render()
	return nil
}

func runDelete(ctx context.Context, l ledger, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: paisactl delete <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return core.ErrInvalidID
	}
	removed, err := l.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(out, "no transaction %d, nothing deleted\n", id)
		return nil
	}
	fmt.Fprintf(out, "deleted %d\n", id)
	return nil
}

func runSummary(l ledger, out io.Writer) error {
	sum := l.Snapshot().Summary()

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"", "Amount"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.Append([]string{"Balance", view.FormatINR(sum.Balance)})
	table.Append([]string{"Income", view.FormatINR(sum.Income)})
	table.Append([]string{"Expenses", view.FormatINR(sum.Expenses.Abs())})
	for _, c := range sum.ByCategory {
		table.Append([]string{"  " + c.Name, view.FormatINR(c.Amount)})
	}
	table.SetFooter([]string{"Transactions", strconv.Itoa(sum.Count)})
	table.Render()
	return nil
}

func runChart(l ledger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("chart", flag.ContinueOnError)
	fs.SetOutput(out)
	name := fs.String("type", "balance", "balance or categories")
	formatName := fs.String("format", "svg", "svg or png")
	path := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	format, err := chart.ParseFormat(*formatName)
	if err != nil {
		return err
	}

	sum := l.Snapshot().Summary()
	return writeTo(*path, out, func(w io.Writer) error {
		switch *name {
		case "balance":
			return chart.RenderBar(w, chart.BuildBar(sum), format)
		case "categories":
			pie, ok := chart.BuildPie(sum)
			if !ok {
				return chart.ErrNoData
			}
			return chart.RenderPie(w, pie, format)
		default:
			return fmt.Errorf("unknown chart %q", *name)
		}
	})
}

func runExport(l ledger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(out)
	formatName := fs.String("format", "csv", "csv or xlsx")
	path := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	txs := l.Snapshot().Transactions
	return writeTo(*path, out, func(w io.Writer) error {
		return export.Write(w, format, txs)
	})
}

func runTheme(ctx context.Context, l ledger, args []string, out io.Writer) error {
	var (
		theme core.Theme
		err   error
	)
	switch {
	case len(args) == 0:
		theme, err = l.Theme(ctx)
	case strings.EqualFold(args[0], "toggle"):
		theme, err = l.ToggleTheme(ctx)
	default:
		theme, err = core.ParseTheme(args[0])
		if err == nil {
			err = l.SetTheme(ctx, theme)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, theme)
	return nil
}

// writeTo renders into path, or into out when path is empty. A failed
// render leaves no partial file behind.
func writeTo(path string, out io.Writer, render func(io.Writer) error) error {
	if path == "" {
		return render(out)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
