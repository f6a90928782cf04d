package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

// ErrUsage is returned for unknown commands and bad flags.
var ErrUsage = errors.New("usage error")

const usage = `Usage: fintrack <command> [flags]

Commands:
  add      -kind income|expense -category NAME -amount N [-date YYYY-MM-DD]
  list     show every transaction
  summary  totals, balance and expenses by category
  delete   -id N
`

// Ledger is the service the commands drive.
type Ledger interface {
	Record(ctx context.Context, n core.NewTransaction) (int64, error)
	Transactions(ctx context.Context) ([]core.Transaction, error)
	Remove(ctx context.Context, id int64) error
	Summary(ctx context.Context) (core.Summary, error)
}

// Runner executes one command against a ledger.
type Runner struct {
	Ledger   Ledger
	Out      io.Writer
	Err      io.Writer
	Currency string
	Now      func() time.Time
}

// Run dispatches args[0] to its command.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(r.Err, usage)
		return ErrUsage
	}

	switch args[0] {
	case "add":
		return r.add(ctx, args[1:])
	case "list":
		return r.list(ctx)
	case "summary":
		return r.summary(ctx)
	case "delete":
		return r.delete(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(r.Out, usage)
		return nil
	default:
		fmt.Fprintf(r.Err, "unknown command %q\n\n%s", args[0], usage)
		return ErrUsage
	}
}

func (r *Runner) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.Err)
	return fs
}

func (r *Runner) add(ctx context.Context, args []string) error {
	fs := r.flagSet("add")
	kindFlag := fs.String("kind", "", "income or expense")
	category := fs.String("category", "", "category or income source")
	amountFlag := fs.String("amount", "", "positive amount, dot or comma decimals")
	dateFlag := fs.String("date", "", "YYYY-MM-DD, default today")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	kind, err := core.ParseKind(*kindFlag)
	if err != nil {
		return err
	}
	amount, err := core.ParseAmount(*amountFlag)
	if err != nil {
		return err
	}
	date := core.DateOf(r.now())
	if *dateFlag != "" {
		if date, err = core.ParseDate(*dateFlag); err != nil {
			return err
		}
	}

	id, err := r.Ledger.Record(ctx, core.NewTransaction{
		Kind:     kind,
		Category: *category,
		Amount:   amount,
		Date:     date,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "%s added with id %d\n", kind, id)
	return nil
}

func (r *Runner) list(ctx context.Context) error {
	records, err := r.Ledger.Transactions(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(r.Out, "No transactions yet.")
		return nil
	}

	tw := tabwriter.NewWriter(r.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tCATEGORY\tAMOUNT\tDATE")
	for _, t := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Kind, t.Category, core.Display(r.Currency, t.Amount.Decimal), t.Date)
	}
	return tw.Flush()
}

func (r *Runner) summary(ctx context.Context) error {
	sum, err := r.Ledger.Summary(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(r.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total income\t%s\n", core.Display(r.Currency, sum.TotalIncome))
	fmt.Fprintf(tw, "Total expense\t%s\n", core.Display(r.Currency, sum.TotalExpense))
	fmt.Fprintf(tw, "Balance\t%s\n", core.Display(r.Currency, sum.Balance))
	if err := tw.Flush(); err != nil {
		return err
	}

	shares := report.Shares(report.SortByAmount(sum.ExpenseByCategory))
	if len(shares) == 0 {
		fmt.Fprintln(r.Out, "\nNo expenses to break down yet.")
		return nil
	}

	fmt.Fprintln(r.Out)
	tw = tabwriter.NewWriter(r.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tAMOUNT\tSHARE")
	for _, c := range shares {
		fmt.Fprintf(tw, "%s\t%s\t%s%%\n", c.Name, core.Display(r.Currency, c.Amount), c.Percent.StringFixed(1))
	}
	return tw.Flush()
}

func (r *Runner) delete(ctx context.Context, args []string) error {
	fs := r.flagSet("delete")
	idFlag := fs.String("id", "", "transaction id")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	raw := *idFlag
	if raw == "" && fs.NArg() == 1 {
		raw = fs.Arg(0)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(r.Err, "invalid transaction id %q\n", raw)
		return ErrUsage
	}

	if err := r.Ledger.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "Transaction %d deleted\n", id)
	return nil
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
