package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"txdash/internal/chart"
	"txdash/internal/config"
	"txdash/internal/log"
	"txdash/internal/query"
	"txdash/internal/view"
)

type reportOptions struct {
	term       string
	customerID int
	focus      bool
	chartPath  string
}

func newReportCommand() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the transactions table and daily totals",
		Long: "Loads the dataset the same way the dashboard does and prints the table\n" +
			"and per-date totals. --q filters all transactions; --customer focuses\n" +
			"on one customer and, like the dashboard, ignores the filter.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			opts.focus = cmd.Flags().Changed("customer")
			logger := newLogger(cfg, cmd.ErrOrStderr())
			return runReport(cmd.Context(), cfg, opts, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().StringVar(&opts.term, "q", "", "free-text filter on customer name or amount")
	cmd.Flags().IntVar(&opts.customerID, "customer", 0, "focus on one customer id")
	cmd.Flags().StringVar(&opts.chartPath, "chart", "", "write the chart as SVG to this file")

	return cmd
}

// textTable collects rows for tabwriter output.
type textTable struct {
	rows []view.Row
}

func (t *textTable) Clear()               { t.rows = t.rows[:0] }
func (t *textTable) AppendRow(r view.Row) { t.rows = append(t.rows, r) }

type backFlag struct{ visible bool }

func (b *backFlag) SetVisible(v bool) { b.visible = v }

func runReport(ctx context.Context, cfg *config.Config, opts reportOptions, out io.Writer, logger *log.Logger) error {
	ds := loadDataset(ctx, cfg, logger)

	table := &textTable{}
	canvas := chart.NewCanvas(chart.DefaultOptions())
	back := &backFlag{}
	ctrl, err := view.NewController(ds, view.Surfaces{Table: table, Chart: canvas, Back: back}, logger)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.Init(); err != nil {
		return err
	}
	if opts.term != "" {
		if err := ctrl.OnFilterInput(opts.term); err != nil {
			return err
		}
	}
	if opts.focus {
		if err := ctrl.OnCustomerActivated(opts.customerID); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Source: %s (%d customers, %d transactions)\n", ds.Origin, len(ds.Customers), len(ds.Transactions))
	fmt.Fprintf(out, "View: %s\n", ctrl.Mode())
	if opts.term != "" {
		fmt.Fprintf(out, "Filter: %q\n", ctrl.Term())
	}
	fmt.Fprintln(out)

	if err := writeRows(out, table.rows); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := writeTotals(out, query.Aggregate(query.GroupByDate(ctrl.Visible()))); err != nil {
		return err
	}

	if opts.chartPath != "" {
		svg := canvas.SVG()
		if svg == nil {
			fmt.Fprintln(out, "\nNo chart written: nothing to plot.")
			return nil
		}
		if err := os.WriteFile(opts.chartPath, svg, 0o644); err != nil {
			return fmt.Errorf("writing chart: %w", err)
		}
		fmt.Fprintf(out, "\nChart written to %s\n", opts.chartPath)
	}
	return nil
}

func writeRows(out io.Writer, rows []view.Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "No transactions match.")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CUSTOMER NAME\tDATE\tAMOUNT\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", r.CustomerName, r.Date, r.Amount)
	}
	return tw.Flush()
}

func writeTotals(out io.Writer, points []query.Point) error {
	if len(points) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTOTAL\t")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%s\t\n", p.Date, p.Amount.String())
	}
	return tw.Flush()
}
