package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/report"
	"github.com/Veraticus/finflow/internal/service"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var (
		displayCode string
		months      int
		asOfFlag    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show your balance, monthly cash flow and spending by category",
		Example: `  finflow report
  finflow report --months 12 --currency INR`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.requireUser()
			if err != nil {
				return err
			}
			display, err := a.displayCurrency(displayCode, user)
			if err != nil {
				return err
			}
			asOf, err := parseAsOf(asOfFlag)
			if err != nil {
				return err
			}

			in, err := loadReportInput(cmd.Context(), a.store, user.ID)
			if err != nil {
				return err
			}

			summary, err := report.Summarize(in, display, asOf)
			if err != nil {
				return err
			}
			flow, err := report.MonthlyFlow(in.Transactions, display, months, asOf)
			if err != nil {
				return err
			}
			spending, err := report.CategoryBreakdown(in.Transactions, model.TypeExpense, display)
			if err != nil {
				return err
			}

			a.println(cli.FormatTitle(fmt.Sprintf("%s's finances as of %s", user.Name, asOf.Format("January 2, 2006"))))
			a.println(renderSummary(summary))
			a.println("")

			a.println(cli.TableHeaderStyle.Render(cli.ChartIcon + " Monthly cash flow"))
			if err := writeMonthlyFlow(a.out, flow, display); err != nil {
				return err
			}
			a.println("")

			a.println(cli.TableHeaderStyle.Render("Spending by category"))
			if len(spending) == 0 {
				a.println(cli.SubtleStyle.Render("No expenses recorded."))
				return nil
			}
			return writeCategoryBreakdown(a.out, spending, display)
		},
	}

	cmd.Flags().StringVar(&displayCode, "currency", "", "Show amounts in this currency")
	cmd.Flags().IntVarP(&months, "months", "m", 6, "Months of cash flow to show")
	cmd.Flags().StringVar(&asOfFlag, "as-of", "", "Report date as YYYY-MM-DD (default today)")

	return cmd
}

// loadReportInput reads everything the user has recorded.
func loadReportInput(ctx context.Context, store service.RecordReader, userID string) (report.Input, error) {
	var in report.Input
	var err error

	if in.Transactions, err = store.GetUserTransactions(ctx, userID); err != nil {
		return in, fmt.Errorf("failed to load transactions: %w", err)
	}
	if in.Stocks, err = store.GetStockInvestments(ctx, userID); err != nil {
		return in, fmt.Errorf("failed to load stock investments: %w", err)
	}
	if in.Deposits, err = store.GetFixedDepositInvestments(ctx, userID); err != nil {
		return in, fmt.Errorf("failed to load fixed deposits: %w", err)
	}
	return in, nil
}

func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return model.Day(time.Now()), nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of: %w", err)
	}
	return d, nil
}

func renderSummary(s report.BalanceSummary) string {
	money := func(v float64) string { return currency.Display(v, s.Currency) }

	return cli.RenderBox("Balance", cli.RenderKeyValues([][2]string{
		{"Total balance", cli.BoldStyle.Render(money(s.TotalBalance))},
		{"Cash", money(s.Cash)},
		{"Income", cli.FormatAmount(s.Income, s.Currency, model.TypeIncome)},
		{"Expenses", cli.FormatAmount(s.Expenses, s.Currency, model.TypeExpense)},
		{"Investments", money(s.InvestmentValue)},
		{"Growth", cli.FormatGrowth(s.InvestmentGrowth)},
	}))
}

func writeMonthlyFlow(out io.Writer, flow []report.MonthFlow, display currency.Code) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "MONTH\tINCOME\tEXPENSES\tNET\t")
	for _, m := range flow {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			m.Label(),
			currency.Display(m.Income, display),
			currency.Display(m.Expenses, display),
			currency.Display(m.Net(), display),
		)
	}
	return w.Flush()
}

func writeCategoryBreakdown(out io.Writer, totals []report.CategoryTotal, display currency.Code) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tTOTAL\tSHARE\t")
	for _, c := range totals {
		bar := strings.Repeat("█", int(c.Share/5))
		fmt.Fprintf(w, "%s\t%s\t%5.1f%% %s\t\n", c.Label, currency.Display(c.Total, display), c.Share, bar)
	}
	return w.Flush()
}
