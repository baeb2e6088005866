package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/report"
	"github.com/spf13/cobra"
)

func investmentsCmd() *cobra.Command {
	var displayCode, asOfFlag string

	cmd := &cobra.Command{
		Use:     "investments",
		Aliases: []string{"holdings"},
		Short:   "List your stock purchases and fixed deposits",
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

			ctx := cmd.Context()
			stocks, err := a.store.GetStockInvestments(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("failed to load stock investments: %w", err)
			}
			deposits, err := a.store.GetFixedDepositInvestments(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("failed to load fixed deposits: %w", err)
			}

			holdings, err := report.Holdings(stocks, deposits, display, asOf)
			if err != nil {
				return err
			}
			if len(holdings) == 0 {
				a.println(cli.SubtitleStyle.Render("No investments yet. Record one with 'finflow add --type investment'."))
				return nil
			}

			if err := writeHoldings(a.out, holdings, display); err != nil {
				return err
			}

			summary, err := report.Summarize(report.Input{Stocks: stocks, Deposits: deposits}, display, asOf)
			if err != nil {
				return err
			}
			a.println("")
			a.println(cli.RenderKeyValues([][2]string{
				{"Invested", currency.Display(summary.InvestmentCost, display)},
				{"Value", currency.Display(summary.InvestmentValue, display)},
				{"Growth", cli.FormatGrowth(summary.InvestmentGrowth)},
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&displayCode, "currency", "", "Show amounts in this currency")
	cmd.Flags().StringVar(&asOfFlag, "as-of", "", "Value deposits as of YYYY-MM-DD (default today)")

	return cmd
}

func writeHoldings(out io.Writer, holdings []report.Holding, display currency.Code) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tNAME\tDETAIL\tSINCE\tCOST\tVALUE\tGAIN\t")

	for _, h := range holdings {
		note := ""
		switch {
		case h.Matured:
			note = " (matured)"
		case !h.PriceKnown:
			note = " (no price)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s%s\t\n",
			h.Kind,
			truncate(h.Name, 28),
			h.Detail,
			h.Date.Format(model.DateLayout),
			currency.Display(h.Cost, display),
			currency.Display(h.Value, display),
			currency.Display(h.Gain, display),
			note,
		)
	}
	return w.Flush()
}
