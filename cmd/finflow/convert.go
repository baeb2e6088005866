package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <amount> <from> <to>",
		Short: "Convert an amount between currencies",
		Example: `  finflow convert 100 USD INR
  finflow convert 1,00,000 INR USD`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(strings.ReplaceAll(args[0], ",", ""))
			if err != nil {
				return common.NewUserError(fmt.Sprintf("%q is not an amount", args[0]), common.ErrInvalidInput)
			}
			from, err := currency.Parse(args[1])
			if err != nil {
				return common.NewUserError("Supported currencies are "+supportedCodes(), err)
			}
			to, err := currency.Parse(args[2])
			if err != nil {
				return common.NewUserError("Supported currencies are "+supportedCodes(), err)
			}

			value := amount.InexactFloat64()
			converted, err := currency.Convert(value, from, to)
			if err != nil {
				return err
			}

			input, err := currency.Format(value, from)
			if err != nil {
				return convertRangeError(args[0], err)
			}
			result, err := currency.Format(converted, to)
			if err != nil {
				return convertRangeError(args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", input, cli.BoldStyle.Render(result))
			return nil
		},
	}
}

func convertRangeError(raw string, err error) error {
	if errors.Is(err, currency.ErrNotFinite) {
		return common.NewUserError(fmt.Sprintf("%s is too large to convert", raw), common.ErrInvalidInput)
	}
	return err
}

func currenciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "currencies",
		Short: "List supported currencies and their rates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tSYMBOL\tNAME\tPER 1 USD\t")
			for _, d := range currency.Descriptors() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", d.Code, d.Symbol, d.Name, decimal.NewFromFloat(d.ExchangeRate).String())
			}
			return w.Flush()
		},
	}
}
