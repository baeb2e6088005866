package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/report"
	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txn", "tx"},
		Short:   "List and delete transactions",
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(recentTransactionsCmd())
	cmd.AddCommand(deleteTransactionCmd())

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var (
		txType      string
		category    string
		displayCode string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your transactions, newest first",
		Example: `  finflow transactions list
  finflow transactions list --type expense --category food
  finflow transactions list --currency INR`,
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

			var wantType model.TransactionType
			if txType != "" {
				if wantType, err = model.ParseTransactionType(txType); err != nil {
					return common.NewUserError("Invalid --type", err)
				}
			}

			txns, err := a.store.GetUserTransactions(cmd.Context(), user.ID)
			if err != nil {
				return fmt.Errorf("failed to load transactions: %w", err)
			}
			txns = filterTransactions(txns, wantType, category)
			if limit > 0 && len(txns) > limit {
				txns = txns[:limit]
			}

			if len(txns) == 0 {
				a.println(cli.SubtitleStyle.Render("No transactions found."))
				return nil
			}

			if err := writeTransactionTable(a.out, txns); err != nil {
				return err
			}

			summary, err := report.Summarize(report.Input{Transactions: txns}, display, time.Now())
			if err != nil {
				return err
			}
			a.println("")
			a.println(cli.RenderKeyValues([][2]string{
				{"Transactions", fmt.Sprintf("%d", len(txns))},
				{"Income", cli.FormatAmount(summary.Income, display, model.TypeIncome)},
				{"Expenses", cli.FormatAmount(summary.Expenses, display, model.TypeExpense)},
			}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&txType, "type", "t", "", "Only this type (expense, income, investment)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only this category")
	cmd.Flags().StringVar(&displayCode, "currency", "", "Currency for totals")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many (0 = all)")

	return cmd
}

func recentTransactionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show your most recent transactions",
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

			txns, err := a.store.GetRecentTransactions(cmd.Context(), user.ID, limit)
			if err != nil {
				return fmt.Errorf("failed to load transactions: %w", err)
			}
			if len(txns) == 0 {
				a.println(cli.SubtitleStyle.Render("No transactions yet. Add one with 'finflow add'."))
				return nil
			}
			return writeTransactionTable(a.out, txns)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Number of transactions")

	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.requireUser()
			if err != nil {
				return err
			}

			if err := a.store.DeleteTransaction(cmd.Context(), user.ID, args[0]); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("No transaction %s", args[0]), err)
				}
				return fmt.Errorf("failed to delete transaction: %w", err)
			}

			a.println(cli.FormatSuccess("Deleted " + args[0]))
			return nil
		},
	}
}

func filterTransactions(txns []model.Transaction, t model.TransactionType, category string) []model.Transaction {
	category = strings.ToLower(strings.TrimSpace(category))
	if t == "" && category == "" {
		return txns
	}

	out := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if t != "" && txn.Type != t {
			continue
		}
		if category != "" && txn.Category != category {
			continue
		}
		out = append(out, txn)
	}
	return out
}

func writeTransactionTable(out io.Writer, txns []model.Transaction) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTITLE\tCATEGORY\tAMOUNT\tREPEATS\tID")

	for _, txn := range txns {
		repeats := ""
		if txn.IsRecurring {
			repeats = string(txn.Recurrence)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			txn.DateString(),
			truncate(txn.Title, 32),
			model.CategoryLabel(txn.Category),
			cli.SignedAmount(txn.Amount, txn.Currency, txn.Type),
			repeats,
			txn.ID,
		)
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
