package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/config"
	"github.com/Veraticus/finflow/internal/importer"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/plaid"
	"github.com/spf13/cobra"
)

// newFetcher builds the bank feed client; tests replace it.
var newFetcher = func() (plaid.TransactionFetcher, error) {
	cfg, err := config.LoadPlaidConfig(nil)
	if err != nil {
		return nil, err
	}
	return plaid.NewClient(*cfg)
}

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull recent transactions from your bank through Plaid",
		Long: `Fetch posted transactions from the bank account linked through Plaid and
record the ones FinFlow has not seen yet.

Requires plaid.client_id, plaid.secret and plaid.access_token in the config
file, or the PLAID_CLIENT_ID, PLAID_SECRET and PLAID_ACCESS_TOKEN variables.`,
		Example: `  # Last 30 days
  finflow sync

  # A specific range
  finflow sync --start 2024-01-01 --end 2024-03-31`,
		RunE: runSync,
	}

	cmd.Flags().Int("days", 30, "Number of days to fetch")
	cmd.Flags().String("start", "", "Start date (YYYY-MM-DD), overrides --days")
	cmd.Flags().String("end", "", "End date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolP("dry-run", "d", false, "Preview without saving")

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	start, end, err := syncRange(cmd)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.requireUser()
	if err != nil {
		return err
	}

	fetcher, err := newFetcher()
	if err != nil {
		return fmt.Errorf("failed to set up Plaid: %w", err)
	}

	ctx, stop := cli.NewInterruptHandler(a.out, "Run 'finflow sync' again to pick up where it stopped.").
		HandleInterrupts(cmd.Context())
	defer stop()

	txns, err := fetchBankTransactions(ctx, fetcher, start, end)
	if err != nil {
		return err
	}
	a.println(cli.FormatInfo(fmt.Sprintf("%s Fetched %d transactions from %s to %s",
		cli.BankIcon, len(txns), start.Format(model.DateLayout), end.Format(model.DateLayout))))

	if len(txns) == 0 {
		return nil
	}
	if dryRun {
		return writeTransactionTable(a.out, previewRows(txns, 10))
	}

	createAutoCheckpoint(ctx, a, "sync")

	result, err := importer.New(a.store, importer.WithProgress(cmd.ErrOrStderr())).Import(ctx, user.ID, txns)
	printImportResult(a, result)
	return err
}

func fetchBankTransactions(ctx context.Context, fetcher plaid.TransactionFetcher, start, end time.Time) ([]model.Transaction, error) {
	if accounts, err := fetcher.GetAccounts(ctx); err != nil {
		slog.Debug("Could not list Plaid accounts", "error", err)
	} else {
		slog.Debug("Syncing Plaid accounts", "accounts", accounts)
	}

	txns, err := fetcher.GetTransactions(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return txns, nil
}

func syncRange(cmd *cobra.Command) (time.Time, time.Time, error) {
	days, _ := cmd.Flags().GetInt("days")
	startFlag, _ := cmd.Flags().GetString("start")
	endFlag, _ := cmd.Flags().GetString("end")

	end := model.Day(time.Now())
	if endFlag != "" {
		d, err := model.ParseDate(endFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
		}
		end = d
	}

	start := end.AddDate(0, 0, -days)
	if startFlag != "" {
		d, err := model.ParseDate(startFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
		}
		start = d
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date %s is after end date %s",
			start.Format(model.DateLayout), end.Format(model.DateLayout))
	}
	return start, end, nil
}
