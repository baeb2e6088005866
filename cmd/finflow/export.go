package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/config"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/report"
	"github.com/Veraticus/finflow/internal/sheets"
	"github.com/spf13/cobra"
)

// newReportWriter builds the Google Sheets writer; tests replace it.
var newReportWriter = func(ctx context.Context) (sheets.ReportWriter, error) {
	cfg, err := config.LoadSheetsConfig(nil)
	if err != nil {
		return nil, err
	}
	return sheets.NewWriter(ctx, *cfg, slog.Default())
}

func exportCmd() *cobra.Command {
	var (
		displayCode string
		months      int
		asOfFlag    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export your report to Google Sheets",
		Long: `Write your balance summary, monthly cash flow, spending by category,
holdings and every transaction to a Google Sheets spreadsheet.

Authenticate with either a service account (sheets.service_account_path) or
OAuth2 (sheets.client_id and sheets.client_secret, then 'finflow export auth').`,
		Example: `  finflow export auth
  finflow export --currency INR`,
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
			in, err := loadReportInput(ctx, a.store, user.ID)
			if err != nil {
				return err
			}
			export, err := buildExport(in, user, display, months, asOf)
			if err != nil {
				return err
			}

			writer, err := newReportWriter(ctx)
			if err != nil {
				return fmt.Errorf("failed to set up Google Sheets: %w", err)
			}

			id, err := writer.Export(ctx, export)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			a.println(cli.FormatSuccess(fmt.Sprintf("Exported %d transactions", len(export.Transactions))))
			a.println(cli.InfoStyle.Render("https://docs.google.com/spreadsheets/d/" + id))
			return nil
		},
	}

	cmd.Flags().StringVar(&displayCode, "currency", "", "Report currency")
	cmd.Flags().IntVarP(&months, "months", "m", 12, "Months of cash flow to include")
	cmd.Flags().StringVar(&asOfFlag, "as-of", "", "Report date as YYYY-MM-DD (default today)")

	cmd.AddCommand(exportAuthCmd())

	return cmd
}

func exportAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize FinFlow to write to Google Sheets",
		Long: `Open the Google consent page and cache the resulting OAuth2 token so
later exports run unattended.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			oauthCfg, err := config.LoadSheetsOAuth(nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatInfo("Visit the URL in the log output and approve access."))

			token, err := sheets.GetOrCreateToken(cmd.Context(), oauthCfg)
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			if err := sheets.SaveToken(oauthCfg.TokenFile, token); err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess("Google Sheets connected; token saved to "+oauthCfg.TokenFile))
			return nil
		},
	}
}

// buildExport assembles the spreadsheet contents from the user's records.
func buildExport(in report.Input, user *model.User, display currency.Code, months int, asOf time.Time) (sheets.Export, error) {
	summary, err := report.Summarize(in, display, asOf)
	if err != nil {
		return sheets.Export{}, err
	}
	monthly, err := report.MonthlyFlow(in.Transactions, display, months, asOf)
	if err != nil {
		return sheets.Export{}, err
	}
	categories, err := report.CategoryBreakdown(in.Transactions, model.TypeExpense, display)
	if err != nil {
		return sheets.Export{}, err
	}
	holdings, err := report.Holdings(in.Stocks, in.Deposits, display, asOf)
	if err != nil {
		return sheets.Export{}, err
	}

	return sheets.Export{
		AsOf:         asOf,
		UserName:     user.Name,
		Currency:     display,
		Summary:      summary,
		Monthly:      monthly,
		Categories:   categories,
		Holdings:     holdings,
		Transactions: in.Transactions,
	}, nil
}
