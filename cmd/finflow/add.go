package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/submission"
	"github.com/Veraticus/finflow/internal/tui"
	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	var form submission.Form
	var interactive bool

	cmd := &cobra.Command{
		Use:   "add [title] [amount]",
		Short: "Record a transaction, stock purchase or fixed deposit",
		Long: `Record one transaction.

The type and category decide what is recorded:
  investment + stocks   a stock purchase (needs --ticker and --shares)
  fixed-deposit         a fixed deposit (needs --bank, --rate and --maturity)
  anything else         a plain income, expense or investment transaction`,
		Example: `  finflow add Coffee 5.75 --category food
  finflow add Salary 5000 --type income --category salary --recurring --recurrence Monthly
  finflow add "Apple shares" 150 --type investment --category stocks --ticker AAPL --shares 10
  finflow add "SBI FD" 100000 --type investment --category fixed-deposit --bank SBI --rate 7.1 --maturity 2026-01-01 --currency INR
  finflow add --interactive`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			if len(args) > 0 {
				form.Title = args[0]
			}
			if len(args) > 1 {
				form.Amount = args[1]
			}
			if form.Type == "" {
				form.Type = string(model.TypeExpense)
			}

			if interactive {
				user, err := a.requireUser()
				if err != nil {
					return err
				}
				if form.Currency == "" {
					form.Currency = string(user.Currency())
				}
				if form.Date == "" {
					form.Date = time.Now().Format(model.DateLayout)
				}

				validate := func(f submission.Form) error {
					_, err := submission.Validate(f, user, time.Now())
					return err
				}
				form, err = tui.RunForm(ctx, tui.RunConfig{AltScreen: true}, form, tui.WithValidator(validate))
				if errors.Is(err, tui.ErrCanceled) {
					a.println(cli.FormatInfo("Nothing saved."))
					return nil
				}
				if err != nil {
					return err
				}
			}

			workflow := submission.NewWorkflow(a.session, a.store,
				submission.WithObserver(func(s submission.State) {
					slog.Debug("Submission state", "state", s.String())
				}),
			)

			result, err := workflow.Submit(ctx, form)
			if err != nil {
				return describeSubmitError(err)
			}

			a.println(cli.FormatSuccess(fmt.Sprintf("Saved %s %s", result.Shape, cli.SubtleStyle.Render(result.RecordID))))
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&interactive, "interactive", "i", false, "Fill in the form interactively")
	f.StringVarP(&form.Type, "type", "t", "", "expense, income or investment (default expense)")
	f.StringVarP(&form.Category, "category", "c", "", "Category, e.g. food, salary, stocks, fixed-deposit")
	f.StringVar(&form.Title, "title", "", "Title")
	f.StringVarP(&form.Amount, "amount", "a", "", "Amount (price per share for stocks, principal for deposits)")
	f.StringVarP(&form.Date, "date", "d", "", "Date as YYYY-MM-DD (default today)")
	f.StringVar(&form.Notes, "notes", "", "Notes")
	f.StringVar(&form.Currency, "currency", "", "USD or INR (default your preferred currency)")
	f.BoolVar(&form.IsRecurring, "recurring", false, "Mark as recurring")
	f.StringVar(&form.Recurrence, "recurrence", "", recurrenceHelp())
	f.StringVar(&form.Ticker, "ticker", "", "Stock ticker")
	f.StringVar(&form.Shares, "shares", "", "Number of shares")
	f.StringVar(&form.CurrentPrice, "current-price", "", "Current price per share")
	f.StringVar(&form.BankName, "bank", "", "Fixed deposit bank")
	f.StringVar(&form.InterestRate, "rate", "", "Fixed deposit annual interest rate in percent")
	f.StringVar(&form.MaturityDate, "maturity", "", "Fixed deposit maturity date as YYYY-MM-DD")

	return cmd
}

func describeSubmitError(err error) error {
	var fieldErr *submission.FieldError
	switch {
	case errors.As(err, &fieldErr):
		return common.NewUserError("Please fix the "+strings.ReplaceAll(fieldErr.Field, "_", " "), err)
	case common.IsStoreError(err):
		return common.NewUserError("Could not save", err)
	default:
		return err
	}
}

func recurrenceHelp() string {
	names := make([]string, 0, len(model.Recurrences))
	for _, r := range model.Recurrences {
		if r != model.RecurrenceNone {
			names = append(names, string(r))
		}
	}
	return "How often it repeats: " + strings.Join(names, ", ")
}
