// Package importer records transactions from bank files and feeds for one
// user, skipping those already imported.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/service"
	"github.com/schollz/progressbar/v3"
)

// Result counts what happened to each imported transaction.
type Result struct {
	Inserted   int
	Duplicates int
	Skipped    int
}

// Total is the number of transactions seen.
func (r Result) Total() int {
	return r.Inserted + r.Duplicates + r.Skipped
}

// Importer writes transactions through an ImportStore.
type Importer struct {
	store    service.ImportStore
	logger   *slog.Logger
	progress io.Writer
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the importer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) { i.logger = logger }
}

// WithProgress draws a progress bar on w while importing.
func WithProgress(w io.Writer) Option {
	return func(i *Importer) { i.progress = w }
}

// New creates an importer.
func New(store service.ImportStore, opts ...Option) *Importer {
	i := &Importer{store: store}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = common.ComponentLogger(i.logger, "importer")
	return i
}

// Import records txns for userID. Every transaction must carry an
// ExternalID; one the user already has is counted as a duplicate and left
// untouched. Transactions that cannot be recorded are skipped. A store error
// stops the import and is returned with the counts so far.
func (i *Importer) Import(ctx context.Context, userID string, txns []model.Transaction) (Result, error) {
	var result Result
	if userID == "" {
		return result, common.ErrNotAuthenticated
	}

	bar := i.newProgressBar(len(txns))

	for idx := range txns {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		payload, reason := toPayload(userID, &txns[idx])
		switch {
		case reason != "":
			result.Skipped++
			i.logger.Debug("skipping transaction", "external_id", txns[idx].ExternalID, "reason", reason)
		default:
			inserted, err := i.store.ImportTransaction(ctx, payload)
			if err != nil {
				return result, fmt.Errorf("failed to import %s: %w", payload.ExternalID, err)
			}
			if inserted {
				result.Inserted++
			} else {
				result.Duplicates++
			}
		}

		if bar != nil {
			if err := bar.Add(1); err != nil {
				i.logger.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	i.logger.Info("import finished",
		"user_id", userID,
		"inserted", result.Inserted,
		"duplicates", result.Duplicates,
		"skipped", result.Skipped)

	return result, nil
}

// toPayload converts an ingested transaction into a create payload, or
// returns why it cannot be recorded.
func toPayload(userID string, t *model.Transaction) (service.NewTransaction, string) {
	switch {
	case strings.TrimSpace(t.ExternalID) == "":
		return service.NewTransaction{}, "missing external id"
	case t.Amount == 0 || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0):
		return service.NewTransaction{}, "no amount"
	case !t.Type.Valid():
		return service.NewTransaction{}, "unknown type"
	case !t.Currency.Valid():
		return service.NewTransaction{}, "unsupported currency"
	case t.Date.IsZero():
		return service.NewTransaction{}, "missing date"
	}

	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "Imported transaction"
	}
	category := t.Category
	if category == "" {
		category = model.CategoryOther
	}

	return service.NewTransaction{
		UserID:     userID,
		ExternalID: t.ExternalID,
		Title:      title,
		Amount:     math.Abs(t.Amount),
		Date:       model.Day(t.Date),
		Type:       t.Type,
		Category:   category,
		Currency:   t.Currency,
		Notes:      t.Notes,
	}, ""
}

func (i *Importer) newProgressBar(total int) *progressbar.ProgressBar {
	if i.progress == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(i.progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(i.progress)
		}),
	)
}
