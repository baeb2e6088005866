package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/importer"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/ofx"
	"github.com/spf13/cobra"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX (Quicken) files exported from your bank.

Each bank transaction is recorded once: importing the same statement again
only adds what is new.`,
		Example: `  # Import single file
  finflow import-ofx ~/Downloads/checking_jan_2024.qfx

  # Import every statement in a directory
  finflow import-ofx ~/Downloads/*.qfx

  # Preview without saving
  finflow import-ofx --dry-run statement.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")
	cmd.Flags().Bool("no-checkpoint", false, "Skip the automatic checkpoint before importing")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noCheckpoint, _ := cmd.Flags().GetBool("no-checkpoint")

	files, err := expandFiles(args)
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

	ctx, stop := cli.NewInterruptHandler(a.out, "Imported rows are kept. Run the same import again to finish; nothing is recorded twice.").
		HandleInterrupts(cmd.Context())
	defer stop()

	txns := parseOFXFiles(ctx, files)
	if len(txns) == 0 {
		a.println(cli.FormatWarning("No transactions found in any file"))
		return nil
	}

	if dryRun {
		a.println(cli.FormatInfo(fmt.Sprintf("Found %d transactions (dry run, nothing saved)", len(txns))))
		return writeTransactionTable(a.out, previewRows(txns, 10))
	}

	if !noCheckpoint {
		createAutoCheckpoint(ctx, a, "import")
	}

	imp := importer.New(a.store, importer.WithProgress(cmd.ErrOrStderr()))
	result, err := imp.Import(ctx, user.ID, txns)
	printImportResult(a, result)
	return err
}

// expandFiles resolves glob patterns, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

// parseOFXFiles parses every file, skipping unreadable ones, and drops
// transactions that appear in more than one file.
func parseOFXFiles(ctx context.Context, files []string) []model.Transaction {
	parser := ofx.NewParser(nil)
	seen := make(map[string]bool)
	var all []model.Transaction

	for _, path := range files {
		f, err := os.Open(path) // #nosec G304 -- user-supplied statement file
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}

		txns, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		added := 0
		for _, tx := range txns {
			if seen[tx.ExternalID] {
				continue
			}
			seen[tx.ExternalID] = true
			all = append(all, tx)
			added++
		}

		slog.Info("Processed file",
			"file", filepath.Base(path),
			"transactions_found", len(txns),
			"added", added,
			"duplicates", len(txns)-added)
	}

	return all
}

func previewRows(txns []model.Transaction, n int) []model.Transaction {
	if len(txns) > n {
		return txns[:n]
	}
	return txns
}

func createAutoCheckpoint(ctx context.Context, a *app, operation string) {
	manager, err := a.store.NewCheckpointManager()
	if err != nil {
		slog.Warn("Failed to create checkpoint manager", "error", err)
		return
	}
	info, err := manager.AutoCheckpoint(ctx, operation)
	if err != nil {
		slog.Warn("Failed to create automatic checkpoint", "error", err)
		return
	}
	slog.Info("Created automatic checkpoint", "id", info.ID)
}

func printImportResult(a *app, r importer.Result) {
	a.println(cli.FormatSuccess(fmt.Sprintf("Imported %d new transactions", r.Inserted)))
	if r.Duplicates > 0 {
		a.println(cli.FormatInfo(fmt.Sprintf("%d already recorded", r.Duplicates)))
	}
	if r.Skipped > 0 {
		a.println(cli.FormatWarning(fmt.Sprintf("%d skipped (run with --log-level debug for details)", r.Skipped)))
	}
}
