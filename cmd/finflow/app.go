package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/finflow/internal/auth"
	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/config"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/storage"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app is what a command needs to talk to the user's data: the resolved
// config, the database and the restored session.
type app struct {
	cfg     *config.Config
	store   *storage.SQLiteStorage
	session *auth.Session
	out     io.Writer
	in      io.Reader
	reader  *cli.LineReader
}

// openApp loads the config, opens and migrates the database, and restores
// the persisted session.
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()

	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	session := auth.NewSession(store, auth.NewFileStore(cfg.SessionPath))
	if err := session.Restore(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	return &app{
		cfg:     cfg,
		store:   store,
		session: session,
		out:     cmd.OutOrStdout(),
		in:      cmd.InOrStdin(),
		reader:  cli.NewLineReader(cmd.InOrStdin(), cmd.OutOrStdout()),
	}, nil
}

// initStorage opens the database and brings its schema up to date.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// requireUser returns the signed-in user or ErrNotAuthenticated.
func (a *app) requireUser() (*model.User, error) {
	user, ok := a.session.CurrentUser()
	if !ok {
		return nil, common.ErrNotAuthenticated
	}
	return user, nil
}

// displayCurrency resolves the currency reports are shown in: the flag,
// then the user's preference, then the configured default.
func (a *app) displayCurrency(flag string, user *model.User) (currency.Code, error) {
	if flag != "" {
		code, err := currency.Parse(flag)
		if err != nil {
			return "", common.NewUserError(fmt.Sprintf("Unsupported currency %q (use %s)", flag, supportedCodes()), err)
		}
		return code, nil
	}
	if user != nil && user.DefaultCurrency.Valid() {
		return user.DefaultCurrency, nil
	}
	return a.cfg.DisplayCurrency, nil
}

func (a *app) println(s string) {
	_, _ = fmt.Fprintln(a.out, s)
}

// askPassword reads a password without echo when stdin is a terminal.
func (a *app) askPassword(ctx context.Context, label string) (string, error) {
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(a.out, cli.FormatPrompt(label))
		pw, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(a.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}
	return a.reader.AskRequired(ctx, label)
}

// stringFlagOrAsk returns the flag value, prompting when it is empty.
func (a *app) stringFlagOrAsk(ctx context.Context, cmd *cobra.Command, name, label string) (string, error) {
	v, _ := cmd.Flags().GetString(name)
	if strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	return a.reader.AskRequired(ctx, label)
}

func supportedCodes() string {
	codes := currency.Codes()
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
