package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Veraticus/finflow/internal/submission"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCanceled is returned when the user leaves the form without saving.
var ErrCanceled = errors.New("form canceled")

// RunConfig holds the terminal the form runs on. Zero values use the
// process's stdin and stdout.
type RunConfig struct {
	Input     io.Reader
	Output    io.Writer
	AltScreen bool
}

// RunForm shows the form until the user saves or cancels, and returns the
// saved fields.
func RunForm(ctx context.Context, cfg RunConfig, initial submission.Form, opts ...Option) (submission.Form, error) {
	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.Input != nil {
		programOpts = append(programOpts, tea.WithInput(cfg.Input))
	}
	if cfg.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(cfg.Output))
	}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(NewFormModel(initial, opts...), programOpts...).Run()
	if err != nil {
		return submission.Form{}, fmt.Errorf("transaction form failed: %w", err)
	}

	m, ok := final.(FormModel)
	if !ok {
		return submission.Form{}, fmt.Errorf("transaction form returned %T", final)
	}
	if !m.Saved() {
		return submission.Form{}, ErrCanceled
	}
	return m.Form(), nil
}
