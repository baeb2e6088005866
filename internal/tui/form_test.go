package tui

import (
	"testing"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/submission"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, m FormModel, msgs ...tea.Msg) (FormModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		var ok bool
		m, ok = next.(FormModel)
		require.True(t, ok)
	}
	return m, cmd
}

func typed(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	tab      = tea.KeyMsg{Type: tea.KeyTab}
	shiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	space    = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	save     = tea.KeyMsg{Type: tea.KeyCtrlS}
	escape   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestNewFormModel_Focus(t *testing.T) {
	m := NewFormModel(submission.Form{})
	assert.Equal(t, fieldType, m.focus, "blank type starts on the type field")

	m = NewFormModel(submission.Form{Type: "expense"})
	assert.Equal(t, fieldTitle, m.focus)
}

func TestFormModel_PlainExpense(t *testing.T) {
	m := NewFormModel(submission.Form{Type: "expense", Currency: "USD", Date: "2024-01-01"})

	m, _ = send(t, m,
		typed("Coffee"), tab,
		typed("5.75"),
		shiftTab, shiftTab,
		typed("food"),
	)
	m, cmd := send(t, m, save)

	require.True(t, m.Saved())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	form := m.Form()
	assert.Equal(t, submission.Form{
		Type:     "expense",
		Category: "food",
		Title:    "Coffee",
		Amount:   "5.75",
		Currency: "USD",
		Date:     "2024-01-01",
	}, form)
	assert.Equal(t, submission.ShapePlain, m.Shape())
}

func TestFormModel_FieldsFollowShape(t *testing.T) {
	m := NewFormModel(submission.Form{Type: "investment"})
	assert.Contains(t, m.visible(), fieldRecurring)
	assert.NotContains(t, m.visible(), fieldTicker)

	m = NewFormModel(submission.Form{Type: "investment", Category: "stocks"})
	assert.Equal(t, submission.ShapeStock, m.Shape())
	assert.Contains(t, m.visible(), fieldTicker)
	assert.NotContains(t, m.visible(), fieldRecurring)
	assert.Contains(t, m.View(), "Purchase date")

	m = NewFormModel(submission.Form{Type: "investment", Category: "fixed-deposit"})
	assert.Equal(t, submission.ShapeFixedDeposit, m.Shape())
	assert.Contains(t, m.visible(), fieldMaturityDate)
	assert.Contains(t, m.View(), "Start date")
}

func TestFormModel_StockFields(t *testing.T) {
	m := NewFormModel(submission.Form{
		Type:     "investment",
		Category: "stocks",
		Ticker:   "AAPL",
		Shares:   "10",
		BankName: "ignored for stocks",
	})

	form := m.Form()
	assert.Equal(t, "AAPL", form.Ticker)
	assert.Equal(t, "10", form.Shares)
	assert.Empty(t, form.BankName)
	assert.False(t, form.IsRecurring)
}

func TestFormModel_RecurringToggle(t *testing.T) {
	m := NewFormModel(submission.Form{Type: "expense"})
	m.focusOn(fieldRecurring)
	assert.NotContains(t, m.visible(), fieldRecurrence)

	m, _ = send(t, m, space)
	assert.True(t, m.fields[fieldRecurring].checked)
	assert.Contains(t, m.visible(), fieldRecurrence)

	m, _ = send(t, m, tab, typed("Monthly"))
	assert.Equal(t, fieldRecurrence, m.focus)

	form := m.Form()
	assert.True(t, form.IsRecurring)
	assert.Equal(t, "Monthly", form.Recurrence)

	m.focusOn(fieldRecurring)
	m, _ = send(t, m, space)
	form = m.Form()
	assert.False(t, form.IsRecurring)
	assert.Empty(t, form.Recurrence, "recurrence only travels with the flag")
}

func TestFormModel_TabWraps(t *testing.T) {
	m := NewFormModel(submission.Form{Type: "expense"})
	m.focusOn(fieldNotes)

	m, _ = send(t, m, tab)
	assert.Equal(t, fieldType, m.focus)

	m, _ = send(t, m, shiftTab)
	assert.Equal(t, fieldNotes, m.focus)
}

func TestFormModel_ValidationFocusesField(t *testing.T) {
	validate := func(f submission.Form) error {
		if f.Ticker == "" {
			return &submission.FieldError{Field: submission.FieldTicker, Message: "is required"}
		}
		return nil
	}
	m := NewFormModel(submission.Form{Type: "investment", Category: "stocks", Title: "Apple"}, WithValidator(validate))

	m, _ = send(t, m, save)
	assert.False(t, m.Saved())
	assert.Equal(t, fieldTicker, m.focus)
	assert.Contains(t, m.View(), "ticker: is required")

	m, _ = send(t, m, typed("aapl"), save)
	assert.True(t, m.Saved())
	assert.Equal(t, "aapl", m.Form().Ticker)
}

func TestFormModel_ValidationWithoutField(t *testing.T) {
	validate := func(submission.Form) error {
		return common.ErrNotAuthenticated
	}
	m := NewFormModel(submission.Form{Type: "expense"}, WithValidator(validate))

	m, _ = send(t, m, save)
	assert.False(t, m.Saved())
	assert.Contains(t, m.View(), "not authenticated")
	assert.Equal(t, fieldTitle, m.focus, "focus stays put")
}

func TestFormModel_Cancel(t *testing.T) {
	m := NewFormModel(submission.Form{Type: "expense"})

	m, cmd := send(t, m, escape)
	assert.True(t, m.Canceled())
	assert.False(t, m.Saved())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestFormModel_CategoryHintFollowsType(t *testing.T) {
	m := NewFormModel(submission.Form{})
	m, _ = send(t, m, typed("income"))
	assert.Contains(t, m.fields[fieldCategory].input.Placeholder, "salary")
}

func TestFormModel_WindowSize(t *testing.T) {
	m := NewFormModel(submission.Form{Type: "expense"})
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	assert.Equal(t, 60, m.width)
	assert.Contains(t, m.View(), "Add transaction")
}
