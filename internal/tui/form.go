// Package tui is the interactive add-transaction form.
package tui

import (
	"errors"
	"strings"

	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/submission"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type fieldID int

const (
	fieldType fieldID = iota
	fieldCategory
	fieldTitle
	fieldAmount
	fieldCurrency
	fieldDate
	fieldRecurring
	fieldRecurrence
	fieldTicker
	fieldShares
	fieldCurrentPrice
	fieldBankName
	fieldInterestRate
	fieldMaturityDate
	fieldNotes
	fieldCount
)

type field struct {
	name    string // as reported by submission.FieldError
	label   string
	input   textinput.Model
	toggle  bool
	checked bool
}

// Option configures a FormModel.
type Option func(*FormModel)

// WithValidator checks the form on save. A *submission.FieldError moves
// focus to the offending field.
func WithValidator(validate func(submission.Form) error) Option {
	return func(m *FormModel) { m.validate = validate }
}

// WithTheme sets the form theme.
func WithTheme(theme Theme) Option {
	return func(m *FormModel) { m.theme = theme }
}

// WithKeyMap replaces the key bindings.
func WithKeyMap(keys KeyMap) Option {
	return func(m *FormModel) { m.keys = keys }
}

// FormModel collects the fields of one transaction. The fields shown
// follow the record shape picked by the type and category.
type FormModel struct {
	validate func(submission.Form) error
	keys     KeyMap
	theme    Theme
	errMsg   string
	errField fieldID
	help     help.Model
	fields   []field
	focus    fieldID
	width    int
	saved    bool
	canceled bool
}

// NewFormModel creates a form prefilled with initial.
func NewFormModel(initial submission.Form, opts ...Option) FormModel {
	m := FormModel{
		keys:     DefaultKeyMap(),
		theme:    Default,
		help:     help.New(),
		errField: -1,
		fields:   make([]field, fieldCount),
	}
	for _, opt := range opts {
		opt(&m)
	}

	text := func(id fieldID, name, label, placeholder, value string, limit int) {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholder
		in.CharLimit = limit
		in.SetValue(value)
		m.fields[id] = field{name: name, label: label, input: in}
	}

	text(fieldType, submission.FieldType, "Type", "expense, income or investment", initial.Type, 16)
	text(fieldCategory, submission.FieldCategory, "Category", categoryHint(initial.Type), initial.Category, 40)
	text(fieldTitle, submission.FieldTitle, "Title", "Coffee", initial.Title, 120)
	text(fieldAmount, submission.FieldAmount, "Amount", "0.00", initial.Amount, 24)
	text(fieldCurrency, submission.FieldCurrency, "Currency", "USD or INR", initial.Currency, 3)
	text(fieldDate, submission.FieldDate, "Date", model.DateLayout, initial.Date, 10)
	m.fields[fieldRecurring] = field{name: "recurring", label: "Recurring", toggle: true, checked: initial.IsRecurring}
	text(fieldRecurrence, submission.FieldRecurrence, "Repeats", "Monthly", initial.Recurrence, 16)
	text(fieldTicker, submission.FieldTicker, "Ticker", "AAPL", initial.Ticker, 12)
	text(fieldShares, submission.FieldShares, "Shares", "10", initial.Shares, 24)
	text(fieldCurrentPrice, submission.FieldCurrentPrice, "Current price", "optional", initial.CurrentPrice, 24)
	text(fieldBankName, submission.FieldBankName, "Bank", "State Bank", initial.BankName, 80)
	text(fieldInterestRate, submission.FieldInterestRate, "Interest rate %", "7.1", initial.InterestRate, 8)
	text(fieldMaturityDate, submission.FieldMaturityDate, "Maturity date", model.DateLayout, initial.MaturityDate, 10)
	text(fieldNotes, "notes", "Notes", "optional", initial.Notes, 500)

	m.focusOn(fieldTitle)
	if strings.TrimSpace(initial.Type) == "" {
		m.focusOn(fieldType)
	}
	return m
}

// Init implements tea.Model.
func (m FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.canceled = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Submit):
			return m.submit()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil

		case key.Matches(msg, m.keys.Next):
			return m, m.move(1)

		case key.Matches(msg, m.keys.Prev):
			return m, m.move(-1)

		case m.fields[m.focus].toggle:
			if key.Matches(msg, m.keys.Toggle) {
				m.fields[m.focus].checked = !m.fields[m.focus].checked
			}
			return m, nil
		}
	}

	if m.fields[m.focus].toggle {
		return m, nil
	}

	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
	if m.focus == fieldType {
		m.fields[fieldCategory].input.Placeholder = categoryHint(m.fields[fieldType].input.Value())
	}
	return m, cmd
}

func (m FormModel) submit() (tea.Model, tea.Cmd) {
	m.errMsg = ""
	m.errField = -1

	if m.validate != nil {
		if err := m.validate(m.Form()); err != nil {
			m.errMsg = err.Error()

			var fieldErr *submission.FieldError
			if errors.As(err, &fieldErr) {
				for _, id := range m.visible() {
					if m.fields[id].name == fieldErr.Field {
						m.errField = id
						return m, m.focusOn(id)
					}
				}
			}
			return m, nil
		}
	}

	m.saved = true
	return m, tea.Quit
}

// move shifts focus by delta over the visible fields, wrapping around.
func (m *FormModel) move(delta int) tea.Cmd {
	visible := m.visible()
	current := 0
	for i, id := range visible {
		if id == m.focus {
			current = i
			break
		}
	}
	next := (current + delta + len(visible)) % len(visible)
	return m.focusOn(visible[next])
}

func (m *FormModel) focusOn(id fieldID) tea.Cmd {
	for i := range m.fields {
		m.fields[i].input.Blur()
	}
	m.focus = id
	if m.fields[id].toggle {
		return nil
	}
	return m.fields[id].input.Focus()
}

// Shape is the record the form currently describes.
func (m FormModel) Shape() submission.Shape {
	t, err := model.ParseTransactionType(m.fields[fieldType].input.Value())
	if err != nil {
		t = model.TypeExpense
	}
	return submission.SelectShape(t, m.fields[fieldCategory].input.Value())
}

// visible lists the fields of the current shape in display order.
func (m FormModel) visible() []fieldID {
	ids := []fieldID{fieldType, fieldCategory, fieldTitle, fieldAmount, fieldCurrency, fieldDate}

	switch m.Shape() {
	case submission.ShapeStock:
		ids = append(ids, fieldTicker, fieldShares, fieldCurrentPrice)
	case submission.ShapeFixedDeposit:
		ids = append(ids, fieldBankName, fieldInterestRate, fieldMaturityDate)
	default:
		ids = append(ids, fieldRecurring)
		if m.fields[fieldRecurring].checked {
			ids = append(ids, fieldRecurrence)
		}
	}
	return append(ids, fieldNotes)
}

// Form returns the current field values.
func (m FormModel) Form() submission.Form {
	v := func(id fieldID) string { return strings.TrimSpace(m.fields[id].input.Value()) }

	form := submission.Form{
		Type:     v(fieldType),
		Category: v(fieldCategory),
		Title:    v(fieldTitle),
		Amount:   v(fieldAmount),
		Currency: strings.ToUpper(v(fieldCurrency)),
		Date:     v(fieldDate),
		Notes:    v(fieldNotes),
	}

	switch m.Shape() {
	case submission.ShapeStock:
		form.Ticker = v(fieldTicker)
		form.Shares = v(fieldShares)
		form.CurrentPrice = v(fieldCurrentPrice)
	case submission.ShapeFixedDeposit:
		form.BankName = v(fieldBankName)
		form.InterestRate = v(fieldInterestRate)
		form.MaturityDate = v(fieldMaturityDate)
	default:
		form.IsRecurring = m.fields[fieldRecurring].checked
		if form.IsRecurring {
			form.Recurrence = v(fieldRecurrence)
		}
	}
	return form
}

// Saved reports whether the user saved the form.
func (m FormModel) Saved() bool { return m.saved }

// Canceled reports whether the user left without saving.
func (m FormModel) Canceled() bool { return m.canceled }

// View renders the form.
func (m FormModel) View() string {
	if m.saved || m.canceled {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Add " + m.Shape().String()))
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render(shapeHint(m.Shape())))
	b.WriteString("\n")

	for _, id := range m.visible() {
		f := m.fields[id]

		label := m.theme.Label
		if id == m.focus {
			label = m.theme.ActiveLabel
		}

		value := f.input.View()
		if f.toggle {
			value = "[ ]"
			if f.checked {
				value = "[x]"
			}
		}

		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label.Render(m.dateLabel(id, f.label)), value))
		b.WriteString("\n")

		if id == m.errField {
			b.WriteString(m.theme.Error.Render(strings.Repeat(" ", labelWidth) + m.errMsg))
			b.WriteString("\n")
		}
	}

	if m.errMsg != "" && m.errField < 0 {
		b.WriteString("\n")
		b.WriteString(m.theme.Error.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	box := m.theme.Box
	if m.width > 0 {
		box = box.Width(min(m.width-2, 80))
	}
	return box.Render(b.String())
}

func (m FormModel) dateLabel(id fieldID, label string) string {
	if id != fieldDate {
		return label
	}
	switch m.Shape() {
	case submission.ShapeStock:
		return "Purchase date"
	case submission.ShapeFixedDeposit:
		return "Start date"
	default:
		return label
	}
}

func shapeHint(s submission.Shape) string {
	switch s {
	case submission.ShapeStock:
		return "Stock purchase. Amount is the price per share."
	case submission.ShapeFixedDeposit:
		return "Fixed deposit. Amount is the principal."
	default:
		return "Use investment + stocks for a stock purchase, or fixed-deposit for a deposit."
	}
}

func categoryHint(rawType string) string {
	t, err := model.ParseTransactionType(rawType)
	if err != nil {
		t = model.TypeExpense
	}
	names := make([]string, 0, 5)
	for _, c := range model.SuggestedCategories(t) {
		names = append(names, c.Name)
		if len(names) == cap(names) {
			break
		}
	}
	return strings.Join(names, ", ")
}
