// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#2E86AB")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#3BB273") // Green
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#F4B942") // Amber
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#E15554") // Red
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#7CB7D9") // Light blue
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666") // Gray
	// InvestmentColor marks investment amounts.
	InvestmentColor = lipgloss.Color("#9B72CF") // Purple

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SubtitleStyle is used for secondary headings.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(PrimaryColor)

	// PromptStyle is used for user prompts.
	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	incomeStyle     = lipgloss.NewStyle().Foreground(SuccessColor)
	expenseStyle    = lipgloss.NewStyle().Foreground(ErrorColor)
	investmentStyle = lipgloss.NewStyle().Foreground(InvestmentColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	MoneyIcon   = "💰"
	ChartIcon   = "📊"
	BankIcon    = "🏦"
	FolderIcon  = "🗄️"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the money icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(MoneyIcon + " " + title)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// AmountStyle returns the style for amounts of transaction type t.
func AmountStyle(t model.TransactionType) lipgloss.Style {
	switch t {
	case model.TypeIncome:
		return incomeStyle
	case model.TypeExpense:
		return expenseStyle
	case model.TypeInvestment:
		return investmentStyle
	default:
		return lipgloss.NewStyle()
	}
}

// SignedAmount formats amount in code with a sign for its direction:
// income is "+$5.00", expenses "-$5.00" and investments unsigned.
// The result is unstyled.
func SignedAmount(amount float64, code currency.Code, t model.TransactionType) string {
	formatted := currency.Display(amount, code)
	switch t {
	case model.TypeIncome:
		return "+" + formatted
	case model.TypeExpense:
		return "-" + formatted
	default:
		return formatted
	}
}

// FormatAmount is SignedAmount rendered in the colour of t.
func FormatAmount(amount float64, code currency.Code, t model.TransactionType) string {
	return AmountStyle(t).Render(SignedAmount(amount, code, t))
}

// FormatGrowth renders a percentage change, green when non-negative.
func FormatGrowth(pct float64) string {
	if pct < 0 {
		return ErrorStyle.Render(formatPercent(pct))
	}
	return SuccessStyle.Render("+" + formatPercent(pct))
}

func formatPercent(pct float64) string {
	return decimal.NewFromFloat(pct).StringFixed(1) + "%"
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	boxContent := lipgloss.JoinVertical(
		lipgloss.Left,
		boxTitle,
		content,
	)

	return BoxStyle.Render(boxContent)
}

// RenderKeyValues renders aligned "label  value" rows.
func RenderKeyValues(rows [][2]string) string {
	width := 0
	for _, row := range rows {
		if w := lipgloss.Width(row[0]); w > width {
			width = w
		}
	}

	label := SubtleStyle.Width(width + 2)
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label.Render(row[0]), row[1]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
