package model

// Category names with special meaning to the submission workflow.
const (
	CategoryStocks       = "stocks"
	CategoryFixedDeposit = "fixed-deposit"
	CategoryOther        = "other"
)

// Category is a suggested category shown when recording a transaction.
// Categories on records are free-form; these are only suggestions.
type Category struct {
	Name  string
	Label string
	Type  TransactionType
}

var suggestedCategories = []Category{
	{Name: "food", Label: "Food & Dining", Type: TypeExpense},
	{Name: "shopping", Label: "Shopping", Type: TypeExpense},
	{Name: "utilities", Label: "Utilities", Type: TypeExpense},
	{Name: "transportation", Label: "Transportation", Type: TypeExpense},
	{Name: "entertainment", Label: "Entertainment", Type: TypeExpense},
	{Name: "salary", Label: "Salary", Type: TypeIncome},
	{Name: "freelance", Label: "Freelance", Type: TypeIncome},
	{Name: "interest", Label: "Interest", Type: TypeIncome},
	{Name: "gift", Label: "Gift", Type: TypeIncome},
	{Name: CategoryStocks, Label: "Stocks", Type: TypeInvestment},
	{Name: "etf", Label: "ETF", Type: TypeInvestment},
	{Name: "crypto", Label: "Cryptocurrency", Type: TypeInvestment},
	{Name: "retirement", Label: "Retirement", Type: TypeInvestment},
	{Name: CategoryFixedDeposit, Label: "Fixed Deposit", Type: TypeInvestment},
}

// SuggestedCategories returns the suggestions for a transaction type.
func SuggestedCategories(t TransactionType) []Category {
	var out []Category
	for _, c := range suggestedCategories {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// CategoryLabel returns the display label for a category name, or the name
// itself when it is not a suggestion.
func CategoryLabel(name string) string {
	for _, c := range suggestedCategories {
		if c.Name == name {
			return c.Label
		}
	}
	return name
}
