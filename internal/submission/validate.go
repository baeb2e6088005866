package submission

import (
	"strings"
	"time"

	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/service"
)

// fields are the parts of the form every shape needs.
type fields struct {
	userID   string
	title    string
	category string
	notes    string
	typ      model.TransactionType
	currency currency.Code
	amount   float64
}

// Validate checks the form for user and returns the payload of the selected
// shape. now supplies the date for forms that leave it blank.
func Validate(form Form, user *model.User, now time.Time) (Payload, error) {
	base, err := validateFields(form, user)
	if err != nil {
		return nil, err
	}

	switch SelectShape(base.typ, base.category) {
	case ShapeStock:
		return validateStock(form, base)
	case ShapeFixedDeposit:
		return validateFixedDeposit(form, base, now)
	default:
		return validatePlain(form, base, now)
	}
}

func validateFields(form Form, user *model.User) (fields, error) {
	var (
		f   fields
		err error
	)
	f.userID = user.ID

	if f.title, err = required(FieldTitle, form.Title); err != nil {
		return fields{}, err
	}
	if f.amount, err = parseNumber(FieldAmount, form.Amount); err != nil {
		return fields{}, err
	}

	f.typ = model.TypeExpense
	if strings.TrimSpace(form.Type) != "" {
		if f.typ, err = model.ParseTransactionType(form.Type); err != nil {
			return fields{}, fieldErr(FieldType, "must be one of expense, income or investment")
		}
	}

	f.currency = user.Currency()
	if strings.TrimSpace(form.Currency) != "" {
		if f.currency, err = currency.Parse(form.Currency); err != nil {
			return fields{}, fieldErr(FieldCurrency, "%v", err)
		}
	}

	f.category = strings.ToLower(strings.TrimSpace(form.Category))
	f.notes = strings.TrimSpace(form.Notes)
	return f, nil
}

func validatePlain(form Form, f fields, now time.Time) (Payload, error) {
	date, err := parseDateOr(FieldDate, form.Date, now)
	if err != nil {
		return nil, err
	}
	if f.category == "" {
		f.category = model.CategoryOther
	}

	payload := service.NewTransaction{
		UserID:   f.userID,
		Title:    f.title,
		Amount:   f.amount,
		Date:     date,
		Type:     f.typ,
		Category: f.category,
		Currency: f.currency,
		Notes:    f.notes,
	}

	if form.IsRecurring {
		recurrence, err := model.ParseRecurrence(form.Recurrence)
		if err != nil || recurrence == model.RecurrenceNone {
			return nil, fieldErr(FieldRecurrence, "recurring transactions need a schedule such as Monthly")
		}
		payload.IsRecurring = true
		payload.Recurrence = recurrence
	}

	return PlainPayload{payload}, nil
}

func validateStock(form Form, f fields) (Payload, error) {
	ticker, err := required(FieldTicker, form.Ticker)
	if err != nil {
		return nil, err
	}
	shares, err := parsePositive(FieldShares, form.Shares)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(FieldDate, form.Date)
	if err != nil {
		return nil, err
	}
	if f.amount <= 0 {
		return nil, fieldErr(FieldAmount, "purchase price must be greater than zero")
	}

	payload := service.NewStockInvestment{
		UserID:        f.userID,
		Name:          f.title,
		Ticker:        strings.ToUpper(ticker),
		Shares:        shares,
		PurchasePrice: f.amount,
		Currency:      f.currency,
		PurchaseDate:  date,
	}

	if strings.TrimSpace(form.CurrentPrice) != "" {
		price, err := parseNumber(FieldCurrentPrice, form.CurrentPrice)
		if err != nil {
			return nil, err
		}
		if price < 0 {
			return nil, fieldErr(FieldCurrentPrice, "must not be negative")
		}
		payload.CurrentPrice = &price
	}

	return StockPayload{payload}, nil
}

func validateFixedDeposit(form Form, f fields, now time.Time) (Payload, error) {
	bank, err := required(FieldBankName, form.BankName)
	if err != nil {
		return nil, err
	}
	rate, err := parsePositive(FieldInterestRate, form.InterestRate)
	if err != nil {
		return nil, err
	}
	maturity, err := parseDate(FieldMaturityDate, form.MaturityDate)
	if err != nil {
		return nil, err
	}
	start, err := parseDateOr(FieldDate, form.Date, now)
	if err != nil {
		return nil, err
	}
	if maturity.Before(start) {
		return nil, fieldErr(FieldMaturityDate, "%s is before the start date %s",
			maturity.Format(model.DateLayout), start.Format(model.DateLayout))
	}
	if f.amount <= 0 {
		return nil, fieldErr(FieldAmount, "deposit amount must be greater than zero")
	}

	return FixedDepositPayload{service.NewFixedDeposit{
		UserID:       f.userID,
		BankName:     bank,
		Amount:       f.amount,
		InterestRate: rate,
		StartDate:    start,
		MaturityDate: maturity,
		Currency:     f.currency,
	}}, nil
}
