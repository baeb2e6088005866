// Package ofx reads OFX and QFX bank statements into FinFlow transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/aclindsa/ofxgo"
)

// ExternalIDPrefix marks transactions that came from an OFX file.
const ExternalIDPrefix = "ofx"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags missing their closing bracket at the end of a line.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX file parsing.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser. A nil logger uses the default logger.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: common.ComponentLogger(logger, "ofx")}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be INFO, WARN or ERROR.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file. The returned transactions carry an
// ExternalID built from the account and FITID but no UserID.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			transactions = append(transactions,
				p.convertList(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID), p.statementCurrency(stmt.CurDef))...)
		}
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			transactions = append(transactions,
				p.convertList(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID), p.statementCurrency(stmt.CurDef))...)
		}
	}

	p.logger.Info("Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

// statementCurrency maps CURDEF to a supported code, falling back to the
// default currency.
func (p *Parser) statementCurrency(curDef ofxgo.CurrSymbol) currency.Code {
	code, err := currency.Parse(curDef.String())
	if err != nil {
		p.logger.Warn("Unsupported statement currency, using default",
			"curdef", curDef.String(),
			"default", currency.Default)
		return currency.Default
	}
	return code
}

func (p *Parser) convertList(list *ofxgo.TransactionList, accountID string, code currency.Code) []model.Transaction {
	if list == nil {
		return nil
	}

	transactions := make([]model.Transaction, 0, len(list.Transactions))
	for _, ofxTx := range list.Transactions {
		transactions = append(transactions, p.convertTransaction(ofxTx, accountID, code))
	}
	return transactions
}

// convertTransaction converts an OFX transaction to our model. Credits
// become income and debits expenses.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string, code currency.Code) model.Transaction {
	amount, _ := ofxTx.TrnAmt.Float64()
	txType := model.TypeIncome
	if amount < 0 {
		amount = -amount
		txType = model.TypeExpense
	}

	tx := model.Transaction{
		ExternalID: ExternalID(accountID, string(ofxTx.FiTID)),
		Date:       model.Day(ofxTx.DtPosted.Time),
		Title:      p.extractMerchantName(ofxTx),
		Amount:     amount,
		Type:       txType,
		Currency:   code,
		Category:   categoryFor(ofxTx.TrnType.String(), txType),
	}

	var notes []string
	if memo := strings.TrimSpace(string(ofxTx.Memo)); memo != "" && memo != tx.Title {
		notes = append(notes, memo)
	}
	if ofxTx.CheckNum != "" {
		notes = append(notes, "check #"+string(ofxTx.CheckNum))
	}
	tx.Notes = strings.Join(notes, "; ")

	return tx
}

// ExternalID identifies an OFX transaction across repeated imports.
func ExternalID(accountID, fitID string) string {
	return ExternalIDPrefix + ":" + accountID + ":" + fitID
}

// categoryFor infers a category from the OFX transaction type. OFX carries
// no categories of its own.
func categoryFor(trnType string, txType model.TransactionType) string {
	switch trnType {
	case "INT", "DIV":
		return "interest"
	case "DIRECTDEP":
		if txType == model.TypeIncome {
			return "salary"
		}
	case "ATM", "CASH":
		return "cash"
	case "FEE", "SRVCHG":
		return "fees"
	}
	return model.CategoryOther
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// PAYEE is cleaner than NAME when present.
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	if name == "" {
		return "Imported transaction"
	}
	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id ofxgo.String) {
		if id != "" && !seen[string(id)] {
			seen[string(id)] = true
			accounts = append(accounts, string(id))
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(stmt.BankAcctFrom.AcctID)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(stmt.CCAcctFrom.AcctID)
		}
	}

	return accounts, nil
}
