package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/service"
	"github.com/google/uuid"
)

// DefaultRecentLimit is used when GetRecentTransactions is given no limit.
const DefaultRecentLimit = 5

const transactionColumns = `id, user_id, title, amount, date, type, category, currency,
	is_recurring, recurrence, notes, external_id, created_at`

// CreateTransaction inserts a plain transaction and returns the stored record.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, payload service.NewTransaction) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateNewTransaction(&payload); err != nil {
		return nil, err
	}

	txn := s.newTransactionRecord(payload)
	if _, err := s.insertTransaction(ctx, s.db, &txn, false); err != nil {
		return nil, err
	}
	return &txn, nil
}

// ImportTransaction inserts an imported transaction unless one with the same
// external id already exists for the user.
func (s *SQLiteStorage) ImportTransaction(ctx context.Context, payload service.NewTransaction) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(payload.ExternalID, "externalID"); err != nil {
		return false, err
	}
	if err := validateNewTransaction(&payload); err != nil {
		return false, err
	}

	txn := s.newTransactionRecord(payload)
	affected, err := s.insertTransaction(ctx, s.db, &txn, true)
	if err != nil {
		return false, fmt.Errorf("import %s: %w", payload.ExternalID, err)
	}
	return affected == 1, nil
}

func (s *SQLiteStorage) newTransactionRecord(payload service.NewTransaction) model.Transaction {
	recurrence := payload.Recurrence
	if recurrence == "" {
		recurrence = model.RecurrenceNone
	}

	return model.Transaction{
		ID:          uuid.NewString(),
		UserID:      payload.UserID,
		Title:       payload.Title,
		Amount:      payload.Amount,
		Date:        model.Day(payload.Date),
		Type:        payload.Type,
		Category:    payload.Category,
		Currency:    payload.Currency,
		IsRecurring: payload.IsRecurring,
		Recurrence:  recurrence,
		Notes:       payload.Notes,
		ExternalID:  payload.ExternalID,
		CreatedAt:   s.now(),
	}
}

func transactionArgs(txn *model.Transaction) []any {
	return []any{
		txn.ID,
		txn.UserID,
		txn.Title,
		txn.Amount,
		txn.DateString(),
		string(txn.Type),
		txn.Category,
		string(txn.Currency),
		txn.IsRecurring,
		string(txn.Recurrence),
		nullString(txn.Notes),
		nullString(txn.ExternalID),
		txn.CreatedAt,
	}
}

func (s *SQLiteStorage) insertTransaction(ctx context.Context, q queryable, txn *model.Transaction, ignoreDuplicates bool) (int64, error) {
	verb := "INSERT"
	if ignoreDuplicates {
		verb = "INSERT OR IGNORE"
	}

	res, err := q.ExecContext(ctx, verb+` INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		transactionArgs(txn)...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", translateError(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read insert result: %w", err)
	}
	return affected, nil
}

// GetUserTransactions returns every transaction of the user, newest first.
func (s *SQLiteStorage) GetUserTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	return s.queryTransactions(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC`, userID)
}

// GetRecentTransactions returns the user's newest transactions, at most limit.
func (s *SQLiteStorage) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	return s.queryTransactions(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC
		LIMIT ?`, userID, limit)
}

// DeleteTransaction removes one of the user's transactions.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, q queryable, query string, args ...any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

func scanTransaction(row scanner) (model.Transaction, error) {
	var (
		txn        model.Transaction
		date       string
		txnType    string
		code       string
		recurrence sql.NullString
		notes      sql.NullString
		externalID sql.NullString
	)

	err := row.Scan(
		&txn.ID,
		&txn.UserID,
		&txn.Title,
		&txn.Amount,
		&date,
		&txnType,
		&txn.Category,
		&code,
		&txn.IsRecurring,
		&recurrence,
		&notes,
		&externalID,
		&txn.CreatedAt,
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.Date, err = model.ParseDate(date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", txn.ID, err)
	}
	txn.Type = model.TransactionType(txnType)
	txn.Currency = currency.Code(code)
	txn.Recurrence = model.RecurrenceNone
	if recurrence.Valid {
		txn.Recurrence = model.Recurrence(recurrence.String)
	}
	txn.Notes = notes.String
	txn.ExternalID = externalID.String

	return txn, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
