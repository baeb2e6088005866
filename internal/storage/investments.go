package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/finflow/internal/currency"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/service"
	"github.com/google/uuid"
)

// CreateStockInvestment records a stock purchase.
func (s *SQLiteStorage) CreateStockInvestment(ctx context.Context, payload service.NewStockInvestment) (*model.StockInvestment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateNewStock(&payload); err != nil {
		return nil, err
	}

	stock := model.StockInvestment{
		ID:            uuid.NewString(),
		UserID:        payload.UserID,
		Name:          payload.Name,
		Ticker:        payload.Ticker,
		Shares:        payload.Shares,
		PurchasePrice: payload.PurchasePrice,
		CurrentPrice:  payload.CurrentPrice,
		Currency:      payload.Currency,
		PurchaseDate:  model.Day(payload.PurchaseDate),
		CreatedAt:     s.now(),
	}

	var current sql.NullFloat64
	if stock.CurrentPrice != nil {
		current = sql.NullFloat64{Float64: *stock.CurrentPrice, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_investments
		(id, user_id, name, ticker, shares, purchase_price, current_price, currency, purchase_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stock.ID, stock.UserID, stock.Name, stock.Ticker, stock.Shares, stock.PurchasePrice,
		current, string(stock.Currency), stock.PurchaseDate.Format(model.DateLayout), stock.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert stock investment: %w", translateError(err))
	}

	return &stock, nil
}

// GetStockInvestments returns the user's stock purchases, newest first.
func (s *SQLiteStorage) GetStockInvestments(ctx context.Context, userID string) ([]model.StockInvestment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, ticker, shares, purchase_price, current_price,
			currency, purchase_date, created_at
		FROM stock_investments
		WHERE user_id = ?
		ORDER BY purchase_date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock investments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stocks []model.StockInvestment
	for rows.Next() {
		var (
			stock   model.StockInvestment
			current sql.NullFloat64
			code    string
			date    string
		)
		if err := rows.Scan(&stock.ID, &stock.UserID, &stock.Name, &stock.Ticker, &stock.Shares,
			&stock.PurchasePrice, &current, &code, &date, &stock.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock investment: %w", err)
		}

		if current.Valid {
			price := current.Float64
			stock.CurrentPrice = &price
		}
		stock.Currency = currency.Code(code)
		if stock.PurchaseDate, err = model.ParseDate(date); err != nil {
			return nil, fmt.Errorf("stock investment %s: %w", stock.ID, err)
		}
		stocks = append(stocks, stock)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stock investments: %w", err)
	}
	return stocks, nil
}

// CreateFixedDeposit records a fixed deposit.
func (s *SQLiteStorage) CreateFixedDeposit(ctx context.Context, payload service.NewFixedDeposit) (*model.FixedDeposit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateNewFixedDeposit(&payload); err != nil {
		return nil, err
	}

	fd := model.FixedDeposit{
		ID:           uuid.NewString(),
		UserID:       payload.UserID,
		BankName:     payload.BankName,
		Amount:       payload.Amount,
		InterestRate: payload.InterestRate,
		StartDate:    model.Day(payload.StartDate),
		MaturityDate: model.Day(payload.MaturityDate),
		Currency:     payload.Currency,
		CreatedAt:    s.now(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fixed_deposit_investments
		(id, user_id, bank_name, amount, interest_rate, start_date, maturity_date, currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fd.ID, fd.UserID, fd.BankName, fd.Amount, fd.InterestRate,
		fd.StartDate.Format(model.DateLayout), fd.MaturityDate.Format(model.DateLayout),
		string(fd.Currency), fd.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert fixed deposit: %w", translateError(err))
	}

	return &fd, nil
}

// GetFixedDepositInvestments returns the user's fixed deposits, newest first.
func (s *SQLiteStorage) GetFixedDepositInvestments(ctx context.Context, userID string) ([]model.FixedDeposit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, bank_name, amount, interest_rate, start_date, maturity_date,
			currency, created_at
		FROM fixed_deposit_investments
		WHERE user_id = ?
		ORDER BY start_date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixed deposits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var deposits []model.FixedDeposit
	for rows.Next() {
		var (
			fd            model.FixedDeposit
			code          string
			start, mature string
		)
		if err := rows.Scan(&fd.ID, &fd.UserID, &fd.BankName, &fd.Amount, &fd.InterestRate,
			&start, &mature, &code, &fd.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fixed deposit: %w", err)
		}

		fd.Currency = currency.Code(code)
		if fd.StartDate, err = model.ParseDate(start); err != nil {
			return nil, fmt.Errorf("fixed deposit %s: %w", fd.ID, err)
		}
		if fd.MaturityDate, err = model.ParseDate(mature); err != nil {
			return nil, fmt.Errorf("fixed deposit %s: %w", fd.ID, err)
		}
		deposits = append(deposits, fd)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fixed deposits: %w", err)
	}
	return deposits, nil
}
