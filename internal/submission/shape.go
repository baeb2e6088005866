// Package submission turns one filled-in transaction form into exactly one
// stored record.
package submission

import (
	"context"
	"strings"

	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/service"
)

// Shape is the kind of record a form produces.
type Shape int

// Record shapes.
const (
	ShapePlain Shape = iota
	ShapeStock
	ShapeFixedDeposit
)

func (s Shape) String() string {
	switch s {
	case ShapePlain:
		return "transaction"
	case ShapeStock:
		return "stock investment"
	case ShapeFixedDeposit:
		return "fixed deposit"
	default:
		return "unknown"
	}
}

// SelectShape picks the record shape for a type and category. A stock
// purchase needs both the investment type and the stocks category; the
// fixed-deposit category alone selects a fixed deposit.
func SelectShape(t model.TransactionType, category string) Shape {
	category = strings.ToLower(strings.TrimSpace(category))
	switch {
	case t == model.TypeInvestment && category == model.CategoryStocks:
		return ShapeStock
	case category == model.CategoryFixedDeposit:
		return ShapeFixedDeposit
	default:
		return ShapePlain
	}
}

// Payload is a validated record ready for the store. It is one of
// PlainPayload, StockPayload or FixedDepositPayload.
type Payload interface {
	Shape() Shape
	create(ctx context.Context, store service.RecordCreator) (string, error)
}

// PlainPayload creates a transaction.
type PlainPayload struct {
	service.NewTransaction
}

// Shape implements Payload.
func (PlainPayload) Shape() Shape { return ShapePlain }

func (p PlainPayload) create(ctx context.Context, store service.RecordCreator) (string, error) {
	txn, err := store.CreateTransaction(ctx, p.NewTransaction)
	if err != nil {
		return "", err
	}
	return txn.ID, nil
}

// StockPayload creates a stock purchase.
type StockPayload struct {
	service.NewStockInvestment
}

// Shape implements Payload.
func (StockPayload) Shape() Shape { return ShapeStock }

func (p StockPayload) create(ctx context.Context, store service.RecordCreator) (string, error) {
	stock, err := store.CreateStockInvestment(ctx, p.NewStockInvestment)
	if err != nil {
		return "", err
	}
	return stock.ID, nil
}

// FixedDepositPayload creates a fixed deposit.
type FixedDepositPayload struct {
	service.NewFixedDeposit
}

// Shape implements Payload.
func (FixedDepositPayload) Shape() Shape { return ShapeFixedDeposit }

func (p FixedDepositPayload) create(ctx context.Context, store service.RecordCreator) (string, error) {
	fd, err := store.CreateFixedDeposit(ctx, p.NewFixedDeposit)
	if err != nil {
		return "", err
	}
	return fd.ID, nil
}
