package storage

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/service"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{name: "valid string", str: "test"},
		{name: "empty string", str: "", wantErr: true},
		{name: "whitespace only", str: "   ", wantErr: true},
		{name: "string with spaces", str: "  test  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, "param")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "param") {
				t.Errorf("validateString() error should name the parameter, got %v", err)
			}
		})
	}
}

func TestValidateNewTransaction(t *testing.T) {
	valid := func() *service.NewTransaction {
		return &service.NewTransaction{
			UserID:   "u1",
			Title:    "Rent",
			Amount:   1200,
			Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Type:     model.TypeExpense,
			Currency: "USD",
		}
	}

	tests := []struct {
		payload *service.NewTransaction
		name    string
		errMsg  string
		wantErr bool
	}{
		{name: "valid", payload: valid()},
		{name: "nil", payload: nil, wantErr: true, errMsg: "transaction"},
		{name: "negative amount allowed", payload: func() *service.NewTransaction {
			p := valid()
			p.Amount = -30
			return p
		}()},
		{name: "NaN amount", payload: func() *service.NewTransaction {
			p := valid()
			p.Amount = math.NaN()
			return p
		}(), wantErr: true, errMsg: "finite"},
		{name: "missing user", payload: func() *service.NewTransaction {
			p := valid()
			p.UserID = ""
			return p
		}(), wantErr: true, errMsg: "user ID"},
		{name: "lowercase recurrence accepted", payload: func() *service.NewTransaction {
			p := valid()
			p.Recurrence = "monthly"
			return p
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateNewTransaction(tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateNewTransaction() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("validateNewTransaction() error = %v, want it to contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestValidateNewFixedDeposit(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	payload := &service.NewFixedDeposit{
		UserID:       "u1",
		BankName:     "SBI",
		Amount:       5000,
		InterestRate: 6.5,
		StartDate:    start,
		MaturityDate: start,
		Currency:     "INR",
	}

	if err := validateNewFixedDeposit(payload); err != nil {
		t.Errorf("same-day maturity should be valid, got %v", err)
	}

	payload.InterestRate = 0
	if err := validateNewFixedDeposit(payload); err == nil {
		t.Error("zero interest rate should be rejected")
	}
}

func TestValidateUser(t *testing.T) {
	if err := validateUser(nil, "hash"); err == nil {
		t.Error("nil user should be rejected")
	}
	if err := validateUser(&model.User{Name: "A", Email: "a@b.c"}, ""); err == nil {
		t.Error("missing hash should be rejected")
	}
	if err := validateUser(&model.User{Name: "A", Email: "a@b.c", DefaultCurrency: "EUR"}, "h"); err == nil {
		t.Error("unknown currency should be rejected")
	}
	if err := validateUser(&model.User{Name: "A", Email: "a@b.c"}, "h"); err != nil {
		t.Errorf("valid user rejected: %v", err)
	}
}
