package processors

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/username/moneydash/backend/src/models"
)

func TestEnricherDerivedFields(t *testing.T) {
	e := NewEnricher()

	tx := e.Enrich(models.Transaction{
		Date:         time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
		Amount:       decimal.RequireFromString("-15.49"),
		Bank:         "boa",
		AccountType:  "chk",
		AccountLast4: "7259",
	})

	assert.Equal(t, "BOA CHK 7259", tx.BankAccount)
	assert.Equal(t, "2025", tx.PeriodYear)
	assert.Equal(t, "02-2025", tx.PeriodMonth)
	assert.Equal(t, "Q1-2025", tx.PeriodQuarter)
	assert.Equal(t, models.TxnOutgoing, tx.TransactionType)
}

func TestEnricherQuarterBoundaries(t *testing.T) {
	e := NewEnricher()
	tests := []struct {
		month time.Month
		want  string
	}{
		{time.January, "Q1-2025"},
		{time.March, "Q1-2025"},
		{time.April, "Q2-2025"},
		{time.June, "Q2-2025"},
		{time.July, "Q3-2025"},
		{time.September, "Q3-2025"},
		{time.October, "Q4-2025"},
		{time.December, "Q4-2025"},
	}
	for _, tt := range tests {
		tx := e.Enrich(models.Transaction{Date: time.Date(2025, tt.month, 15, 0, 0, 0, 0, time.UTC)})
		assert.Equal(t, tt.want, tx.PeriodQuarter, "month %s", tt.month)
	}
}

func TestEnricherTransactionType(t *testing.T) {
	e := NewEnricher()
	tests := []struct {
		amount string
		want   string
	}{
		{"2500.00", models.TxnIncoming},
		{"-15.49", models.TxnOutgoing},
		{"0.00", models.TxnZero},
	}
	for _, tt := range tests {
		tx := e.Enrich(models.Transaction{
			Date:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Amount: decimal.RequireFromString(tt.amount),
		})
		assert.Equal(t, tt.want, tx.TransactionType, "amount %s", tt.amount)
	}
}
