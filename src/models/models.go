package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction direction, derived from the amount sign. Zero-amount
// adjustment rows get their own value instead of being lumped in with
// inflows.
const (
	TxnIncoming = "Incoming"
	TxnOutgoing = "Outgoing"
	TxnZero     = "Zero"
)

// Transaction is the canonical unit of ledger data. A row is created by
// the record loader, enriched and deduplicated once per pipeline run,
// and reclassified on every run.
type Transaction struct {
	// Populated by the loader from the source row.
	Date           time.Time           `json:"date"`
	Amount         decimal.Decimal     `json:"amount"`
	Description    string              `json:"description"`
	RunningBalance decimal.NullDecimal `json:"running_balance"`

	// Account identity, carried over from the decoded filename.
	Bank         string `json:"bank"`
	AccountType  string `json:"account_type"` // chk / cc
	AccountLast4 string `json:"account_last4"`

	// Populated by the enricher.
	BankAccount     string `json:"bank_account"` // e.g. "BOA CHK 7259"
	TransactionType string `json:"transaction_type"`
	PeriodYear      string `json:"period_year"`    // "2025"
	PeriodMonth     string `json:"period_month"`   // "01-2025"
	PeriodQuarter   string `json:"period_quarter"` // "Q1-2025"

	// Populated by the deduplicator.
	IdentityKey string `json:"identity_key"`
	IsDuplicate bool   `json:"is_duplicate"`

	// Populated by the classification engine.
	Classification

	// Provenance for the run summary and deterministic ordering.
	SourceFile string `json:"source_file"`
	SourceRow  int    `json:"source_row"` // 1-based data row within the source file
}

// Classification carries the mapping fields attached by the
// classification engine. The account type here is the income/expense
// taxonomy, a different namespace from RawFile.AccountType.
type Classification struct {
	MappedAccountType string   `json:"mapped_account_type"`
	Category1         string   `json:"category1"`
	Category2         string   `json:"category2"`
	Category3         string   `json:"category3"`
	Tags              []string `json:"tags"`
	Payer             string   `json:"payer"`
	Payee             string   `json:"payee"`
	MappedDescription string   `json:"mapped_description"`
}

// IsMapped reports whether any tier produced a classification.
// Unmapped transactions have an empty MappedDescription.
func (c Classification) IsMapped() bool {
	return c.MappedDescription != ""
}

// UnmappedSummary is one row of the unmapped-transactions rollup served
// to the mapping UI: each distinct unmapped description with how often
// and where it occurs.
type UnmappedSummary struct {
	Description      string          `json:"description"`
	TransactionCount int             `json:"transaction_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	FirstDate        time.Time       `json:"first_date"`
	LastDate         time.Time       `json:"last_date"`
	BankAccount      string          `json:"bank_account"`
}
