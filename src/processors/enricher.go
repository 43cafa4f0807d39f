package processors

import (
	"fmt"
	"strings"

	"github.com/username/moneydash/backend/src/models"
)

// Enricher derives the period keys, bank-account identity and
// transaction direction for loaded transactions. Pure: inputs are
// already validated by the loader, so there is no failure path.
type Enricher struct{}

func NewEnricher() *Enricher { return &Enricher{} }

// Enrich fills the derived fields on a single transaction.
func (e *Enricher) Enrich(tx models.Transaction) models.Transaction {
	tx.BankAccount = fmt.Sprintf("%s %s %s",
		strings.ToUpper(tx.Bank), strings.ToUpper(tx.AccountType), tx.AccountLast4)

	year := tx.Date.Format("2006")
	quarter := (int(tx.Date.Month())-1)/3 + 1
	tx.PeriodYear = year
	tx.PeriodMonth = tx.Date.Format("01-2006")
	tx.PeriodQuarter = fmt.Sprintf("Q%d-%s", quarter, year)

	// Zero is explicit so adjustment rows are not mis-tagged as inflows.
	switch tx.Amount.Sign() {
	case 1:
		tx.TransactionType = models.TxnIncoming
	case -1:
		tx.TransactionType = models.TxnOutgoing
	default:
		tx.TransactionType = models.TxnZero
	}

	return tx
}

// EnrichAll enriches a working set in place order, returning the same
// slice for chaining.
func (e *Enricher) EnrichAll(txs []models.Transaction) []models.Transaction {
	for i := range txs {
		txs[i] = e.Enrich(txs[i])
	}
	return txs
}
