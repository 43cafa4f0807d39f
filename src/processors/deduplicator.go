package processors

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/username/moneydash/backend/src/models"
	"github.com/username/moneydash/backend/src/utils"
)

// Deduplicator assigns each transaction a deterministic identity key
// and flags later occurrences of the same identity. Duplicates are
// retained so raw totals stay auditable; reporting filters on
// IsDuplicate=false.
type Deduplicator struct{}

func NewDeduplicator() *Deduplicator { return &Deduplicator{} }

// IdentityKey is the composite fingerprint of (date, amount, normalized
// description, bank, last4), hashed so it is fixed-width and join-safe
// in the ledger output.
func (d *Deduplicator) IdentityKey(tx models.Transaction) string {
	base := strings.Join([]string{
		tx.Date.Format("2006-01-02"),
		tx.Amount.StringFixed(2),
		utils.NormalizeDescription(tx.Description),
		tx.Bank,
		tx.AccountLast4,
	}, "|")
	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:])
}

// MarkDuplicates assigns identity keys across the full working set and
// flags every record after the first in each identity group. The input
// order is the deterministic pipeline order (files by period start then
// name, rows in source order), so "first occurrence" is stable across
// runs: recomputing on an unchanged set yields an identical assignment.
func (d *Deduplicator) MarkDuplicates(txs []models.Transaction) []models.Transaction {
	seen := make(map[string]bool, len(txs))
	for i := range txs {
		key := d.IdentityKey(txs[i])
		txs[i].IdentityKey = key
		txs[i].IsDuplicate = seen[key]
		seen[key] = true
	}
	return txs
}
