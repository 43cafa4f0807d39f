package services

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/username/moneydash/backend/src/models"
	"github.com/username/moneydash/backend/src/security/validation"
)

// ledgerColumns is the fixed column order of the consolidated ledger
// CSV, the sole interface consumed by reporting collaborators.
var ledgerColumns = []string{
	"Date", "Bank", "AccountType", "AccountLast4", "BankAccount",
	"Description", "Amount", "RunningBalance", "TransactionType",
	"PeriodYear", "PeriodMonth", "PeriodQuarter",
	"IdentityKey", "IsDuplicate",
	"MappedAccountType", "Category1", "Category2", "Category3",
	"Tags", "Payer", "Payee", "MappedDescription", "SourceFile",
}

// WriteLedgerAtomic writes the consolidated ledger to path via a temp
// file in the same directory followed by a rename, so a crash mid-write
// cannot corrupt the previous good ledger. Output is byte-deterministic
// for a given transaction set.
func WriteLedgerAtomic(path string, txs []models.Transaction) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating ledger directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("error creating ledger temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	writer := csv.NewWriter(tmp)
	if err := writer.Write(ledgerColumns); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing ledger header: %w", err)
	}
	for i := range txs {
		if err := writer.Write(ledgerRow(&txs[i])); err != nil {
			tmp.Close()
			return fmt.Errorf("error writing ledger row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("error flushing ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("error syncing ledger temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing ledger temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("error swapping ledger into place: %w", err)
	}
	return nil
}

func ledgerRow(tx *models.Transaction) []string {
	runningBalance := ""
	if tx.RunningBalance.Valid {
		runningBalance = tx.RunningBalance.Decimal.StringFixed(2)
	}
	return []string{
		tx.Date.Format("2006-01-02"),
		tx.Bank,
		tx.AccountType,
		tx.AccountLast4,
		tx.BankAccount,
		sanitizeCell(tx.Description),
		tx.Amount.StringFixed(2),
		runningBalance,
		tx.TransactionType,
		tx.PeriodYear,
		tx.PeriodMonth,
		tx.PeriodQuarter,
		tx.IdentityKey,
		strconv.FormatBool(tx.IsDuplicate),
		sanitizeCell(tx.MappedAccountType),
		sanitizeCell(tx.Category1),
		sanitizeCell(tx.Category2),
		sanitizeCell(tx.Category3),
		sanitizeCell(strings.Join(tx.Tags, ",")),
		sanitizeCell(tx.Payer),
		sanitizeCell(tx.Payee),
		sanitizeCell(tx.MappedDescription),
		tx.SourceFile,
	}
}

// sanitizeCell guards free-text cells against spreadsheet formula
// injection when the ledger is opened in Excel or Sheets.
func sanitizeCell(s string) string {
	return validation.SanitizeForFormulaInjection(s)
}
