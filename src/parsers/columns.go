package parsers

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/moneydash/backend/src/models"
	"github.com/username/moneydash/backend/src/security/validation"
	"github.com/username/moneydash/backend/src/utils"
)

// columnMap holds the resolved index of each known column, -1 when the
// column is absent from the file.
type columnMap struct {
	date           int
	amount         int
	description    int
	runningBalance int
}

// mapColumns resolves header names to column indexes. Matching is
// case-insensitive and tolerant of bank naming variants: "Date",
// "Date Posted", "Amount ($)", "Running Bal.". Returns the canonical
// names of any missing required columns.
func mapColumns(headers []string) (columnMap, []string) {
	cols := columnMap{date: -1, amount: -1, description: -1, runningBalance: -1}
	for i, h := range headers {
		lh := strings.ToLower(strings.TrimSpace(h))
		switch {
		case cols.date == -1 && strings.HasPrefix(lh, "date"):
			cols.date = i
		case cols.runningBalance == -1 && strings.Contains(lh, "running") && strings.Contains(lh, "bal"):
			cols.runningBalance = i
		case cols.amount == -1 && strings.Contains(lh, "amount"):
			cols.amount = i
		case cols.description == -1 && strings.Contains(lh, "description"):
			cols.description = i
		}
	}

	var missing []string
	if cols.date == -1 {
		missing = append(missing, "Date")
	}
	if cols.amount == -1 {
		missing = append(missing, "Amount")
	}
	if cols.description == -1 {
		missing = append(missing, "Description")
	}
	return cols, missing
}

// isHeaderRow reports whether a row looks like the column header line.
// Bank workbooks carry summary rows above the table, so the header is
// located by scanning for a row with both Date and Amount.
func isHeaderRow(cells []string) bool {
	hasDate, hasAmount := false, false
	for _, c := range cells {
		lc := strings.ToLower(strings.TrimSpace(c))
		if strings.HasPrefix(lc, "date") {
			hasDate = true
		}
		if strings.Contains(lc, "amount") {
			hasAmount = true
		}
	}
	return hasDate && hasAmount
}

func rowEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// parseAmount parses a signed decimal amount, stripping the currency
// noise bank exports carry ("$1,234.56").
func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("malformed amount %q", s)
	}
	return d, nil
}

// buildTransaction coerces one data row into a Transaction. A row-level
// failure (bad date, bad amount) returns an error; the caller skips the
// row and records the reason, never failing the file.
func buildTransaction(cols columnMap, record []string, raw models.RawFile, rowNum int) (models.Transaction, error) {
	date, err := utils.ParseTransactionDate(cell(record, cols.date))
	if err != nil {
		return models.Transaction{}, err
	}

	amount, err := parseAmount(cell(record, cols.amount))
	if err != nil {
		return models.Transaction{}, err
	}

	description := strings.TrimSpace(validation.StripUnprintable(cell(record, cols.description)))

	tx := models.Transaction{
		Date:         date,
		Amount:       amount,
		Description:  description,
		Bank:         raw.Bank,
		AccountType:  raw.AccountType,
		AccountLast4: raw.Last4,
		SourceFile:   raw.FileName,
		SourceRow:    rowNum,
	}

	// Running balance is optional and best-effort: a malformed value
	// leaves the field null rather than skipping the row.
	if cols.runningBalance != -1 {
		if bal, err := parseAmount(cell(record, cols.runningBalance)); err == nil {
			tx.RunningBalance = decimal.NullDecimal{Decimal: bal, Valid: true}
		}
	}

	return tx, nil
}
