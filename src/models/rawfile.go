package models

import "time"

// Account types that may appear in an export filename.
const (
	FileAccountChecking   = "chk"
	FileAccountCreditCard = "cc"
)

// RawFile is a discovered export file plus the metadata decoded from
// its name. Immutable once decoded.
type RawFile struct {
	Path        string    `json:"path"`
	FileName    string    `json:"file_name"`
	Bank        string    `json:"bank"` // lowercase token from the filename
	AccountType string    `json:"account_type"`
	Last4       string    `json:"last4"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}
