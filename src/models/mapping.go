package models

import "time"

// Names of the reference lists that drive the mapping UI dropdowns.
// The classification engine is not constrained by list membership.
const (
	ListAccountTypes = "account_types"
	ListCategories   = "categories"
	ListTags         = "tags"
	ListPayers       = "payers"
	ListPayees       = "payees"
)

// MappingRule is a persisted association from a normalized description
// key to a classification tuple. At most one rule per key; last write
// wins. ID is the insertion rowid and doubles as the tie-break order
// for the partial and fuzzy matching tiers.
type MappingRule struct {
	ID  int64  `json:"id"`
	Key string `json:"key"` // normalized description
	Classification
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
