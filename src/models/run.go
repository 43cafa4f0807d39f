package models

import "time"

// FileIssue records a file that was skipped during a run.
type FileIssue struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// RowIssue records a single source row that was skipped during a run.
type RowIssue struct {
	FileName string `json:"file_name"`
	Row      int    `json:"row"` // 1-based data row
	Reason   string `json:"reason"`
}

// RunSummary is the complete report of one pipeline run. Skips and
// per-row failures accumulate here instead of aborting the run; only a
// ledger write failure is fatal.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	FilesDiscovered int `json:"files_discovered"`
	FilesLoaded     int `json:"files_loaded"`

	MalformedFilenames []FileIssue `json:"malformed_filenames,omitempty"`
	SchemaErrors       []FileIssue `json:"schema_errors,omitempty"`
	RowsSkipped        int         `json:"rows_skipped"`
	RowIssues          []RowIssue  `json:"row_issues,omitempty"`

	TotalTransactions     int `json:"total_transactions"`
	MappedTransactions    int `json:"mapped_transactions"`
	UnmappedTransactions  int `json:"unmapped_transactions"`
	DuplicateTransactions int `json:"duplicate_transactions"`

	LedgerPath string `json:"ledger_path"`
}
