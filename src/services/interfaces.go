package services

import (
	"context"
	"errors"

	"github.com/username/moneydash/backend/src/models"
)

// ErrLedgerWrite marks a failure to durably write the consolidated
// ledger. It is the only fatal outcome of a pipeline run; the previous
// ledger is left untouched because writes are atomic-swap.
var ErrLedgerWrite = errors.New("ledger write failed")

// QuickMapResult reports a Quick-Mapping bulk apply.
type QuickMapResult struct {
	Pattern             string             `json:"pattern"`
	TransactionsMatched int                `json:"transactions_matched"`
	RulesInserted       int                `json:"rules_inserted"`
	Summary             *models.RunSummary `json:"summary"`
}

// PipelineService coordinates the ingestion pipeline over the import
// directory and serves its cached outputs.
type PipelineService interface {
	// Run executes one full pipeline pass and returns its summary.
	Run(ctx context.Context) (*models.RunSummary, error)
	// LatestSummary returns the cached summary of the most recent run.
	LatestSummary() (*models.RunSummary, bool)
	// Ledger returns the consolidated ledger rows, running the
	// pipeline first if no cached result exists.
	Ledger(ctx context.Context) ([]models.Transaction, error)
	// UnmappedSummaries returns the unmapped-transactions rollup for
	// the mapping UI.
	UnmappedSummaries(ctx context.Context) ([]models.UnmappedSummary, error)
	// QuickMap bulk-applies a classification to every unmapped
	// transaction containing pattern, inserts exact rules for their
	// descriptions, and reruns the pipeline.
	QuickMap(ctx context.Context, pattern string, target models.Classification) (*QuickMapResult, error)
	// InvalidateCache drops cached results so the next read recomputes.
	// Mapping writes call this.
	InvalidateCache()
}
