package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/moneydash/backend/src/logger"
	"github.com/username/moneydash/backend/src/models"
	"github.com/username/moneydash/backend/src/parsers"
	"github.com/username/moneydash/backend/src/processors"
	"github.com/username/moneydash/backend/src/store"
	"github.com/username/moneydash/backend/src/utils"
	"golang.org/x/sync/errgroup"
)

const (
	ckLatestRunSummary = "res_latest_run_summary"
	ckLedgerRows       = "res_ledger_rows"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// PipelineConfig carries the orchestrator settings resolved from app
// config at wiring time.
type PipelineConfig struct {
	ImportDir           string
	LedgerPath          string
	FuzzyMatchThreshold float64
	LoaderWorkers       int
}

type pipelineServiceImpl struct {
	cfg          PipelineConfig
	mappingStore *store.MappingStore
	enricher     *processors.Enricher
	deduplicator *processors.Deduplicator
	resultCache  *cache.Cache
}

func NewPipelineService(cfg PipelineConfig, mappingStore *store.MappingStore, resultCache *cache.Cache) PipelineService {
	return &pipelineServiceImpl{
		cfg:          cfg,
		mappingStore: mappingStore,
		enricher:     processors.NewEnricher(),
		deduplicator: processors.NewDeduplicator(),
		resultCache:  resultCache,
	}
}

// Run executes one full pipeline pass: discover, order, load on a
// bounded pool, join, enrich, deduplicate, classify against one store
// snapshot, and atomically write the consolidated ledger. Malformed
// files and rows are reported in the summary, never fatal; only a
// ledger write failure aborts the run.
func (s *pipelineServiceImpl) Run(ctx context.Context) (*models.RunSummary, error) {
	startTime := time.Now()
	summary := &models.RunSummary{
		RunID:      uuid.NewString(),
		StartedAt:  startTime,
		LedgerPath: s.cfg.LedgerPath,
	}
	logger.L.Info("Pipeline run START", "runID", summary.RunID, "importDir", s.cfg.ImportDir)

	rawFiles := s.discoverFiles(summary)
	summary.FilesDiscovered = len(rawFiles) + len(summary.MalformedFilenames)

	results, err := s.loadFiles(ctx, rawFiles)
	if err != nil {
		return nil, err
	}

	// Join barrier has passed: merge in the deterministic file order,
	// then run the whole-set stages.
	var working []models.Transaction
	for i, raw := range rawFiles {
		if loadErr := results[i].err; loadErr != nil {
			logger.L.Warn("Skipping file", "file", raw.FileName, "error", loadErr)
			summary.SchemaErrors = append(summary.SchemaErrors, models.FileIssue{
				FileName: raw.FileName,
				Reason:   loadErr.Error(),
			})
			continue
		}
		res := results[i].result
		summary.FilesLoaded++
		summary.RowsSkipped += res.RowsSkipped
		summary.RowIssues = append(summary.RowIssues, res.RowIssues...)
		working = append(working, res.Transactions...)
	}

	working = s.enricher.EnrichAll(working)
	working = s.deduplicator.MarkDuplicates(working)

	// One consistent snapshot per run; per-record classification never
	// re-reads the store.
	snapshot, err := s.mappingStore.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("error loading mapping store snapshot: %w", err)
	}
	classifier := processors.NewClassifier(snapshot.Rules, s.cfg.FuzzyMatchThreshold)
	working = classifier.ClassifyAll(working)

	summary.TotalTransactions = len(working)
	for i := range working {
		if working[i].IsMapped() {
			summary.MappedTransactions++
		} else {
			summary.UnmappedTransactions++
		}
		if working[i].IsDuplicate {
			summary.DuplicateTransactions++
		}
	}

	if err := WriteLedgerAtomic(s.cfg.LedgerPath, working); err != nil {
		logger.L.Error("Ledger write failed; previous ledger left untouched", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrLedgerWrite, err)
	}

	summary.FinishedAt = time.Now()
	s.resultCache.Set(ckLatestRunSummary, summary, cache.NoExpiration)
	s.resultCache.Set(ckLedgerRows, working, DefaultCacheExpiration)

	logger.L.Info("Pipeline run END",
		"runID", summary.RunID,
		"files", summary.FilesLoaded,
		"transactions", summary.TotalTransactions,
		"mapped", summary.MappedTransactions,
		"duplicates", summary.DuplicateTransactions,
		"duration", time.Since(startTime))
	return summary, nil
}

// discoverFiles scans the import directory, decodes filenames, and
// returns the matching files in the deterministic processing order:
// decoded period start, then filename. Directory listing order is never
// relied on.
func (s *pipelineServiceImpl) discoverFiles(summary *models.RunSummary) []models.RawFile {
	entries, err := os.ReadDir(s.cfg.ImportDir)
	if err != nil {
		logger.L.Warn("Import directory unreadable; treating as empty", "dir", s.cfg.ImportDir, "error", err)
		return nil
	}

	var rawFiles []models.RawFile
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		raw, err := parsers.DecodeFilename(entry.Name())
		if err != nil {
			summary.MalformedFilenames = append(summary.MalformedFilenames, models.FileIssue{
				FileName: entry.Name(),
				Reason:   err.Error(),
			})
			continue
		}
		raw.Path = filepath.Join(s.cfg.ImportDir, entry.Name())
		rawFiles = append(rawFiles, raw)
	}

	sort.SliceStable(rawFiles, func(i, j int) bool {
		if !rawFiles[i].PeriodStart.Equal(rawFiles[j].PeriodStart) {
			return rawFiles[i].PeriodStart.Before(rawFiles[j].PeriodStart)
		}
		return rawFiles[i].FileName < rawFiles[j].FileName
	})
	return rawFiles
}

type loadOutcome struct {
	result *parsers.LoadResult
	err    error
}

// loadFiles parses every file on a bounded worker pool. Results land in
// the slot matching the file's position so the merge stays in the
// deterministic file order regardless of completion order.
func (s *pipelineServiceImpl) loadFiles(ctx context.Context, rawFiles []models.RawFile) ([]loadOutcome, error) {
	results := make([]loadOutcome, len(rawFiles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.LoaderWorkers)
	for i := range rawFiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := s.loadFile(rawFiles[i])
			results[i] = loadOutcome{result: res, err: err}
			return nil // per-file failures are reported, not fatal
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *pipelineServiceImpl) loadFile(raw models.RawFile) (*parsers.LoadResult, error) {
	file, err := os.Open(raw.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// The extension is never trusted; banks save workbooks as .csv.
	format, err := parsers.DetectFormat(file)
	if err != nil {
		return nil, err
	}
	parser, err := parsers.GetParser(format)
	if err != nil {
		return nil, err
	}
	return parser.Parse(file, raw)
}

func (s *pipelineServiceImpl) LatestSummary() (*models.RunSummary, bool) {
	if v, found := s.resultCache.Get(ckLatestRunSummary); found {
		return v.(*models.RunSummary), true
	}
	return nil, false
}

func (s *pipelineServiceImpl) Ledger(ctx context.Context) ([]models.Transaction, error) {
	if v, found := s.resultCache.Get(ckLedgerRows); found {
		return v.([]models.Transaction), nil
	}
	if _, err := s.Run(ctx); err != nil {
		return nil, err
	}
	v, found := s.resultCache.Get(ckLedgerRows)
	if !found {
		return nil, fmt.Errorf("ledger rows missing after pipeline run")
	}
	return v.([]models.Transaction), nil
}

// UnmappedSummaries rolls up unmapped transactions by description with
// occurrence counts, totals and date range, most frequent first. This
// is the view the mapping UI works from.
func (s *pipelineServiceImpl) UnmappedSummaries(ctx context.Context) ([]models.UnmappedSummary, error) {
	ledger, err := s.Ledger(ctx)
	if err != nil {
		return nil, err
	}

	byDescription := make(map[string]*models.UnmappedSummary)
	var order []string
	for i := range ledger {
		tx := &ledger[i]
		if tx.IsMapped() {
			continue
		}
		entry, ok := byDescription[tx.Description]
		if !ok {
			entry = &models.UnmappedSummary{
				Description: tx.Description,
				TotalAmount: decimal.Zero,
				FirstDate:   tx.Date,
				LastDate:    tx.Date,
				BankAccount: tx.BankAccount,
			}
			byDescription[tx.Description] = entry
			order = append(order, tx.Description)
		}
		entry.TransactionCount++
		entry.TotalAmount = entry.TotalAmount.Add(tx.Amount)
		if tx.Date.Before(entry.FirstDate) {
			entry.FirstDate = tx.Date
		}
		if tx.Date.After(entry.LastDate) {
			entry.LastDate = tx.Date
		}
	}

	summaries := make([]models.UnmappedSummary, 0, len(order))
	for _, desc := range order {
		summaries = append(summaries, *byDescription[desc])
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].TransactionCount != summaries[j].TransactionCount {
			return summaries[i].TransactionCount > summaries[j].TransactionCount
		}
		return summaries[i].Description < summaries[j].Description
	})
	return summaries, nil
}

// QuickMap classifies every unmapped transaction whose normalized
// description contains pattern, inserting an exact rule per distinct
// description so future runs hit the exact tier directly. This is the
// one path by which the pipeline mutates the Mapping Store.
func (s *pipelineServiceImpl) QuickMap(ctx context.Context, pattern string, target models.Classification) (*QuickMapResult, error) {
	normPattern := utils.NormalizeDescription(pattern)
	if normPattern == "" {
		return nil, fmt.Errorf("quick-mapping pattern must not be empty")
	}

	ledger, err := s.Ledger(ctx)
	if err != nil {
		return nil, err
	}

	matched := 0
	seen := make(map[string]bool)
	var keys []string
	for i := range ledger {
		tx := &ledger[i]
		if tx.IsMapped() {
			continue
		}
		desc := utils.NormalizeDescription(tx.Description)
		if !strings.Contains(desc, normPattern) {
			continue
		}
		matched++
		if !seen[desc] {
			seen[desc] = true
			keys = append(keys, desc)
		}
	}

	inserted := 0
	for _, key := range keys {
		if _, err := s.mappingStore.UpsertRule(key, target); err != nil {
			return nil, fmt.Errorf("error inserting quick-mapping rule for %q: %w", key, err)
		}
		inserted++
	}

	// Reclassify so the response reflects the new rules.
	s.InvalidateCache()
	summary, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}

	logger.L.Info("Quick-mapping applied",
		"pattern", normPattern, "transactionsMatched", matched, "rulesInserted", inserted)
	return &QuickMapResult{
		Pattern:             normPattern,
		TransactionsMatched: matched,
		RulesInserted:       inserted,
		Summary:             summary,
	}, nil
}

func (s *pipelineServiceImpl) InvalidateCache() {
	s.resultCache.Delete(ckLatestRunSummary)
	s.resultCache.Delete(ckLedgerRows)
}
