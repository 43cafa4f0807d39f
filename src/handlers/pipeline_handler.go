package handlers

import (
	"errors"
	"net/http"

	"github.com/username/moneydash/backend/src/logger"
	"github.com/username/moneydash/backend/src/models"
	"github.com/username/moneydash/backend/src/services"
	"github.com/username/moneydash/backend/src/utils"
)

type PipelineHandler struct {
	pipelineService services.PipelineService
}

func NewPipelineHandler(pipelineService services.PipelineService) *PipelineHandler {
	return &PipelineHandler{
		pipelineService: pipelineService,
	}
}

// HandleRunPipeline triggers a full pipeline pass and returns the run
// summary. A ledger write failure is the only hard error; everything
// else is reported inside the summary.
func (h *PipelineHandler) HandleRunPipeline(w http.ResponseWriter, r *http.Request) {
	summary, err := h.pipelineService.Run(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrLedgerWrite) {
			utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		logger.L.Error("Pipeline run failed", "error", err)
		utils.SendJSONError(w, "Pipeline run failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, summary, http.StatusOK)
}

func (h *PipelineHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, found := h.pipelineService.LatestSummary()
	if !found {
		utils.SendJSONError(w, "No pipeline run recorded yet", http.StatusNotFound)
		return
	}
	utils.SendJSON(w, summary, http.StatusOK)
}

func (h *PipelineHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.pipelineService.Ledger(r.Context())
	if err != nil {
		logger.L.Error("Failed to load ledger", "error", err)
		utils.SendJSONError(w, "Failed to load ledger: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Optional filters used by the dashboard views.
	q := r.URL.Query()
	bankAccount := q.Get("bank_account")
	periodMonth := q.Get("period_month")
	unmappedOnly := q.Get("unmapped") == "true"

	filtered := make([]models.Transaction, 0, len(ledger))
	for i := range ledger {
		tx := ledger[i]
		if bankAccount != "" && tx.BankAccount != bankAccount {
			continue
		}
		if periodMonth != "" && tx.PeriodMonth != periodMonth {
			continue
		}
		if unmappedOnly && tx.IsMapped() {
			continue
		}
		filtered = append(filtered, tx)
	}
	utils.SendJSON(w, filtered, http.StatusOK)
}

func (h *PipelineHandler) HandleGetUnmapped(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.pipelineService.UnmappedSummaries(r.Context())
	if err != nil {
		logger.L.Error("Failed to build unmapped rollup", "error", err)
		utils.SendJSONError(w, "Failed to build unmapped rollup: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if summaries == nil {
		summaries = []models.UnmappedSummary{}
	}
	utils.SendJSON(w, summaries, http.StatusOK)
}
