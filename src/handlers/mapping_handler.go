package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/username/moneydash/backend/src/logger"
	"github.com/username/moneydash/backend/src/models"
	"github.com/username/moneydash/backend/src/services"
	"github.com/username/moneydash/backend/src/store"
	"github.com/username/moneydash/backend/src/utils"
)

type MappingHandler struct {
	mappingStore    *store.MappingStore
	pipelineService services.PipelineService
}

func NewMappingHandler(mappingStore *store.MappingStore, pipelineService services.PipelineService) *MappingHandler {
	return &MappingHandler{
		mappingStore:    mappingStore,
		pipelineService: pipelineService,
	}
}

func (h *MappingHandler) HandleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.mappingStore.ListRules()
	if err != nil {
		logger.L.Error("Failed to list mapping rules", "error", err)
		utils.SendJSONError(w, "Failed to list mapping rules", http.StatusInternalServerError)
		return
	}
	if rules == nil {
		rules = []models.MappingRule{}
	}
	utils.SendJSON(w, rules, http.StatusOK)
}

// HandleUpsertRule creates or replaces a mapping rule. Rule changes
// invalidate cached pipeline results so the next read reclassifies.
func (h *MappingHandler) HandleUpsertRule(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key string `json:"key"`
		models.Classification
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rule, err := h.mappingStore.UpsertRule(payload.Key, payload.Classification)
	if err != nil {
		if strings.Contains(err.Error(), "must not be empty") {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L.Error("Failed to upsert mapping rule", "key", payload.Key, "error", err)
		utils.SendJSONError(w, "Failed to save mapping rule", http.StatusInternalServerError)
		return
	}

	h.pipelineService.InvalidateCache()
	utils.SendJSON(w, rule, http.StatusOK)
}

func (h *MappingHandler) HandleDeleteRule(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if strings.TrimSpace(key) == "" {
		utils.SendJSONError(w, "Rule key is required", http.StatusBadRequest)
		return
	}
	if err := h.mappingStore.DeleteRule(key); err != nil {
		logger.L.Error("Failed to delete mapping rule", "key", key, "error", err)
		utils.SendJSONError(w, "Failed to delete mapping rule", http.StatusInternalServerError)
		return
	}
	h.pipelineService.InvalidateCache()
	w.WriteHeader(http.StatusNoContent)
}

// HandleQuickMap maps every unmapped transaction containing the given
// pattern to one classification tuple, then reruns the pipeline so the
// response reflects the new rules.
func (h *MappingHandler) HandleQuickMap(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Pattern string `json:"pattern"`
		models.Classification
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(payload.Pattern) == "" {
		utils.SendJSONError(w, "Quick-mapping pattern is required", http.StatusBadRequest)
		return
	}

	result, err := h.pipelineService.QuickMap(r.Context(), payload.Pattern, payload.Classification)
	if err != nil {
		if errors.Is(err, services.ErrLedgerWrite) {
			utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		logger.L.Error("Quick-mapping failed", "pattern", payload.Pattern, "error", err)
		utils.SendJSONError(w, "Quick-mapping failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, result, http.StatusOK)
}

func (h *MappingHandler) HandleGetLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.mappingStore.GetLists()
	if err != nil {
		logger.L.Error("Failed to load reference lists", "error", err)
		utils.SendJSONError(w, "Failed to load reference lists", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, lists, http.StatusOK)
}

func (h *MappingHandler) HandleAddListItem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ListName string `json:"list_name"`
		Item     string `json:"item"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.mappingStore.AddListItem(payload.ListName, payload.Item); err != nil {
		if strings.Contains(err.Error(), "must not be empty") {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L.Error("Failed to add list item", "list", payload.ListName, "error", err)
		utils.SendJSONError(w, "Failed to add list item", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *MappingHandler) HandleRemoveListItem(w http.ResponseWriter, r *http.Request) {
	listName := r.PathValue("list")
	item := r.PathValue("item")
	if err := h.mappingStore.RemoveListItem(listName, item); err != nil {
		logger.L.Error("Failed to remove list item", "list", listName, "item", item, "error", err)
		utils.SendJSONError(w, "Failed to remove list item", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MappingHandler) HandleExportLists(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="lists_export.csv"`)
	if err := h.mappingStore.ExportListsCSV(w); err != nil {
		// Headers may already be sent; all we can do is log.
		logger.L.Error("Failed to export reference lists", "error", err)
	}
}

func (h *MappingHandler) HandleImportLists(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	applied, err := h.mappingStore.ImportListsCSV(r.Body)
	if err != nil {
		utils.SendJSONError(w, "List import failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	utils.SendJSON(w, map[string]int{"items_applied": applied}, http.StatusOK)
}
