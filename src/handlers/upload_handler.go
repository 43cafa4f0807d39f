package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/username/moneydash/backend/src/config"
	"github.com/username/moneydash/backend/src/logger"
	"github.com/username/moneydash/backend/src/parsers"
	"github.com/username/moneydash/backend/src/security/validation"
	"github.com/username/moneydash/backend/src/services"
	"github.com/username/moneydash/backend/src/utils"
)

type UploadHandler struct {
	pipelineService services.PipelineService
}

func NewUploadHandler(pipelineService services.PipelineService) *UploadHandler {
	return &UploadHandler{
		pipelineService: pipelineService,
	}
}

// HandleUpload accepts one export file, checks that its name matches
// the account-export naming scheme and that its content passes magic
// byte validation, then drops it into the import directory for the
// next pipeline run.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "userID", userID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	// Only the base name matters; the naming scheme is the contract.
	fileName := filepath.Base(fileHeader.Filename)
	raw, err := parsers.DecodeFilename(fileName)
	if err != nil {
		logger.L.Warn("Rejected upload with malformed filename", "userID", userID, "filename", fileName, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "userID", userID, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		logger.L.Warn("Server-side file content validation failed", "userID", userID, "filename", fileName, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		utils.SendJSONError(w, "An internal error occurred while processing the file.", http.StatusInternalServerError)
		return
	}

	if err := os.MkdirAll(config.Cfg.ImportDir, 0o755); err != nil {
		logger.L.Error("Failed to create import directory", "dir", config.Cfg.ImportDir, "error", err)
		utils.SendJSONError(w, "An internal error occurred while saving the file.", http.StatusInternalServerError)
		return
	}
	destPath := filepath.Join(config.Cfg.ImportDir, fileName)
	dest, err := os.Create(destPath)
	if err != nil {
		logger.L.Error("Failed to create import file", "path", destPath, "error", err)
		utils.SendJSONError(w, "An internal error occurred while saving the file.", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(dest, file); err != nil {
		dest.Close()
		os.Remove(destPath)
		logger.L.Error("Failed to write import file", "path", destPath, "error", err)
		utils.SendJSONError(w, "An internal error occurred while saving the file.", http.StatusInternalServerError)
		return
	}
	if err := dest.Close(); err != nil {
		os.Remove(destPath)
		utils.SendJSONError(w, "An internal error occurred while saving the file.", http.StatusInternalServerError)
		return
	}

	// The new file is invisible until the next run.
	h.pipelineService.InvalidateCache()

	logger.L.Info("Export file accepted",
		"userID", userID, "filename", fileName, "detectedType", detectedContentType,
		"bank", raw.Bank, "accountType", raw.AccountType, "last4", raw.Last4)
	utils.SendJSON(w, map[string]interface{}{
		"file_name":    fileName,
		"bank":         raw.Bank,
		"account_type": raw.AccountType,
		"last4":        raw.Last4,
		"period_start": raw.PeriodStart.Format("2006-01-02"),
		"period_end":   raw.PeriodEnd.Format("2006-01-02"),
	}, http.StatusCreated)
}
