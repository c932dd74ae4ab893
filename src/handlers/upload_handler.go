package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/config"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/logger"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/services"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/utils"
)

type UploadHandler struct {
	importService services.ImportService
}

func NewUploadHandler(service services.ImportService) *UploadHandler {
	return &UploadHandler{importService: service}
}

// HandleImportBank ingests a bank statement CSV for one account. The prior
// batch for that account is replaced only when parsing succeeds; fatal parse
// errors leave stored data untouched.
func (h *UploadHandler) HandleImportBank(w http.ResponseWriter, r *http.Request) {
	account := models.Account(r.URL.Query().Get("account"))
	if account != models.AccountSGD && account != models.AccountUSD {
		utils.SendJSONError(w, "query parameter 'account' must be 'sgd' or 'usd'", http.StatusBadRequest)
		return
	}

	file, ok := h.openUploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	logger.L.Info("Processing bank statement import", "account", account)
	summary, err := h.importService.ImportBankStatement(file, account)
	if err != nil {
		h.sendImportError(w, err)
		return
	}

	utils.SendJSON(w, summary, http.StatusOK)
}

// HandleImportPnL ingests a wide-format P&L export, replacing the stored
// snapshot.
func (h *UploadHandler) HandleImportPnL(w http.ResponseWriter, r *http.Request) {
	file, ok := h.openUploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	logger.L.Info("Processing P&L import")
	summary, err := h.importService.ImportPnL(file)
	if err != nil {
		h.sendImportError(w, err)
		return
	}

	utils.SendJSON(w, summary, http.StatusOK)
}

func (h *UploadHandler) openUploadedFile(w http.ResponseWriter, r *http.Request) (multipartFile, bool) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return nil, false
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return nil, false
	}

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		file.Close()
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return nil, false
	}

	return file, true
}

func (h *UploadHandler) sendImportError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrParsingFailed) {
		logger.L.Warn("Import failed due to CSV parsing errors", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error parsing CSV file: %v", err), http.StatusBadRequest)
		return
	}
	logger.L.Error("Internal error processing import", "error", err)
	utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
}

type multipartFile interface {
	Read(p []byte) (int, error)
	Close() error
}
