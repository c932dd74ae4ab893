package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/logger"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/services"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/utils"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) HandleGetPnL(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.GetPnLReport()
	if err != nil {
		if errors.Is(err, services.ErrNoPnLData) {
			utils.SendJSONError(w, "No P&L data has been imported yet", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to build P&L report", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error building P&L report: %v", err), http.StatusInternalServerError)
		return
	}

	currentETag, etagErr := utils.GenerateETag(report)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag for P&L report", "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		clientETag := r.Header.Get("If-None-Match")
		clientETags := strings.Split(clientETag, ",")
		for _, cETag := range clientETags {
			if strings.TrimSpace(cETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	utils.SendJSON(w, report, http.StatusOK)
}

func (h *ReportHandler) HandleGetCashflow(w http.ResponseWriter, r *http.Request) {
	view, ok := parseView(r)
	if !ok {
		utils.SendJSONError(w, "Invalid view parameter: must be 'sgd', 'usd' or 'combined'", http.StatusBadRequest)
		return
	}

	report, err := h.reportService.GetCashflowReport(view)
	if err != nil {
		logger.L.Error("Failed to build cashflow report", "view", view, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error building cashflow report: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, report, http.StatusOK)
}

func (h *ReportHandler) HandleGetPipeline(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.GetPipelineReport()
	if err != nil {
		logger.L.Error("Failed to build pipeline report", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error building pipeline report: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, report, http.StatusOK)
}

func (h *ReportHandler) HandleGetProjects(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.GetProjectsReport()
	if err != nil {
		logger.L.Error("Failed to build projects report", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error building projects report: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, report, http.StatusOK)
}

func (h *ReportHandler) HandleGetSankey(w http.ResponseWriter, r *http.Request) {
	view, ok := parseView(r)
	if !ok {
		utils.SendJSONError(w, "Invalid view parameter: must be 'sgd', 'usd' or 'combined'", http.StatusBadRequest)
		return
	}

	report, err := h.reportService.GetSankeyReport(view)
	if err != nil {
		logger.L.Error("Failed to build sankey report", "view", view, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error building sankey report: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, report, http.StatusOK)
}

// parseView reads the optional ?view= query parameter, defaulting to the
// combined view when absent.
func parseView(r *http.Request) (models.View, bool) {
	raw := r.URL.Query().Get("view")
	if raw == "" {
		return models.ViewCombined, true
	}
	view := models.View(strings.ToLower(raw))
	switch view {
	case models.ViewSGD, models.ViewUSD, models.ViewCombined:
		return view, true
	}
	return "", false
}
