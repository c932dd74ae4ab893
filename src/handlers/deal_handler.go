package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/database"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/logger"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/services"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/utils"
)

// breakdownTolerance is how far the revenue breakdown may drift from the
// deal value before the response carries an advisory warning. The mismatch
// is never a rejection; stored data is not structurally constrained.
var breakdownTolerance = decimal.NewFromFloat(0.01)

type dealResponse struct {
	models.Deal
	Warning string `json:"warning,omitempty"`
}

type DealHandler struct {
	reportService services.ReportService
}

func NewDealHandler(reportService services.ReportService) *DealHandler {
	return &DealHandler{reportService: reportService}
}

func (h *DealHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	rows, err := database.DB.Query(`SELECT id, client_name, deal_name, deal_value, stage, probability, expected_close_date, revenue_breakdown
		FROM deals ORDER BY created_at ASC, id ASC`)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying deals: %v", err), http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	deals := []models.Deal{}
	for rows.Next() {
		var deal models.Deal
		var value, probability, breakdown string
		var closeDate sql.NullString
		if err := rows.Scan(&deal.ID, &deal.ClientName, &deal.DealName, &value, &deal.Stage, &probability, &closeDate, &breakdown); err != nil {
			utils.SendJSONError(w, fmt.Sprintf("Error scanning deal: %v", err), http.StatusInternalServerError)
			return
		}
		deal.ExpectedCloseDate = closeDate.String
		deal.DealValue, _ = decimal.NewFromString(value)
		deal.Probability, _ = decimal.NewFromString(probability)
		if err := json.Unmarshal([]byte(breakdown), &deal.RevenueBreakdown); err != nil {
			utils.SendJSONError(w, fmt.Sprintf("Corrupt revenue breakdown for deal %s: %v", deal.ID, err), http.StatusInternalServerError)
			return
		}
		deals = append(deals, deal)
	}
	if err := rows.Err(); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error iterating over deals: %v", err), http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, deals, http.StatusOK)
}

func (h *DealHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var deal models.Deal
	if err := json.NewDecoder(r.Body).Decode(&deal); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if message, ok := validateDeal(&deal); !ok {
		utils.SendJSONError(w, message, http.StatusBadRequest)
		return
	}

	deal.ID = uuid.NewString()
	breakdown, err := encodeBreakdown(deal.RevenueBreakdown)
	if err != nil {
		utils.SendJSONError(w, "Invalid revenue breakdown", http.StatusBadRequest)
		return
	}

	_, err = database.DB.Exec(`INSERT INTO deals (id, client_name, deal_name, deal_value, stage, probability, expected_close_date, revenue_breakdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		deal.ID, deal.ClientName, deal.DealName, deal.DealValue.String(), string(deal.Stage), deal.Probability.String(), deal.ExpectedCloseDate, breakdown)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error inserting deal: %v", err), http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateReportCache()
	utils.SendJSON(w, dealResponse{Deal: deal, Warning: breakdownWarning(deal)}, http.StatusCreated)
}

func (h *DealHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var deal models.Deal
	if err := json.NewDecoder(r.Body).Decode(&deal); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if message, ok := validateDeal(&deal); !ok {
		utils.SendJSONError(w, message, http.StatusBadRequest)
		return
	}

	breakdown, err := encodeBreakdown(deal.RevenueBreakdown)
	if err != nil {
		utils.SendJSONError(w, "Invalid revenue breakdown", http.StatusBadRequest)
		return
	}

	result, err := database.DB.Exec(`UPDATE deals SET client_name = ?, deal_name = ?, deal_value = ?, stage = ?, probability = ?, expected_close_date = ?, revenue_breakdown = ?
		WHERE id = ?`,
		deal.ClientName, deal.DealName, deal.DealValue.String(), string(deal.Stage), deal.Probability.String(), deal.ExpectedCloseDate, breakdown, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error updating deal: %v", err), http.StatusInternalServerError)
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		utils.SendJSONError(w, "Deal not found", http.StatusNotFound)
		return
	}

	deal.ID = id
	h.reportService.InvalidateReportCache()
	utils.SendJSON(w, dealResponse{Deal: deal, Warning: breakdownWarning(deal)}, http.StatusOK)
}

func (h *DealHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := database.DB.Exec(`DELETE FROM deals WHERE id = ?`, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error deleting deal: %v", err), http.StatusInternalServerError)
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		utils.SendJSONError(w, "Deal not found", http.StatusNotFound)
		return
	}

	h.reportService.InvalidateReportCache()
	w.WriteHeader(http.StatusNoContent)
}

func validateDeal(deal *models.Deal) (string, bool) {
	if deal.ClientName == "" || deal.DealName == "" {
		return "clientName and dealName are required", false
	}
	if !models.ValidStage(deal.Stage) {
		return "invalid stage", false
	}
	if deal.Probability.IsNegative() || deal.Probability.GreaterThan(decimal.NewFromInt(100)) {
		return "probability must be between 0 and 100", false
	}
	if deal.DealValue.IsNegative() {
		return "dealValue must not be negative", false
	}
	return "", true
}

// breakdownWarning reports a revenue breakdown that does not reconcile with
// the deal value within the tolerance.
func breakdownWarning(deal models.Deal) string {
	if len(deal.RevenueBreakdown) == 0 {
		return ""
	}
	total := decimal.Zero
	for _, entry := range deal.RevenueBreakdown {
		total = total.Add(entry.Amount)
	}
	diff := total.Sub(deal.DealValue).Abs()
	if diff.GreaterThan(breakdownTolerance) {
		logger.L.Warn("Deal revenue breakdown does not reconcile with deal value",
			"dealID", deal.ID, "dealValue", deal.DealValue.String(), "breakdownTotal", total.String())
		return fmt.Sprintf("revenue breakdown totals %s but deal value is %s", total.StringFixed(2), deal.DealValue.StringFixed(2))
	}
	return ""
}

func encodeBreakdown(entries []models.RevenueBreakdownEntry) (string, error) {
	if entries == nil {
		entries = []models.RevenueBreakdownEntry{}
	}
	encoded, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
