package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/database"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/services"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/utils"
)

type TransactionHandler struct {
	reportService services.ReportService
}

func NewTransactionHandler(reportService services.ReportService) *TransactionHandler {
	return &TransactionHandler{reportService: reportService}
}

func (h *TransactionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := `SELECT id, account, date, description, category, contact, type, amount, amount_sgd
		FROM transactions ORDER BY date DESC, id DESC`
	args := []interface{}{}
	if account := r.URL.Query().Get("account"); account != "" {
		query = `SELECT id, account, date, description, category, contact, type, amount, amount_sgd
			FROM transactions WHERE account = ? ORDER BY date DESC, id DESC`
		args = append(args, account)
	}

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying transactions: %v", err), http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var tx models.Transaction
		var amount, amountSGD string
		if err := rows.Scan(&tx.ID, &tx.Account, &tx.Date, &tx.Description, &tx.Category, &tx.Contact, &tx.Type, &amount, &amountSGD); err != nil {
			utils.SendJSONError(w, fmt.Sprintf("Error scanning transaction: %v", err), http.StatusInternalServerError)
			return
		}
		tx.Amount, _ = decimal.NewFromString(amount)
		tx.AmountSGD, _ = decimal.NewFromString(amountSGD)
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error iterating over transactions: %v", err), http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, transactions, http.StatusOK)
}

func (h *TransactionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if message, ok := validateTransaction(&tx); !ok {
		utils.SendJSONError(w, message, http.StatusBadRequest)
		return
	}

	tx.ID = uuid.NewString()
	_, err := database.DB.Exec(`INSERT INTO transactions (id, account, date, description, category, contact, type, amount, amount_sgd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Account), tx.Date, tx.Description, tx.Category, tx.Contact, string(tx.Type), tx.Amount.String(), tx.AmountSGD.String())
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error inserting transaction: %v", err), http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateReportCache()
	utils.SendJSON(w, tx, http.StatusCreated)
}

func (h *TransactionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if message, ok := validateTransaction(&tx); !ok {
		utils.SendJSONError(w, message, http.StatusBadRequest)
		return
	}

	result, err := database.DB.Exec(`UPDATE transactions SET account = ?, date = ?, description = ?, category = ?, contact = ?, type = ?, amount = ?, amount_sgd = ?
		WHERE id = ?`,
		string(tx.Account), tx.Date, tx.Description, tx.Category, tx.Contact, string(tx.Type), tx.Amount.String(), tx.AmountSGD.String(), id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error updating transaction: %v", err), http.StatusInternalServerError)
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
		return
	}

	tx.ID = id
	h.reportService.InvalidateReportCache()
	utils.SendJSON(w, tx, http.StatusOK)
}

func (h *TransactionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := database.DB.Exec(`DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error deleting transaction: %v", err), http.StatusInternalServerError)
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
		return
	}

	h.reportService.InvalidateReportCache()
	w.WriteHeader(http.StatusNoContent)
}

func validateTransaction(tx *models.Transaction) (string, bool) {
	if tx.Account != models.AccountSGD && tx.Account != models.AccountUSD {
		return "account must be 'sgd' or 'usd'", false
	}
	if tx.Type != models.TransactionInflow && tx.Type != models.TransactionOutflow {
		return "type must be 'inflow' or 'outflow'", false
	}
	if tx.Date == "" || tx.Description == "" {
		return "date and description are required", false
	}
	if tx.Amount.IsNegative() {
		return "amount must not be negative", false
	}
	if tx.Category == "" {
		tx.Category = models.DefaultCategory
	}
	if tx.AmountSGD.IsZero() && !tx.Amount.IsZero() && tx.Account == models.AccountSGD {
		tx.AmountSGD = tx.Amount
	}
	return "", true
}
