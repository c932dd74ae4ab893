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
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/services"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/utils"
)

type ProjectHandler struct {
	reportService services.ReportService
}

func NewProjectHandler(reportService services.ReportService) *ProjectHandler {
	return &ProjectHandler{reportService: reportService}
}

func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	rows, err := database.DB.Query(`SELECT id, name, client, status, budget, start_date, end_date
		FROM projects ORDER BY created_at ASC, id ASC`)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying projects: %v", err), http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var project models.Project
		var budget string
		var client, status, startDate, endDate sql.NullString
		if err := rows.Scan(&project.ID, &project.Name, &client, &status, &budget, &startDate, &endDate); err != nil {
			utils.SendJSONError(w, fmt.Sprintf("Error scanning project: %v", err), http.StatusInternalServerError)
			return
		}
		project.Client = client.String
		project.Status = status.String
		project.StartDate = startDate.String
		project.EndDate = endDate.String
		project.Budget, _ = decimal.NewFromString(budget)
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error iterating over projects: %v", err), http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, projects, http.StatusOK)
}

func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var project models.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if project.Name == "" {
		utils.SendJSONError(w, "name is required", http.StatusBadRequest)
		return
	}

	project.ID = uuid.NewString()
	_, err := database.DB.Exec(`INSERT INTO projects (id, name, client, status, budget, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		project.ID, project.Name, project.Client, project.Status, project.Budget.String(), project.StartDate, project.EndDate)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error inserting project: %v", err), http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateReportCache()
	utils.SendJSON(w, project, http.StatusCreated)
}

func (h *ProjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var project models.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if project.Name == "" {
		utils.SendJSONError(w, "name is required", http.StatusBadRequest)
		return
	}

	result, err := database.DB.Exec(`UPDATE projects SET name = ?, client = ?, status = ?, budget = ?, start_date = ?, end_date = ?
		WHERE id = ?`,
		project.Name, project.Client, project.Status, project.Budget.String(), project.StartDate, project.EndDate, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error updating project: %v", err), http.StatusInternalServerError)
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		utils.SendJSONError(w, "Project not found", http.StatusNotFound)
		return
	}

	project.ID = id
	h.reportService.InvalidateReportCache()
	utils.SendJSON(w, project, http.StatusOK)
}

func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := database.DB.Exec(`DELETE FROM project_costs WHERE project_id = ?`, id); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error deleting project costs: %v", err), http.StatusInternalServerError)
		return
	}
	result, err := database.DB.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error deleting project: %v", err), http.StatusInternalServerError)
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		utils.SendJSONError(w, "Project not found", http.StatusNotFound)
		return
	}

	h.reportService.InvalidateReportCache()
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) HandleListCosts(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	rows, err := database.DB.Query(`SELECT id, project_id, description, category, amount, date
		FROM project_costs WHERE project_id = ? ORDER BY date ASC, id ASC`, projectID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying project costs: %v", err), http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	costs := []models.ProjectCost{}
	for rows.Next() {
		var cost models.ProjectCost
		var amount string
		var description, category, date sql.NullString
		if err := rows.Scan(&cost.ID, &cost.ProjectID, &description, &category, &amount, &date); err != nil {
			utils.SendJSONError(w, fmt.Sprintf("Error scanning project cost: %v", err), http.StatusInternalServerError)
			return
		}
		cost.Description = description.String
		cost.Category = category.String
		cost.Date = date.String
		cost.Amount, _ = decimal.NewFromString(amount)
		costs = append(costs, cost)
	}
	if err := rows.Err(); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error iterating over project costs: %v", err), http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, costs, http.StatusOK)
}

func (h *ProjectHandler) HandleCreateCost(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	var exists int
	if err := database.DB.QueryRow(`SELECT COUNT(1) FROM projects WHERE id = ?`, projectID).Scan(&exists); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error checking project: %v", err), http.StatusInternalServerError)
		return
	}
	if exists == 0 {
		utils.SendJSONError(w, "Project not found", http.StatusNotFound)
		return
	}

	var cost models.ProjectCost
	if err := json.NewDecoder(r.Body).Decode(&cost); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if cost.Amount.IsNegative() {
		utils.SendJSONError(w, "amount must not be negative", http.StatusBadRequest)
		return
	}

	cost.ID = uuid.NewString()
	cost.ProjectID = projectID
	_, err := database.DB.Exec(`INSERT INTO project_costs (id, project_id, description, category, amount, date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		cost.ID, cost.ProjectID, cost.Description, cost.Category, cost.Amount.String(), cost.Date)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error inserting project cost: %v", err), http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateReportCache()
	utils.SendJSON(w, cost, http.StatusCreated)
}

func (h *ProjectHandler) HandleDeleteCost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := database.DB.Exec(`DELETE FROM project_costs WHERE id = ?`, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error deleting project cost: %v", err), http.StatusInternalServerError)
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		utils.SendJSONError(w, "Project cost not found", http.StatusNotFound)
		return
	}

	h.reportService.InvalidateReportCache()
	w.WriteHeader(http.StatusNoContent)
}
