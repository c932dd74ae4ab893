package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/models"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/services"
	"github.com/sulemanahmadzai/MD-Dashboard-sub000/src/utils"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get()
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error loading settings: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, settings, http.StatusOK)
}

func (h *SettingsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if settings.Headcount < 0 {
		utils.SendJSONError(w, "headcount must not be negative", http.StatusBadRequest)
		return
	}
	for _, adj := range settings.EbitdaAdjustments {
		if adj.LineItem == "" {
			utils.SendJSONError(w, "adjustment line_item is required", http.StatusBadRequest)
			return
		}
	}

	h.settingsService.Save(settings)
	utils.SendJSON(w, settings, http.StatusAccepted)
}
