package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"parqueadero/internal/entities"
	apperrors "parqueadero/internal/errors"
	"parqueadero/internal/service"
)

type AdminHandler struct {
	Cells    *service.CellService
	Settings *service.SettingsService
}

func NewAdminHandler(cells *service.CellService, settings *service.SettingsService) *AdminHandler {
	return &AdminHandler{Cells: cells, Settings: settings}
}

func (h *AdminHandler) ListCells(w http.ResponseWriter, r *http.Request) {
	cells, err := h.Cells.ListAll()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, cells)
}

func (h *AdminHandler) CreateCell(w http.ResponseWriter, r *http.Request) {
	var req entities.CellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	cell, err := h.Cells.Create(req.Label, req.Kind, req.Notes, active)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(cell)
}

func (h *AdminHandler) UpdateCell(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	var req entities.CellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	cell, err := h.Cells.Update(id, req.Label, req.Notes, active)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, cell)
}

func (h *AdminHandler) DeleteCell(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if err := h.Cells.Delete(id); err != nil {
		var httpErr *apperrors.HTTPError
		if errors.As(err, &httpErr) {
			http.Error(w, httpErr.Message, httpErr.Code)
			return
		}
		http.Error(w, "Could not delete cell", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"message": "Cell deleted"})
}

func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.Get()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, settings)
}

func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req service.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	settings, err := h.Settings.Update(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, settings)
}
