package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"parqueadero/internal/entities"
	apperrors "parqueadero/internal/errors"
	"parqueadero/internal/service"
)

type AdminAuthHandler struct {
	Service service.AdminAuthService
}

func NewAdminAuthHandler(svc service.AdminAuthService) *AdminAuthHandler {
	return &AdminAuthHandler{Service: svc}
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entities.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	token, err := h.Service.Login(req.Email, req.Password)
	if err != nil {
		var httpErr *apperrors.HTTPError
		if errors.As(err, &httpErr) {
			http.Error(w, httpErr.Message, httpErr.Code)
			return
		}
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"token": token})
}
