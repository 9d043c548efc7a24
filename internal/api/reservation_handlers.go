package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"parqueadero/internal/engine"
	"parqueadero/internal/entities"
	"parqueadero/internal/service"
)

type UserReservationHandler struct {
	Service *service.ReservationService
}

func NewUserReservationHandler(svc *service.ReservationService) *UserReservationHandler {
	return &UserReservationHandler{Service: svc}
}

// writeRejection maps an engine rejection to a response the caller can act on:
// every reason keeps its own code and message, never a generic "booking failed".
func writeRejection(w http.ResponseWriter, vErr *engine.ValidationError) {
	status := http.StatusConflict
	if vErr.Reason == engine.ReasonCellNotFound {
		status = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"reason": string(vErr.Reason),
		"error":  vErr.Message,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (h *UserReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req entities.AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	turn, err := engine.ParseTurn(req.Turn)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cells, err := h.Service.GetAvailability(date, turn)
	if err != nil {
		http.Error(w, "Error checking availability", http.StatusInternalServerError)
		return
	}
	writeJSON(w, entities.AvailabilityResponse{
		Date:      date.Format("2006-01-02"),
		Turn:      string(turn),
		TurnLabel: turn.DisplayLabel(),
		Cells:     cells,
	})
}

func (h *UserReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req entities.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	turn, err := engine.ParseTurn(req.Turn)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vehicle, err := engine.ParseVehicleType(req.VehicleType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.UserEmail))
	if email == "" {
		http.Error(w, "user_email is required", http.StatusBadRequest)
		return
	}

	res, err := h.Service.CreateReservation(engine.BookingRequest{
		Date:      date,
		Turn:      turn,
		UserEmail: email,
		Vehicle:   vehicle,
		CellID:    req.CellID,
	})
	if err != nil {
		var vErr *engine.ValidationError
		if errors.As(err, &vErr) {
			writeRejection(w, vErr)
			return
		}
		http.Error(w, "Error creating reservation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entities.FromReservation(*res))
}

func (h *UserReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(strings.ToLower(r.URL.Query().Get("email")))
	if email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	var from, to time.Time
	var err error
	if s := r.URL.Query().Get("from"); s != "" {
		if from, err = engine.ParseDate(s); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if s := r.URL.Query().Get("to"); s != "" {
		if to, err = engine.ParseDate(s); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	reservations, err := h.Service.ListUserReservations(email, from, to)
	if err != nil {
		http.Error(w, "Error listing reservations", http.StatusInternalServerError)
		return
	}

	out := make([]entities.ReservationResponse, 0, len(reservations))
	for _, res := range reservations {
		out = append(out, entities.FromReservation(res))
	}
	writeJSON(w, out)
}

func (h *UserReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	var req entities.CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	err = h.Service.CancelReservation(id, email)
	if err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			http.Error(w, "Reservation belongs to another user", http.StatusForbidden)
			return
		}
		http.Error(w, "Reservation not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{"message": "Reservation cancelled"})
}
