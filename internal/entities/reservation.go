package entities

import "parqueadero/internal/engine"

type AvailabilityRequest struct {
	Date string `json:"date"`
	Turn string `json:"turn"`
}

type AvailabilityResponse struct {
	Date      string                    `json:"date"`
	Turn      string                    `json:"turn"`
	TurnLabel string                    `json:"turn_label"`
	Cells     []engine.CellAvailability `json:"cells"`
}

type ReservationRequest struct {
	Date        string `json:"date"`
	Turn        string `json:"turn"`
	CellID      int    `json:"cell_id"`
	VehicleType string `json:"vehicle_type"`
	UserEmail   string `json:"user_email"`
}

type ReservationResponse struct {
	ID          int    `json:"id"`
	UserEmail   string `json:"user_email"`
	Date        string `json:"date"`
	Turn        string `json:"turn"`
	TurnLabel   string `json:"turn_label"`
	CellID      int    `json:"cell_id"`
	VehicleType string `json:"vehicle_type"`
	Status      string `json:"status"`
}

func FromReservation(r engine.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:          r.ID,
		UserEmail:   r.UserEmail,
		Date:        r.Date.Format("2006-01-02"),
		Turn:        string(r.Turn),
		TurnLabel:   r.Turn.DisplayLabel(),
		CellID:      r.CellID,
		VehicleType: string(r.Vehicle),
		Status:      r.Status,
	}
}

type CancelRequest struct {
	Email string `json:"email"`
}

type CellRequest struct {
	Label  string `json:"label"`
	Kind   string `json:"kind"`
	Notes  string `json:"notes"`
	Active *bool  `json:"active"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
