package engine

import (
	"fmt"
	"strings"
	"time"
)

// MotoSlots is the number of concurrent motorcycle reservations a
// motorcycle cell holds per turn. Fixed by the physical layout, not a setting.
const MotoSlots = 4

const (
	StatusActive   = "active"
	StatusCanceled = "canceled"
)

type Turn string

const (
	TurnMorning   Turn = "morning"
	TurnAfternoon Turn = "afternoon"
	TurnFullDay   Turn = "full_day"
)

func ParseTurn(s string) (Turn, error) {
	switch Turn(strings.ToLower(strings.TrimSpace(s))) {
	case TurnMorning:
		return TurnMorning, nil
	case TurnAfternoon:
		return TurnAfternoon, nil
	case TurnFullDay:
		return TurnFullDay, nil
	}
	return "", fmt.Errorf("unknown turn %q", s)
}

// DisplayLabel keeps the human-readable hour ranges out of the identity values,
// so nothing downstream ever string-matches on them.
func (t Turn) DisplayLabel() string {
	switch t {
	case TurnMorning:
		return "Morning (6:00 AM - 12:00 PM)"
	case TurnAfternoon:
		return "Afternoon (1:00 PM - 6:00 PM)"
	case TurnFullDay:
		return "Full day (6:00 AM - 6:00 PM)"
	}
	return string(t)
}

type VehicleType string

const (
	VehicleCar  VehicleType = "car"
	VehicleMoto VehicleType = "motorcycle"
)

func ParseVehicleType(s string) (VehicleType, error) {
	switch VehicleType(strings.ToLower(strings.TrimSpace(s))) {
	case VehicleCar:
		return VehicleCar, nil
	case VehicleMoto:
		return VehicleMoto, nil
	}
	return "", fmt.Errorf("unknown vehicle type %q", s)
}

// CellKind shares wire values with VehicleType: a cell serves exactly one kind.
type CellKind string

const (
	CellKindCar  CellKind = "car"
	CellKindMoto CellKind = "motorcycle"
)

type ParkingCell struct {
	ID     int      `json:"id"`
	Label  string   `json:"label"`
	Kind   CellKind `json:"kind"`
	Active bool     `json:"active"`
	Notes  string   `json:"notes,omitempty"`
}

// Reservation dates are calendar days: always midnight UTC, no time-of-day.
type Reservation struct {
	ID        int         `json:"id"`
	UserEmail string      `json:"user_email"`
	Date      time.Time   `json:"date"`
	Turn      Turn        `json:"turn"`
	CellID    int         `json:"cell_id"`
	Vehicle   VehicleType `json:"vehicle_type"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

type Settings struct {
	VisibleDays     int `json:"visible_days"`
	MaxAdvanceHours int `json:"max_advance_hours"`
	// MaxUserTurns is stored and editable but not yet enforced; the current
	// policy is a strict one active reservation per user per day.
	MaxUserTurns int `json:"max_user_turns"`
}

func DefaultSettings() Settings {
	return Settings{VisibleDays: 14, MaxAdvanceHours: 72, MaxUserTurns: 3}
}

// DateOnly truncates t to its calendar day in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d.UTC(), nil
}
