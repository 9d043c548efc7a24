package engine

import (
	"fmt"
	"time"
)

// BookingRequest is one attempt to claim a cell for a user.
type BookingRequest struct {
	Date      time.Time
	Turn      Turn
	UserEmail string
	Vehicle   VehicleType
	CellID    int
}

// ValidateBooking runs the ordered booking rules and returns nil when the
// caller may insert the reservation, or a *ValidationError naming the first
// rule that failed.
//
// cells is the current active-cell catalog. dayReservations must hold every
// active reservation for req.Date across all cells and turns: the cell rules
// need the cell's whole day and the daily-limit rule needs the user's whole day.
//
// Pure. Callers must re-run it against freshly queried data immediately before
// persisting; a snapshot taken earlier in the UI flow can be stale.
func ValidateBooking(now time.Time, req BookingRequest, cells []ParkingCell, dayReservations []Reservation, settings Settings) error {
	today := DateOnly(now)
	target := DateOnly(req.Date)

	if target.Before(today) {
		return reject(ReasonDateInPast, "date must be today or in the future")
	}

	limit := today.AddDate(0, 0, settings.VisibleDays)
	if target.After(limit) {
		return reject(ReasonOutsideWindow,
			fmt.Sprintf("date is outside the visible window (%d days)", settings.VisibleDays))
	}

	var cell *ParkingCell
	for i := range cells {
		if cells[i].ID == req.CellID && cells[i].Active {
			cell = &cells[i]
			break
		}
	}
	if cell == nil {
		return reject(ReasonCellNotFound, "cell not found or inactive")
	}

	if (req.Vehicle == VehicleCar && cell.Kind != CellKindCar) ||
		(req.Vehicle == VehicleMoto && cell.Kind != CellKindMoto) {
		return reject(ReasonVehicleCellMismatch,
			fmt.Sprintf("a %s cannot reserve a %s cell", req.Vehicle, cell.Kind))
	}

	var sameDayAll []Reservation
	for _, r := range dayReservations {
		if r.CellID == req.CellID {
			sameDayAll = append(sameDayAll, r)
		}
	}

	if err := checkCellRules(req, sameDayAll); err != nil {
		return err
	}

	userCount := 0
	for _, r := range dayReservations {
		if r.UserEmail == req.UserEmail {
			userCount++
		}
	}
	if userCount >= 1 {
		return reject(ReasonUserDailyLimit, "you already have an active reservation for this day")
	}

	return nil
}

func checkCellRules(req BookingRequest, sameDayAll []Reservation) error {
	switch req.Vehicle {
	case VehicleCar:
		return checkCarRules(req.Turn, sameDayAll)
	case VehicleMoto:
		return checkMotoRules(req.Turn, sameDayAll)
	}
	return reject(ReasonVehicleCellMismatch, fmt.Sprintf("unknown vehicle type %q", req.Vehicle))
}

func checkCarRules(turn Turn, sameDayAll []Reservation) error {
	if turn == TurnFullDay {
		// A full-day claim is exclusive for the whole day: it cannot coexist
		// with any car booking, partial or full.
		for _, r := range sameDayAll {
			if r.Vehicle == VehicleCar {
				return reject(ReasonCarFullDayConflict,
					"the cell already has a car reservation that day")
			}
		}
		return nil
	}

	for _, r := range sameDayAll {
		if r.Vehicle != VehicleCar {
			continue
		}
		if r.Turn == TurnFullDay {
			return reject(ReasonCarFullDayConflict,
				"the cell is taken by a full-day car reservation that day")
		}
		if r.Turn == turn {
			return reject(ReasonCarTurnConflict, "the cell already has a car reservation for that turn")
		}
	}
	return nil
}

func checkMotoRules(turn Turn, sameDayAll []Reservation) error {
	var morning, afternoon, fullDay int
	for _, r := range sameDayAll {
		if r.Vehicle != VehicleMoto {
			continue
		}
		switch r.Turn {
		case TurnMorning:
			morning++
		case TurnAfternoon:
			afternoon++
		case TurnFullDay:
			fullDay++
		}
	}

	if turn == TurnFullDay {
		// A full-day motorcycle takes one slot in both half-day turns at once,
		// so there must be room in each.
		if morning+fullDay+1 > MotoSlots || afternoon+fullDay+1 > MotoSlots {
			return reject(ReasonMotoFullDayCapacity,
				fmt.Sprintf("the cell has no full-day motorcycle slot left (max %d per turn)", MotoSlots))
		}
		return nil
	}

	occupancy := fullDay
	switch turn {
	case TurnMorning:
		occupancy += morning
	case TurnAfternoon:
		occupancy += afternoon
	}
	if occupancy >= MotoSlots {
		return reject(ReasonMotoCapacity,
			fmt.Sprintf("the cell already has %d motorcycle reservations for that turn", MotoSlots))
	}
	return nil
}
