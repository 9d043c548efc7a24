package engine

// CellAvailability is the per-cell verdict for one (date, turn) query.
// Derived on every call, never cached: reservation state can change between reads.
type CellAvailability struct {
	Cell            ParkingCell `json:"cell"`
	CarBlocked      bool        `json:"car_blocked"`
	MotoSlotsFree   int         `json:"moto_slots_free"`
	IsCarAvailable  bool        `json:"is_car_available"`
	IsMotoAvailable bool        `json:"is_moto_available"`
}

// ComputeAvailability derives the bookable state of every active cell for one
// turn of a day. dayReservations must already be filtered to active
// reservations on the target date, but must include every turn of that day:
// full-day bookings interact with the half-day turns.
//
// Pure and deterministic; no I/O.
func ComputeAvailability(turn Turn, cells []ParkingCell, dayReservations []Reservation) []CellAvailability {
	byCell := make(map[int][]Reservation, len(cells))
	for _, r := range dayReservations {
		byCell[r.CellID] = append(byCell[r.CellID], r)
	}

	out := make([]CellAvailability, 0, len(cells))
	for _, c := range cells {
		if !c.Active {
			continue
		}
		out = append(out, cellAvailability(c, turn, byCell[c.ID]))
	}
	return out
}

func cellAvailability(c ParkingCell, turn Turn, sameDayAll []Reservation) CellAvailability {
	// A full-day reservation consumes the whole cell for the whole day,
	// whatever turn was asked about.
	for _, r := range sameDayAll {
		if r.Turn == TurnFullDay {
			return CellAvailability{Cell: c, CarBlocked: true}
		}
	}

	var sameTurn []Reservation
	for _, r := range sameDayAll {
		if r.Turn == turn {
			sameTurn = append(sameTurn, r)
		}
	}

	switch c.Kind {
	case CellKindCar:
		hasCar := false
		for _, r := range sameTurn {
			if r.Vehicle == VehicleCar {
				hasCar = true
				break
			}
		}
		return CellAvailability{
			Cell:           c,
			CarBlocked:     hasCar,
			IsCarAvailable: !hasCar,
		}

	case CellKindMoto:
		occupancy := 0
		for _, r := range sameTurn {
			if r.Vehicle == VehicleMoto {
				occupancy++
			}
		}
		free := MotoSlots - occupancy
		if free < 0 {
			free = 0
		}
		return CellAvailability{
			Cell:            c,
			CarBlocked:      true,
			MotoSlotsFree:   free,
			IsMotoAvailable: free > 0,
		}
	}

	// Unknown cell kind: fully unavailable.
	return CellAvailability{Cell: c, CarBlocked: true}
}
