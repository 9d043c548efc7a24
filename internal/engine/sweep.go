package engine

import "sort"

// FindOverbooked replays each cell's daily reservations in creation order
// through the booking rules and returns the ones that should not have been
// accepted. Validation and insertion are separate store round-trips, so two
// concurrent bookings can both pass validation; the earliest insert wins and
// the rest come back here for cancellation.
//
// reservations must be active. Pure.
func FindOverbooked(reservations []Reservation) []Reservation {
	type key struct {
		cellID int
		date   string
	}

	groups := make(map[key][]Reservation)
	for _, r := range reservations {
		k := key{cellID: r.CellID, date: DateOnly(r.Date).Format("2006-01-02")}
		groups[k] = append(groups[k], r)
	}

	var surplus []Reservation
	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool {
			if !group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].CreatedAt.Before(group[j].CreatedAt)
			}
			return group[i].ID < group[j].ID
		})

		var accepted []Reservation
		for _, r := range group {
			req := BookingRequest{Turn: r.Turn, Vehicle: r.Vehicle, CellID: r.CellID}
			if err := checkCellRules(req, accepted); err != nil {
				surplus = append(surplus, r)
				continue
			}
			accepted = append(accepted, r)
		}
	}

	// Newest first, so the losers of a race are cancelled before older state.
	sort.Slice(surplus, func(i, j int) bool {
		if !surplus[i].CreatedAt.Equal(surplus[j].CreatedAt) {
			return surplus[i].CreatedAt.After(surplus[j].CreatedAt)
		}
		return surplus[i].ID > surplus[j].ID
	})
	return surplus
}
