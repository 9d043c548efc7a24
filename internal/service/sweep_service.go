package service

import (
	"fmt"
	"log"
	"time"

	"parqueadero/internal/engine"
)

// SweepService is the scheduled consistency re-check for the booking race
// window: validation and insertion are two store round-trips, so concurrent
// attempts can both pass validation. The sweep replays upcoming reservations
// through the booking rules and cancels the ones that slipped in over capacity.
type SweepService struct {
	reservations ReservationStore

	now func() time.Time
}

func NewSweepService(reservations ReservationStore) *SweepService {
	return &SweepService{reservations: reservations, now: time.Now}
}

func (s *SweepService) Run() error {
	today := engine.DateOnly(s.now())

	active, err := s.reservations.ListActiveFromDate(today)
	if err != nil {
		return fmt.Errorf("sweep: failed to load active reservations: %w", err)
	}

	surplus := engine.FindOverbooked(active)
	if len(surplus) == 0 {
		return nil
	}

	ids := make([]int, len(surplus))
	for i, r := range surplus {
		ids[i] = r.ID
		log.Printf("Sweep: cancelling overbooked reservation %d (cell %d, %s, %s)",
			r.ID, r.CellID, r.Date.Format("2006-01-02"), r.Turn)
	}

	cancelled, err := s.reservations.CancelMany(ids)
	if err != nil {
		return fmt.Errorf("sweep: failed to cancel overbooked reservations: %w", err)
	}
	log.Printf("Sweep: cancelled %d overbooked reservations", cancelled)
	return nil
}
