package service

import (
	"errors"
	"fmt"
	"time"

	"parqueadero/internal/engine"
)

// ErrNotOwner is returned when a caller tries to cancel a reservation that
// belongs to somebody else.
var ErrNotOwner = errors.New("reservation belongs to another user")

type ReservationService struct {
	reservations ReservationStore
	cells        CellCatalog
	settings     *SettingsService

	now func() time.Time
}

func NewReservationService(reservations ReservationStore, cells CellCatalog, settings *SettingsService) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		cells:        cells,
		settings:     settings,
		now:          time.Now,
	}
}

// GetAvailability fetches the active-cell catalog and the day's active
// reservations and derives the per-cell verdicts in memory. Recomputed on
// every call; the snapshot is best-effort by design.
func (s *ReservationService) GetAvailability(date time.Time, turn engine.Turn) ([]engine.CellAvailability, error) {
	cells, err := s.cells.ListActive()
	if err != nil {
		return nil, fmt.Errorf("error loading cell catalog: %w", err)
	}
	day, err := s.reservations.ListActiveByDate(date)
	if err != nil {
		return nil, fmt.Errorf("error loading reservations: %w", err)
	}
	return engine.ComputeAvailability(turn, cells, day), nil
}

// CreateReservation validates the booking against a fresh snapshot and, when
// it passes, inserts it through the store's serialized path, which re-runs the
// same validation inside the booking transaction.
func (s *ReservationService) CreateReservation(req engine.BookingRequest) (*engine.Reservation, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return nil, err
	}
	cells, err := s.cells.ListActive()
	if err != nil {
		return nil, fmt.Errorf("error loading cell catalog: %w", err)
	}
	day, err := s.reservations.ListActiveByDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("error loading reservations: %w", err)
	}

	now := s.now()
	if err := engine.ValidateBooking(now, req, cells, day, settings); err != nil {
		return nil, err
	}

	return s.reservations.CreateValidated(req, func(day []engine.Reservation) error {
		return engine.ValidateBooking(now, req, cells, day, settings)
	})
}

// ListUserReservations returns the user's active reservations with date in
// [from, to). Zero bounds default to today and the end of the visible window.
func (s *ReservationService) ListUserReservations(email string, from, to time.Time) ([]engine.Reservation, error) {
	if from.IsZero() {
		from = engine.DateOnly(s.now())
	}
	if to.IsZero() {
		settings, err := s.settings.Get()
		if err != nil {
			return nil, err
		}
		to = engine.DateOnly(from).AddDate(0, 0, settings.VisibleDays+1)
	}
	return s.reservations.ListActiveByUser(email, from, to)
}

// CancelReservation flips the caller's reservation to canceled. Cancelling an
// already-canceled reservation succeeds without touching anything.
func (s *ReservationService) CancelReservation(id int, email string) error {
	res, err := s.reservations.GetByID(id)
	if err != nil {
		return err
	}
	if res.UserEmail != email {
		return ErrNotOwner
	}
	if res.Status != engine.StatusActive {
		return nil
	}
	return s.reservations.Cancel(id)
}
