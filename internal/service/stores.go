package service

import (
	"time"

	"parqueadero/internal/engine"
)

// The engine stays store-agnostic: services fetch through these narrow
// interfaces and derive everything in memory, so the whole decision path is
// testable with plain fixtures.

type ReservationStore interface {
	ListActiveByDate(date time.Time) ([]engine.Reservation, error)
	ListActiveByUser(email string, from, to time.Time) ([]engine.Reservation, error)
	ListActiveFromDate(from time.Time) ([]engine.Reservation, error)
	GetByID(id int) (*engine.Reservation, error)
	CreateValidated(req engine.BookingRequest, revalidate func(day []engine.Reservation) error) (*engine.Reservation, error)
	Cancel(id int) error
	CancelMany(ids []int) (int64, error)
}

type CellCatalog interface {
	ListActive() ([]engine.ParkingCell, error)
	ListAll() ([]engine.ParkingCell, error)
	Create(cell *engine.ParkingCell) error
	Update(cell engine.ParkingCell) error
	Delete(id int) error
}

type SettingsStore interface {
	Get() (engine.Settings, error)
	Update(s engine.Settings) error
}
