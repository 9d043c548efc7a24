package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parqueadero/internal/engine"
)

var (
	fixedNow  = time.Date(2024, 5, 28, 10, 0, 0, 0, time.UTC)
	fixedDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

// memStore is an in-memory stand-in for every store collaborator, so the full
// decision path runs without a database.
type memStore struct {
	cells        []engine.ParkingCell
	reservations []engine.Reservation
	settings     engine.Settings
	nextID       int
	clock        time.Time
}

func newMemStore(cells ...engine.ParkingCell) *memStore {
	return &memStore{
		cells:    cells,
		settings: engine.DefaultSettings(),
		nextID:   1,
		clock:    fixedNow,
	}
}

func (m *memStore) ListActiveByDate(date time.Time) ([]engine.Reservation, error) {
	day := engine.DateOnly(date)
	var out []engine.Reservation
	for _, r := range m.reservations {
		if r.Status == engine.StatusActive && r.Date.Equal(day) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListActiveByUser(email string, from, to time.Time) ([]engine.Reservation, error) {
	var out []engine.Reservation
	for _, r := range m.reservations {
		if r.Status == engine.StatusActive && r.UserEmail == email &&
			!r.Date.Before(from) && r.Date.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListActiveFromDate(from time.Time) ([]engine.Reservation, error) {
	var out []engine.Reservation
	for _, r := range m.reservations {
		if r.Status == engine.StatusActive && !r.Date.Before(engine.DateOnly(from)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) GetByID(id int) (*engine.Reservation, error) {
	for i := range m.reservations {
		if m.reservations[i].ID == id {
			r := m.reservations[i]
			return &r, nil
		}
	}
	return nil, errors.New("reservation not found")
}

func (m *memStore) CreateValidated(req engine.BookingRequest, revalidate func(day []engine.Reservation) error) (*engine.Reservation, error) {
	day, _ := m.ListActiveByDate(req.Date)
	if err := revalidate(day); err != nil {
		return nil, err
	}
	res := engine.Reservation{
		ID:        m.nextID,
		UserEmail: req.UserEmail,
		Date:      engine.DateOnly(req.Date),
		Turn:      req.Turn,
		CellID:    req.CellID,
		Vehicle:   req.Vehicle,
		Status:    engine.StatusActive,
		CreatedAt: m.clock,
	}
	m.nextID++
	m.clock = m.clock.Add(time.Second)
	m.reservations = append(m.reservations, res)
	return &res, nil
}

func (m *memStore) Cancel(id int) error {
	for i := range m.reservations {
		if m.reservations[i].ID == id && m.reservations[i].Status == engine.StatusActive {
			m.reservations[i].Status = engine.StatusCanceled
		}
	}
	return nil
}

func (m *memStore) CancelMany(ids []int) (int64, error) {
	var n int64
	for _, id := range ids {
		for i := range m.reservations {
			if m.reservations[i].ID == id && m.reservations[i].Status == engine.StatusActive {
				m.reservations[i].Status = engine.StatusCanceled
				n++
			}
		}
	}
	return n, nil
}

func (m *memStore) ListActive() ([]engine.ParkingCell, error) {
	var out []engine.ParkingCell
	for _, c := range m.cells {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) ListAll() ([]engine.ParkingCell, error) { return m.cells, nil }

func (m *memStore) Create(cell *engine.ParkingCell) error {
	cell.ID = len(m.cells) + 1
	m.cells = append(m.cells, *cell)
	return nil
}

func (m *memStore) Update(cell engine.ParkingCell) error {
	for i := range m.cells {
		if m.cells[i].ID == cell.ID {
			m.cells[i] = cell
			return nil
		}
	}
	return errors.New("cell not found")
}

func (m *memStore) Delete(id int) error {
	for i := range m.cells {
		if m.cells[i].ID == id {
			m.cells = append(m.cells[:i], m.cells[i+1:]...)
			return nil
		}
	}
	return errors.New("cell not found")
}

// The settings store also has Get/Update methods; a thin adapter keeps them
// from colliding with the cell catalog methods on memStore.
type memSettings struct{ m *memStore }

func (s memSettings) Get() (engine.Settings, error) { return s.m.settings, nil }
func (s memSettings) Update(v engine.Settings) error {
	s.m.settings = v
	return nil
}

func newTestService(store *memStore) *ReservationService {
	svc := NewReservationService(store, store, NewSettingsService(memSettings{store}, time.Minute))
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestCreateReservationAndAvailability(t *testing.T) {
	store := newMemStore(
		engine.ParkingCell{ID: 1, Label: "C-01", Kind: engine.CellKindCar, Active: true},
		engine.ParkingCell{ID: 2, Label: "M-01", Kind: engine.CellKindMoto, Active: true},
	)
	svc := newTestService(store)

	res, err := svc.CreateReservation(engine.BookingRequest{
		Date: fixedDate, Turn: engine.TurnMorning,
		UserEmail: "ana@example.com", Vehicle: engine.VehicleCar, CellID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, engine.StatusActive, res.Status)

	morning, err := svc.GetAvailability(fixedDate, engine.TurnMorning)
	require.NoError(t, err)
	for _, v := range morning {
		if v.Cell.ID == 1 {
			assert.False(t, v.IsCarAvailable)
		}
	}

	afternoon, err := svc.GetAvailability(fixedDate, engine.TurnAfternoon)
	require.NoError(t, err)
	for _, v := range afternoon {
		if v.Cell.ID == 1 {
			assert.True(t, v.IsCarAvailable)
		}
	}
}

func TestCreateReservationRejectedOnConflict(t *testing.T) {
	store := newMemStore(engine.ParkingCell{ID: 1, Label: "C-01", Kind: engine.CellKindCar, Active: true})
	svc := newTestService(store)

	_, err := svc.CreateReservation(engine.BookingRequest{
		Date: fixedDate, Turn: engine.TurnMorning,
		UserEmail: "ana@example.com", Vehicle: engine.VehicleCar, CellID: 1,
	})
	require.NoError(t, err)

	_, err = svc.CreateReservation(engine.BookingRequest{
		Date: fixedDate, Turn: engine.TurnMorning,
		UserEmail: "luis@example.com", Vehicle: engine.VehicleCar, CellID: 1,
	})
	var vErr *engine.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, engine.ReasonCarTurnConflict, vErr.Reason)
}

// racingStore injects a competing booking between the service's first
// validation pass and the insert, simulating a concurrent winner.
type racingStore struct {
	*memStore
	competitor engine.BookingRequest
	fired      bool
}

func (r *racingStore) CreateValidated(req engine.BookingRequest, revalidate func(day []engine.Reservation) error) (*engine.Reservation, error) {
	if !r.fired {
		r.fired = true
		if _, err := r.memStore.CreateValidated(r.competitor, func([]engine.Reservation) error { return nil }); err != nil {
			return nil, err
		}
	}
	return r.memStore.CreateValidated(req, revalidate)
}

func TestCreateReservationRevalidatesAtInsert(t *testing.T) {
	store := newMemStore(engine.ParkingCell{ID: 1, Label: "C-01", Kind: engine.CellKindCar, Active: true})
	racing := &racingStore{
		memStore: store,
		competitor: engine.BookingRequest{
			Date: fixedDate, Turn: engine.TurnMorning,
			UserEmail: "luis@example.com", Vehicle: engine.VehicleCar, CellID: 1,
		},
	}
	svc := NewReservationService(racing, store, NewSettingsService(memSettings{store}, time.Minute))
	svc.now = func() time.Time { return fixedNow }

	// The first validation pass sees an empty day, but the competitor lands
	// before the insert; the in-transaction revalidation must catch it.
	_, err := svc.CreateReservation(engine.BookingRequest{
		Date: fixedDate, Turn: engine.TurnMorning,
		UserEmail: "ana@example.com", Vehicle: engine.VehicleCar, CellID: 1,
	})
	var vErr *engine.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, engine.ReasonCarTurnConflict, vErr.Reason)
}

func TestCancelReservation(t *testing.T) {
	store := newMemStore(engine.ParkingCell{ID: 1, Label: "C-01", Kind: engine.CellKindCar, Active: true})
	svc := newTestService(store)

	res, err := svc.CreateReservation(engine.BookingRequest{
		Date: fixedDate, Turn: engine.TurnMorning,
		UserEmail: "ana@example.com", Vehicle: engine.VehicleCar, CellID: 1,
	})
	require.NoError(t, err)

	err = svc.CancelReservation(res.ID, "other@example.com")
	assert.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, svc.CancelReservation(res.ID, "ana@example.com"))
	// Idempotent.
	require.NoError(t, svc.CancelReservation(res.ID, "ana@example.com"))

	// Cancellation frees the slot.
	verdicts, err := svc.GetAvailability(fixedDate, engine.TurnMorning)
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.True(t, verdicts[0].IsCarAvailable)
}

func TestListUserReservationsDefaultsWindow(t *testing.T) {
	store := newMemStore(engine.ParkingCell{ID: 1, Label: "C-01", Kind: engine.CellKindCar, Active: true})
	svc := newTestService(store)

	_, err := svc.CreateReservation(engine.BookingRequest{
		Date: fixedDate, Turn: engine.TurnMorning,
		UserEmail: "ana@example.com", Vehicle: engine.VehicleCar, CellID: 1,
	})
	require.NoError(t, err)

	mine, err := svc.ListUserReservations("ana@example.com", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	none, err := svc.ListUserReservations("luis@example.com", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
