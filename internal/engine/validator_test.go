package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 28, 10, 30, 0, 0, time.UTC)

func testCatalog() []ParkingCell {
	return []ParkingCell{carCell(1, "C-01"), motoCell(2, "M-01")}
}

func booking(cellID int, email string, turn Turn, vehicle VehicleType) BookingRequest {
	return BookingRequest{
		Date: testDate, Turn: turn, UserEmail: email, Vehicle: vehicle, CellID: cellID,
	}
}

func requireRejected(t *testing.T, err error, reason Reason) {
	t.Helper()
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, reason, vErr.Reason)
	assert.NotEmpty(t, vErr.Message)
}

func TestValidateBookingAccepts(t *testing.T) {
	err := ValidateBooking(testNow, booking(1, "ana@example.com", TurnMorning, VehicleCar),
		testCatalog(), nil, DefaultSettings())
	assert.NoError(t, err)
}

func TestValidateBookingDateChecks(t *testing.T) {
	tests := []struct {
		name   string
		date   time.Time
		reason Reason
	}{
		{"yesterday", testNow.AddDate(0, 0, -1), ReasonDateInPast},
		{"beyond visible window", testNow.AddDate(0, 0, 15), ReasonOutsideWindow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := booking(1, "ana@example.com", TurnMorning, VehicleCar)
			req.Date = tc.date
			err := ValidateBooking(testNow, req, testCatalog(), nil, DefaultSettings())
			requireRejected(t, err, tc.reason)
		})
	}
}

func TestValidateBookingSameDayIsValid(t *testing.T) {
	// Calendar-day comparison: booking today late in the day must pass.
	req := booking(1, "ana@example.com", TurnAfternoon, VehicleCar)
	req.Date = DateOnly(testNow)
	err := ValidateBooking(testNow.Add(10*time.Hour), req, testCatalog(), nil, DefaultSettings())
	assert.NoError(t, err)
}

func TestValidateBookingCellChecks(t *testing.T) {
	cells := append(testCatalog(), ParkingCell{ID: 3, Label: "C-02", Kind: CellKindCar, Active: false})

	err := ValidateBooking(testNow, booking(99, "ana@example.com", TurnMorning, VehicleCar),
		cells, nil, DefaultSettings())
	requireRejected(t, err, ReasonCellNotFound)

	err = ValidateBooking(testNow, booking(3, "ana@example.com", TurnMorning, VehicleCar),
		cells, nil, DefaultSettings())
	requireRejected(t, err, ReasonCellNotFound)

	err = ValidateBooking(testNow, booking(2, "ana@example.com", TurnMorning, VehicleCar),
		cells, nil, DefaultSettings())
	requireRejected(t, err, ReasonVehicleCellMismatch)

	err = ValidateBooking(testNow, booking(1, "ana@example.com", TurnMorning, VehicleMoto),
		cells, nil, DefaultSettings())
	requireRejected(t, err, ReasonVehicleCellMismatch)
}

func TestValidateBookingCarRules(t *testing.T) {
	tests := []struct {
		name     string
		existing []Reservation
		turn     Turn
		reason   Reason
	}{
		{
			name:     "full day rejected over morning booking",
			existing: []Reservation{activeRes(10, 1, "luis@example.com", TurnMorning, VehicleCar)},
			turn:     TurnFullDay,
			reason:   ReasonCarFullDayConflict,
		},
		{
			name:     "morning rejected over full day booking",
			existing: []Reservation{activeRes(10, 1, "luis@example.com", TurnFullDay, VehicleCar)},
			turn:     TurnMorning,
			reason:   ReasonCarFullDayConflict,
		},
		{
			name:     "same turn conflict",
			existing: []Reservation{activeRes(10, 1, "luis@example.com", TurnAfternoon, VehicleCar)},
			turn:     TurnAfternoon,
			reason:   ReasonCarTurnConflict,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBooking(testNow, booking(1, "ana@example.com", tc.turn, VehicleCar),
				testCatalog(), tc.existing, DefaultSettings())
			requireRejected(t, err, tc.reason)
		})
	}
}

func TestValidateBookingCarOppositeTurnsCoexist(t *testing.T) {
	existing := []Reservation{activeRes(10, 1, "luis@example.com", TurnMorning, VehicleCar)}
	err := ValidateBooking(testNow, booking(1, "ana@example.com", TurnAfternoon, VehicleCar),
		testCatalog(), existing, DefaultSettings())
	assert.NoError(t, err)
}

func TestValidateBookingMotoCapacity(t *testing.T) {
	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	var existing []Reservation
	for i, e := range emails {
		existing = append(existing, activeRes(10+i, 2, e, TurnMorning, VehicleMoto))
	}

	// Slot 4 of 4 still fits.
	err := ValidateBooking(testNow, booking(2, "d@example.com", TurnMorning, VehicleMoto),
		testCatalog(), existing, DefaultSettings())
	require.NoError(t, err)

	existing = append(existing, activeRes(13, 2, "d@example.com", TurnMorning, VehicleMoto))
	err = ValidateBooking(testNow, booking(2, "e@example.com", TurnMorning, VehicleMoto),
		testCatalog(), existing, DefaultSettings())
	requireRejected(t, err, ReasonMotoCapacity)

	// The other turn still has room.
	err = ValidateBooking(testNow, booking(2, "e@example.com", TurnAfternoon, VehicleMoto),
		testCatalog(), existing, DefaultSettings())
	assert.NoError(t, err)
}

func TestValidateBookingMotoFullDayCountsInBothTurns(t *testing.T) {
	existing := []Reservation{activeRes(10, 2, "a@example.com", TurnFullDay, VehicleMoto)}
	for i, e := range []string{"b@example.com", "c@example.com", "d@example.com"} {
		existing = append(existing, activeRes(11+i, 2, e, TurnMorning, VehicleMoto))
	}

	// Morning is at 3 half-day motos + 1 full-day = 4.
	err := ValidateBooking(testNow, booking(2, "e@example.com", TurnMorning, VehicleMoto),
		testCatalog(), existing, DefaultSettings())
	requireRejected(t, err, ReasonMotoCapacity)

	// A full-day moto needs a slot in both turns; morning is full.
	err = ValidateBooking(testNow, booking(2, "e@example.com", TurnFullDay, VehicleMoto),
		testCatalog(), existing, DefaultSettings())
	requireRejected(t, err, ReasonMotoFullDayCapacity)

	// Afternoon only carries the full-day moto, so 3 slots remain.
	err = ValidateBooking(testNow, booking(2, "e@example.com", TurnAfternoon, VehicleMoto),
		testCatalog(), existing, DefaultSettings())
	assert.NoError(t, err)
}

func TestValidateBookingUserDailyLimit(t *testing.T) {
	// One active reservation anywhere that day blocks a second one.
	existing := []Reservation{activeRes(10, 2, "ana@example.com", TurnMorning, VehicleMoto)}
	err := ValidateBooking(testNow, booking(1, "ana@example.com", TurnAfternoon, VehicleCar),
		testCatalog(), existing, DefaultSettings())
	requireRejected(t, err, ReasonUserDailyLimit)

	// The next day is a fresh allowance; its snapshot holds no reservations.
	nextDay := booking(1, "ana@example.com", TurnAfternoon, VehicleCar)
	nextDay.Date = testDate.AddDate(0, 0, 1)
	err = ValidateBooking(testNow, nextDay, testCatalog(), nil, DefaultSettings())
	assert.NoError(t, err)
}
