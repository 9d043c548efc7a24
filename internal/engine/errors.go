package engine

// Reason identifies which booking rule rejected a request. Every rejection
// carries a distinct reason so callers can explain the exact conflict.
type Reason string

const (
	ReasonDateInPast          Reason = "date_in_past"
	ReasonOutsideWindow       Reason = "outside_window"
	ReasonCellNotFound        Reason = "cell_not_found"
	ReasonVehicleCellMismatch Reason = "vehicle_cell_mismatch"
	ReasonCarTurnConflict     Reason = "car_turn_conflict"
	ReasonCarFullDayConflict  Reason = "car_full_day_conflict"
	ReasonMotoCapacity        Reason = "moto_capacity_exceeded"
	ReasonMotoFullDayCapacity Reason = "moto_full_day_capacity_exceeded"
	ReasonUserDailyLimit      Reason = "user_daily_limit_exceeded"
)

// ValidationError is a recoverable rejection of a booking attempt: the caller
// can always retry with different parameters. Store failures are never wrapped
// in it.
type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func reject(reason Reason, message string) *ValidationError {
	return &ValidationError{Reason: reason, Message: message}
}
