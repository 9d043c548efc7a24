package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"parqueadero/internal/engine"
)

// userDailyIndex is the partial unique index closing the daily-limit race at
// write time; a violation means a concurrent booking by the same user won.
const userDailyIndex = "reservations_one_active_per_user_day"

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: db}
}

const reservationColumns = `id, user_email, date, turn, cell_id, vehicle_type, status, created_at`

func scanReservations(rows *sql.Rows) ([]engine.Reservation, error) {
	var reservations []engine.Reservation
	for rows.Next() {
		var r engine.Reservation
		if err := rows.Scan(&r.ID, &r.UserEmail, &r.Date, &r.Turn, &r.CellID, &r.Vehicle, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning reservation: %w", err)
		}
		r.Date = engine.DateOnly(r.Date)
		reservations = append(reservations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating reservation rows: %w", err)
	}
	return reservations, nil
}

// ListActiveByDate returns every active reservation on the given day, all
// cells and turns included.
func (r *ReservationRepository) ListActiveByDate(date time.Time) ([]engine.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE date = $1 AND status = $2
		ORDER BY created_at, id`
	rows, err := r.DB.Query(query, engine.DateOnly(date), engine.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("error querying reservations for date: %w", err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

// ListActiveByUser returns the user's active reservations with date in
// [from, to).
func (r *ReservationRepository) ListActiveByUser(email string, from, to time.Time) ([]engine.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_email = $1 AND status = $2 AND date >= $3 AND date < $4
		ORDER BY date, turn`
	rows, err := r.DB.Query(query, email, engine.StatusActive, engine.DateOnly(from), engine.DateOnly(to))
	if err != nil {
		return nil, fmt.Errorf("error querying user reservations: %w", err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

// ListActiveFromDate returns every active reservation on or after the given
// day. Used by the consistency sweep.
func (r *ReservationRepository) ListActiveFromDate(from time.Time) ([]engine.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status = $1 AND date >= $2
		ORDER BY created_at, id`
	rows, err := r.DB.Query(query, engine.StatusActive, engine.DateOnly(from))
	if err != nil {
		return nil, fmt.Errorf("error querying active reservations: %w", err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *ReservationRepository) GetByID(id int) (*engine.Reservation, error) {
	var res engine.Reservation
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&res.ID, &res.UserEmail, &res.Date, &res.Turn, &res.CellID, &res.Vehicle, &res.Status, &res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reservation %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("error querying reservation: %w", err)
	}
	res.Date = engine.DateOnly(res.Date)
	return &res, nil
}

// CreateValidated inserts a new active reservation inside a transaction that
// serializes bookings per cell: the cell row is locked, the day's reservations
// are re-read, and revalidate runs against that fresh snapshot before the
// insert. Validation earlier in the request flow only narrows the race window;
// this closes it.
func (r *ReservationRepository) CreateValidated(req engine.BookingRequest, revalidate func(day []engine.Reservation) error) (*engine.Reservation, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting booking transaction: %w", err)
	}
	defer tx.Rollback()

	var cellID int
	err = tx.QueryRow(`SELECT id FROM parking_cells WHERE id = $1 FOR UPDATE`, req.CellID).Scan(&cellID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &engine.ValidationError{Reason: engine.ReasonCellNotFound, Message: "cell not found or inactive"}
		}
		return nil, fmt.Errorf("error locking cell %d: %w", req.CellID, err)
	}

	rows, err := tx.Query(`
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE date = $1 AND status = $2
		ORDER BY created_at, id`,
		engine.DateOnly(req.Date), engine.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("error re-reading day reservations: %w", err)
	}
	day, err := scanReservations(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if err := revalidate(day); err != nil {
		return nil, err
	}

	res := engine.Reservation{
		UserEmail: req.UserEmail,
		Date:      engine.DateOnly(req.Date),
		Turn:      req.Turn,
		CellID:    req.CellID,
		Vehicle:   req.Vehicle,
		Status:    engine.StatusActive,
	}
	err = tx.QueryRow(`
		INSERT INTO reservations (user_email, date, turn, cell_id, vehicle_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at`,
		res.UserEmail, res.Date, res.Turn, res.CellID, res.Vehicle, res.Status,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == userDailyIndex {
			return nil, &engine.ValidationError{
				Reason:  engine.ReasonUserDailyLimit,
				Message: "you already have an active reservation for this day",
			}
		}
		return nil, fmt.Errorf("error inserting reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing booking: %w", err)
	}
	return &res, nil
}

// Cancel flips an active reservation to canceled. Idempotent: cancelling an
// already-canceled reservation is a no-op.
func (r *ReservationRepository) Cancel(id int) error {
	_, err := r.DB.Exec(
		`UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		engine.StatusCanceled, id, engine.StatusActive)
	if err != nil {
		return fmt.Errorf("error canceling reservation %d: %w", id, err)
	}
	return nil
}

// CancelMany cancels a batch of reservations by id. Used by the consistency
// sweep to revoke the losers of a booking race.
func (r *ReservationRepository) CancelMany(ids []int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.DB.Exec(
		`UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = ANY($2) AND status = $3`,
		engine.StatusCanceled, pq.Array(ids), engine.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("error canceling reservations: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}
