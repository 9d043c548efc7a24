package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"parqueadero/internal/engine"
)

// ErrCellHasReservations is returned when deleting a cell that reservation
// history still references; disable the cell instead.
var ErrCellHasReservations = errors.New("cell has reservation history and cannot be deleted")

type CellRepository struct {
	DB *sql.DB
}

func NewCellRepository(db *sql.DB) *CellRepository {
	return &CellRepository{DB: db}
}

func (r *CellRepository) listCells(where string, args ...interface{}) ([]engine.ParkingCell, error) {
	query := `SELECT id, label, kind, active, notes FROM parking_cells ` + where + ` ORDER BY label`
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying cells: %w", err)
	}
	defer rows.Close()

	var cells []engine.ParkingCell
	for rows.Next() {
		var c engine.ParkingCell
		if err := rows.Scan(&c.ID, &c.Label, &c.Kind, &c.Active, &c.Notes); err != nil {
			return nil, fmt.Errorf("error scanning cell: %w", err)
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating cell rows: %w", err)
	}
	return cells, nil
}

// ListActive returns the cells that participate in availability.
func (r *CellRepository) ListActive() ([]engine.ParkingCell, error) {
	return r.listCells(`WHERE active`)
}

// ListAll returns every cell, inactive ones included. Admin view.
func (r *CellRepository) ListAll() ([]engine.ParkingCell, error) {
	return r.listCells(``)
}

func (r *CellRepository) Create(cell *engine.ParkingCell) error {
	err := r.DB.QueryRow(
		`INSERT INTO parking_cells (label, kind, active, notes) VALUES ($1, $2, $3, $4) RETURNING id`,
		cell.Label, cell.Kind, cell.Active, cell.Notes,
	).Scan(&cell.ID)
	if err != nil {
		return fmt.Errorf("error inserting cell: %w", err)
	}
	return nil
}

func (r *CellRepository) Update(cell engine.ParkingCell) error {
	result, err := r.DB.Exec(
		`UPDATE parking_cells SET label = $1, active = $2, notes = $3 WHERE id = $4`,
		cell.Label, cell.Active, cell.Notes, cell.ID)
	if err != nil {
		return fmt.Errorf("error updating cell %d: %w", cell.ID, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("cell %d not found: %w", cell.ID, sql.ErrNoRows)
	}
	return nil
}

// Delete removes a cell that no reservation references. The FK on
// reservations.cell_id is RESTRICT, so history can never be orphaned even if
// two admins race this check.
func (r *CellRepository) Delete(id int) error {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM reservations WHERE cell_id = $1`, id).Scan(&count)
	if err != nil {
		return fmt.Errorf("error checking cell references: %w", err)
	}
	if count > 0 {
		return ErrCellHasReservations
	}

	_, err = r.DB.Exec(`DELETE FROM parking_cells WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return ErrCellHasReservations
		}
		return fmt.Errorf("error deleting cell %d: %w", id, err)
	}
	return nil
}
