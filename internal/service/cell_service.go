package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"parqueadero/internal/engine"
	apperrors "parqueadero/internal/errors"
	"parqueadero/internal/repository"
)

type CellService struct {
	cells CellCatalog
}

func NewCellService(cells CellCatalog) *CellService {
	return &CellService{cells: cells}
}

func (s *CellService) ListActive() ([]engine.ParkingCell, error) {
	return s.cells.ListActive()
}

func (s *CellService) ListAll() ([]engine.ParkingCell, error) {
	return s.cells.ListAll()
}

func (s *CellService) Create(label, kind, notes string, active bool) (*engine.ParkingCell, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, fmt.Errorf("cell label cannot be empty")
	}
	vehicle, err := engine.ParseVehicleType(kind)
	if err != nil {
		return nil, fmt.Errorf("invalid cell kind: %w", err)
	}

	cell := &engine.ParkingCell{
		Label:  label,
		Kind:   engine.CellKind(vehicle),
		Active: active,
		Notes:  strings.TrimSpace(notes),
	}
	if err := s.cells.Create(cell); err != nil {
		return nil, err
	}
	return cell, nil
}

// Update edits label, notes and the active flag. The kind is immutable once
// reservations may reference the cell.
func (s *CellService) Update(id int, label, notes string, active bool) (*engine.ParkingCell, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, fmt.Errorf("cell label cannot be empty")
	}

	all, err := s.cells.ListAll()
	if err != nil {
		return nil, err
	}
	var cell *engine.ParkingCell
	for i := range all {
		if all[i].ID == id {
			cell = &all[i]
			break
		}
	}
	if cell == nil {
		return nil, fmt.Errorf("cell %d not found", id)
	}

	cell.Label = label
	cell.Notes = strings.TrimSpace(notes)
	cell.Active = active
	if err := s.cells.Update(*cell); err != nil {
		return nil, err
	}
	return cell, nil
}

func (s *CellService) Delete(id int) error {
	err := s.cells.Delete(id)
	if errors.Is(err, repository.ErrCellHasReservations) {
		return apperrors.NewHTTPError(http.StatusConflict, err.Error())
	}
	return err
}
