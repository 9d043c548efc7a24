package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"parqueadero/internal/engine"
)

type SettingsRepository struct {
	DB *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

// Get returns the settings row, seeding the defaults when the table is empty.
func (r *SettingsRepository) Get() (engine.Settings, error) {
	var s engine.Settings
	err := r.DB.QueryRow(
		`SELECT visible_days, max_advance_hours, max_user_turns FROM settings ORDER BY id LIMIT 1`,
	).Scan(&s.VisibleDays, &s.MaxAdvanceHours, &s.MaxUserTurns)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return engine.Settings{}, fmt.Errorf("error querying settings: %w", err)
	}

	s = engine.DefaultSettings()
	_, err = r.DB.Exec(
		`INSERT INTO settings (visible_days, max_advance_hours, max_user_turns) VALUES ($1, $2, $3)`,
		s.VisibleDays, s.MaxAdvanceHours, s.MaxUserTurns)
	if err != nil {
		return engine.Settings{}, fmt.Errorf("error seeding default settings: %w", err)
	}
	return s, nil
}

func (r *SettingsRepository) Update(s engine.Settings) error {
	result, err := r.DB.Exec(`
		UPDATE settings SET visible_days = $1, max_advance_hours = $2, max_user_turns = $3
		WHERE id = (SELECT id FROM settings ORDER BY id LIMIT 1)`,
		s.VisibleDays, s.MaxAdvanceHours, s.MaxUserTurns)
	if err != nil {
		return fmt.Errorf("error updating settings: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("settings row missing: %w", sql.ErrNoRows)
	}
	return nil
}
