package service

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"parqueadero/internal/engine"
)

const settingsCacheKey = "settings"

// SettingsUpdate carries a partial update; nil fields keep their current value.
type SettingsUpdate struct {
	VisibleDays     *int `json:"visible_days"`
	MaxAdvanceHours *int `json:"max_advance_hours"`
	MaxUserTurns    *int `json:"max_user_turns"`
}

// SettingsService caches the read-mostly settings row so the booking path does
// not hit the store on every request. Updates invalidate the cache.
type SettingsService struct {
	store SettingsStore
	cache *cache.Cache
}

func NewSettingsService(store SettingsStore, ttl time.Duration) *SettingsService {
	return &SettingsService{
		store: store,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (s *SettingsService) Get() (engine.Settings, error) {
	if cached, found := s.cache.Get(settingsCacheKey); found {
		return cached.(engine.Settings), nil
	}
	settings, err := s.store.Get()
	if err != nil {
		return engine.Settings{}, fmt.Errorf("error loading settings: %w", err)
	}
	s.cache.SetDefault(settingsCacheKey, settings)
	return settings, nil
}

func (s *SettingsService) Update(partial SettingsUpdate) (engine.Settings, error) {
	current, err := s.store.Get()
	if err != nil {
		return engine.Settings{}, fmt.Errorf("error loading settings: %w", err)
	}

	if partial.VisibleDays != nil {
		if *partial.VisibleDays < 1 {
			return engine.Settings{}, fmt.Errorf("visible_days must be at least 1")
		}
		current.VisibleDays = *partial.VisibleDays
	}
	if partial.MaxAdvanceHours != nil {
		if *partial.MaxAdvanceHours < 0 {
			return engine.Settings{}, fmt.Errorf("max_advance_hours cannot be negative")
		}
		current.MaxAdvanceHours = *partial.MaxAdvanceHours
	}
	if partial.MaxUserTurns != nil {
		if *partial.MaxUserTurns < 1 {
			return engine.Settings{}, fmt.Errorf("max_user_turns must be at least 1")
		}
		current.MaxUserTurns = *partial.MaxUserTurns
	}

	if err := s.store.Update(current); err != nil {
		return engine.Settings{}, fmt.Errorf("error saving settings: %w", err)
	}
	s.cache.Delete(settingsCacheKey)
	return current, nil
}
