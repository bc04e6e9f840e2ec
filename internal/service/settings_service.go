package service

import (
	"context"

	"invoicer/internal/domain"
	"invoicer/internal/port"
)

// SettingsService manages the business profile.
type SettingsService interface {
	// Get returns the stored settings, or an empty profile when none exist.
	Get(ctx context.Context) (*domain.BusinessSettings, error)
	Save(ctx context.Context, settings *domain.BusinessSettings) (*domain.BusinessSettings, error)
}

type settingsService struct {
	settingsRepo port.SettingsRepository
}

// NewSettingsService creates a new SettingsService implementation.
func NewSettingsService(settingsRepo port.SettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo}
}

func (s *settingsService) Get(ctx context.Context) (*domain.BusinessSettings, error) {
	settings, err := loadSettings(ctx, s.settingsRepo)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return &domain.BusinessSettings{}, nil
	}
	return settings, nil
}

func (s *settingsService) Save(ctx context.Context, settings *domain.BusinessSettings) (*domain.BusinessSettings, error) {
	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
