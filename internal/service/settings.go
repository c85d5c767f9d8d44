package service

import (
	"context"
	"errors"

	"rutaflow/internal/domain"
	"rutaflow/internal/logger"
	"rutaflow/internal/redis"
	"rutaflow/internal/repository"
)

// SettingsService handles per-driver configuration.
type SettingsService struct {
	settingsRepo        repository.SettingsRepository
	cache               redis.SettingsCacheInterface
	notificationService *NotificationService
	log                 *logger.Logger
}

// NewSettingsService creates a new SettingsService. cache may be nil.
func NewSettingsService(
	settingsRepo repository.SettingsRepository,
	cache redis.SettingsCacheInterface,
	notificationService *NotificationService,
	log *logger.Logger,
) *SettingsService {
	if log == nil {
		log = logger.Nop()
	}
	return &SettingsService{
		settingsRepo:        settingsRepo,
		cache:               cache,
		notificationService: notificationService,
		log:                 log,
	}
}

// Get returns the driver's settings, or the defaults if none were saved.
// Cache failures fall through to the database.
func (s *SettingsService) Get(ctx context.Context, driverID string) (domain.Settings, error) {
	if driverID == "" {
		return domain.Settings{}, ErrInvalidDriverID
	}

	if s.cache != nil {
		cached, err := s.cache.GetSettings(ctx, driverID)
		if err != nil {
			s.log.WithDriverID(driverID).WithError(err).Warn("settings cache read failed")
		} else if cached != nil {
			return *cached, nil
		}
	}

	stored, err := s.settingsRepo.Get(ctx, driverID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return domain.Settings{}, err
	}

	settings := domain.DefaultSettings()
	if stored != nil {
		settings = stored.Normalized()
	}

	if s.cache != nil {
		if err := s.cache.SetSettings(ctx, driverID, &settings); err != nil {
			s.log.WithDriverID(driverID).WithError(err).Warn("settings cache write failed")
		}
	}

	return settings, nil
}

// UpdateSettingsResponse contains the saved settings.
type UpdateSettingsResponse struct {
	Settings domain.Settings
	Notice   *Notice
}

// Update normalizes and stores the driver's settings.
func (s *SettingsService) Update(ctx context.Context, driverID string, settings domain.Settings) (*UpdateSettingsResponse, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	settings = settings.Normalized()
	if err := s.settingsRepo.Upsert(ctx, driverID, &settings); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateSettings(ctx, driverID); err != nil {
			s.log.WithDriverID(driverID).WithError(err).Warn("settings cache invalidation failed")
		}
	}

	resp := &UpdateSettingsResponse{Settings: settings}
	if s.notificationService != nil {
		resp.Notice = s.notificationService.SettingsSaved(ctx, driverID)
	}
	return resp, nil
}
