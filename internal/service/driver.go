package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"rutaflow/internal/domain"
	"rutaflow/internal/repository"
)

// DriverService handles driver accounts.
type DriverService struct {
	driverRepo   repository.DriverRepository
	settingsRepo repository.SettingsRepository
	validate     *validator.Validate
}

// NewDriverService creates a new DriverService.
func NewDriverService(driverRepo repository.DriverRepository, settingsRepo repository.SettingsRepository) *DriverService {
	return &DriverService{
		driverRepo:   driverRepo,
		settingsRepo: settingsRepo,
		validate:     validator.New(),
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name  string
	Email string
}

// Register creates a driver and stores the default settings for it.
func (s *DriverService) Register(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	email := strings.TrimSpace(req.Email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}

	existing, err := s.driverRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDriverExists
	}

	driver := &domain.Driver{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := s.driverRepo.Create(ctx, driver); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDriverExists
		}
		return nil, err
	}

	defaults := domain.DefaultSettings()
	if err := s.settingsRepo.Upsert(ctx, driver.ID, &defaults); err != nil {
		return nil, err
	}

	return driver, nil
}

// Get retrieves a driver by ID.
func (s *DriverService) Get(ctx context.Context, id string) (*domain.Driver, error) {
	if id == "" {
		return nil, ErrInvalidDriverID
	}
	return s.driverRepo.GetByID(ctx, id)
}
