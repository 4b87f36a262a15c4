package usecases

import (
	"context"
	"fmt"

	"github.com/adeelhaq/sinchai/internal/core/domain"
	"github.com/adeelhaq/sinchai/internal/core/ports"
)

// FarmService handles farm-level operations.
type FarmService struct {
	farms ports.FarmRepository
}

// NewFarmService creates a new FarmService.
func NewFarmService(farms ports.FarmRepository) *FarmService {
	return &FarmService{farms: farms}
}

// Create validates and stores a farm.
func (s *FarmService) Create(ctx context.Context, farm *domain.Farm) error {
	if farm.Name == "" {
		return fmt.Errorf("farm name is required")
	}
	p := farm.Location
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: lat=%f lon=%f", ErrInvalidCoordinate, p.Lat, p.Lon)
	}
	return s.farms.Create(ctx, farm)
}

// GetByID returns a single farm.
func (s *FarmService) GetByID(ctx context.Context, id string) (*domain.Farm, error) {
	return s.farms.GetByID(ctx, id)
}

// List returns all farms.
func (s *FarmService) List(ctx context.Context) ([]domain.Farm, error) {
	return s.farms.List(ctx)
}
