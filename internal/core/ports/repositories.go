package ports

import (
	"context"
	"time"

	"github.com/adeelhaq/sinchai/internal/core/domain"
)

// FarmRepository persists farms.
type FarmRepository interface {
	Create(ctx context.Context, farm *domain.Farm) error
	GetByID(ctx context.Context, id string) (*domain.Farm, error)
	List(ctx context.Context) ([]domain.Farm, error)
}

// FieldRepository persists fields. The boundary polygon is stored as
// PostGIS geography; area and centroid come back as computed columns.
type FieldRepository interface {
	Create(ctx context.Context, field *domain.Field) (*domain.Field, error)
	GetByID(ctx context.Context, id string) (*domain.Field, error)
	ListByFarm(ctx context.Context, farmID string) ([]domain.Field, error)
	List(ctx context.Context) ([]domain.Field, error)
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Field, error)
	UpdateAttrs(ctx context.Context, id string, patch domain.FieldPatch) (bool, error)
}

// ScheduleRepository persists confirmed irrigation schedules.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.Schedule) error
	ListByField(ctx context.Context, fieldID string, limit int) ([]domain.Schedule, error)
}

// SatelliteStatRepository persists per-scene satellite summaries.
type SatelliteStatRepository interface {
	InsertBatch(ctx context.Context, stats []domain.SatelliteStat) error
	Latest(ctx context.Context, fieldID string) (*domain.SatelliteStat, error)
	ListByField(ctx context.Context, fieldID string, since time.Time) ([]domain.SatelliteStat, error)
}
