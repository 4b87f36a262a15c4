package postgres

import (
	"context"

	"github.com/adeelhaq/sinchai/internal/core/domain"
)

// FarmRepo implements ports.FarmRepository with pgx.
type FarmRepo struct {
	db *DB
}

// NewFarmRepo creates a new FarmRepo.
func NewFarmRepo(db *DB) *FarmRepo {
	return &FarmRepo{db: db}
}

// Create inserts a farm, filling in the generated ID and timestamp.
func (r *FarmRepo) Create(ctx context.Context, farm *domain.Farm) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO farms (name, owner_name, location)
		VALUES ($1, NULLIF($2, ''), ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography)
		RETURNING id, created_at
	`, farm.Name, farm.OwnerName, farm.Location.Lon, farm.Location.Lat).
		Scan(&farm.ID, &farm.CreatedAt)
}

// GetByID returns a farm by UUID.
func (r *FarmRepo) GetByID(ctx context.Context, id string) (*domain.Farm, error) {
	var f domain.Farm
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(owner_name, ''),
		       ST_Y(location::geometry), ST_X(location::geometry), created_at
		FROM farms WHERE id = $1
	`, id).Scan(&f.ID, &f.Name, &f.OwnerName, &f.Location.Lat, &f.Location.Lon, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns all farms ordered by name.
func (r *FarmRepo) List(ctx context.Context) ([]domain.Farm, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, COALESCE(owner_name, ''),
		       ST_Y(location::geometry), ST_X(location::geometry), created_at
		FROM farms ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var farms []domain.Farm
	for rows.Next() {
		var f domain.Farm
		if err := rows.Scan(&f.ID, &f.Name, &f.OwnerName,
			&f.Location.Lat, &f.Location.Lon, &f.CreatedAt); err != nil {
			return nil, err
		}
		farms = append(farms, f)
	}
	return farms, rows.Err()
}
