package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/adeelhaq/sinchai/internal/core/domain"
)

// SatelliteStatRepo implements ports.SatelliteStatRepository with pgx.
type SatelliteStatRepo struct {
	db *DB
}

// NewSatelliteStatRepo creates a new SatelliteStatRepo.
func NewSatelliteStatRepo(db *DB) *SatelliteStatRepo {
	return &SatelliteStatRepo{db: db}
}

// InsertBatch upserts scene stats using pgx.Batch; a field/scene pair is
// unique, re-ingesting a scene overwrites its stats.
func (r *SatelliteStatRepo) InsertBatch(ctx context.Context, stats []domain.SatelliteStat) error {
	if len(stats) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range stats {
		batch.Queue(`
			INSERT INTO s2_stats (field_id, scene_date, collection, ndvi_mean, ndwi_mean, cloud_pct, asset_id)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
			ON CONFLICT (field_id, scene_date) DO UPDATE
			SET ndvi_mean = EXCLUDED.ndvi_mean, ndwi_mean = EXCLUDED.ndwi_mean,
			    cloud_pct = EXCLUDED.cloud_pct, asset_id = EXCLUDED.asset_id
		`, s.FieldID, s.SceneDate, s.Collection, s.NDVIMean, s.NDWIMean, s.CloudPct, s.AssetID)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range stats {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// Latest returns the most recent scene stat for a field.
func (r *SatelliteStatRepo) Latest(ctx context.Context, fieldID string) (*domain.SatelliteStat, error) {
	var s domain.SatelliteStat
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, field_id, scene_date, collection, ndvi_mean, ndwi_mean, cloud_pct,
		       COALESCE(asset_id, ''), created_at
		FROM s2_stats
		WHERE field_id = $1
		ORDER BY scene_date DESC
		LIMIT 1
	`, fieldID).Scan(&s.ID, &s.FieldID, &s.SceneDate, &s.Collection,
		&s.NDVIMean, &s.NDWIMean, &s.CloudPct, &s.AssetID, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByField returns scene stats since a date, oldest first.
func (r *SatelliteStatRepo) ListByField(ctx context.Context, fieldID string, since time.Time) ([]domain.SatelliteStat, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, field_id, scene_date, collection, ndvi_mean, ndwi_mean, cloud_pct,
		       COALESCE(asset_id, ''), created_at
		FROM s2_stats
		WHERE field_id = $1 AND scene_date >= $2
		ORDER BY scene_date
	`, fieldID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.SatelliteStat
	for rows.Next() {
		var s domain.SatelliteStat
		if err := rows.Scan(&s.ID, &s.FieldID, &s.SceneDate, &s.Collection,
			&s.NDVIMean, &s.NDWIMean, &s.CloudPct, &s.AssetID, &s.CreatedAt); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
