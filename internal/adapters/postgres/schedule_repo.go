package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adeelhaq/sinchai/internal/core/domain"
)

// ScheduleRepo implements ports.ScheduleRepository with pgx.
// Events and inputs are stored as JSONB blobs.
type ScheduleRepo struct {
	db *DB
}

// NewScheduleRepo creates a new ScheduleRepo.
func NewScheduleRepo(db *DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// Create inserts a schedule, filling in the generated ID and timestamp.
func (r *ScheduleRepo) Create(ctx context.Context, sch *domain.Schedule) error {
	events, err := json.Marshal(sch.Events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	inputs, err := json.Marshal(sch.Inputs)
	if err != nil {
		return fmt.Errorf("encode inputs: %w", err)
	}

	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO schedules (field_id, events, recommendation_mm, window_days, inputs, notes, confirmed)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		RETURNING id, created_at
	`, sch.FieldID, events, sch.RecommendationMm, sch.WindowDays, inputs, sch.Notes, sch.Confirmed).
		Scan(&sch.ID, &sch.CreatedAt)
}

// ListByField returns schedules for a field, newest first.
func (r *ScheduleRepo) ListByField(ctx context.Context, fieldID string, limit int) ([]domain.Schedule, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, field_id, events, recommendation_mm, window_days, inputs,
		       COALESCE(notes, ''), confirmed, created_at
		FROM schedules
		WHERE field_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, fieldID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []domain.Schedule
	for rows.Next() {
		var (
			s      domain.Schedule
			events []byte
			inputs []byte
		)
		if err := rows.Scan(&s.ID, &s.FieldID, &events, &s.RecommendationMm,
			&s.WindowDays, &inputs, &s.Notes, &s.Confirmed, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(events, &s.Events); err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}
		if err := json.Unmarshal(inputs, &s.Inputs); err != nil {
			return nil, fmt.Errorf("decode inputs: %w", err)
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}
