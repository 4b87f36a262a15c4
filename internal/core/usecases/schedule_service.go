package usecases

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/adeelhaq/sinchai/internal/core/domain"
	"github.com/adeelhaq/sinchai/internal/core/ports"
)

// SeedParams controls schedule seeding. Zero values fall back to defaults.
type SeedParams struct {
	TargetEventMm    float64 `json:"target_event_mm"`
	SystemEfficiency float64 `json:"system_efficiency"`
	Days             int     `json:"days"`
}

// ScheduleService seeds and persists irrigation schedules.
type ScheduleService struct {
	fields    ports.FieldRepository
	schedules ports.ScheduleRepository
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(fields ports.FieldRepository, schedules ports.ScheduleRepository) *ScheduleService {
	return &ScheduleService{fields: fields, schedules: schedules}
}

// Seed generates weekly irrigation events covering the requested horizon.
// Gross depth accounts for system efficiency; volume uses the stored
// area_ha (1 mm over 1 ha = 10 m³).
func (s *ScheduleService) Seed(ctx context.Context, fieldID string, params SeedParams) ([]domain.ScheduleEvent, error) {
	if params.TargetEventMm <= 0 {
		params.TargetEventMm = 40
	}
	if params.SystemEfficiency <= 0 || params.SystemEfficiency > 1 {
		params.SystemEfficiency = 0.8
	}
	if params.Days <= 0 {
		params.Days = 45
	}

	field, err := s.fields.GetByID(ctx, fieldID)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", fieldID, err)
	}

	var events []domain.ScheduleEvent
	day := time.Now().UTC().Truncate(24 * time.Hour)
	for len(events)*7 < params.Days {
		net := params.TargetEventMm
		gross := round1(net / params.SystemEfficiency)

		ev := domain.ScheduleEvent{Date: day, NetMm: net, GrossMm: gross}
		if field.AreaHa > 0 {
			vol := round1(gross * field.AreaHa * 10)
			ev.VolumeM3 = &vol
		}
		events = append(events, ev)
		day = day.AddDate(0, 0, 7)
	}

	return events, nil
}

// Save persists a schedule against a field.
func (s *ScheduleService) Save(ctx context.Context, schedule *domain.Schedule) error {
	if schedule.FieldID == "" {
		return fmt.Errorf("field_id is required")
	}
	if len(schedule.Events) == 0 {
		return fmt.Errorf("schedule has no events")
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	return nil
}

// ListByField returns the most recent schedules for a field.
func (s *ScheduleService) ListByField(ctx context.Context, fieldID string) ([]domain.Schedule, error) {
	return s.schedules.ListByField(ctx, fieldID, 50)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
