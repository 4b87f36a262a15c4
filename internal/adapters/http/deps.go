package http

import (
	"github.com/nats-io/nats.go"

	"github.com/adeelhaq/sinchai/internal/adapters/postgres"
	"github.com/adeelhaq/sinchai/internal/adapters/valkey"
	"github.com/adeelhaq/sinchai/internal/core/ports"
	"github.com/adeelhaq/sinchai/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Farms           *usecases.FarmService
	Fields          *usecases.FieldService
	Recommendations *usecases.RecommendationService
	Schedules       *usecases.ScheduleService
	SatStats        ports.SatelliteStatRepository
	NATS            *nats.Conn
	DB              *postgres.DB
	Cache           *valkey.Cache
}
