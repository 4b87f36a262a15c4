package domain

import (
	"time"
)

// Farm groups fields under a single owner.
type Farm struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerName string    `json:"owner_name,omitempty"`
	Location  GeoPoint  `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// Field is a farmer-drawn parcel with its boundary polygon.
// AreaHa and Centroid are computed server-side by PostGIS and are the
// authoritative values; any client-side area estimate is advisory only.
type Field struct {
	ID         string         `json:"id"`
	FarmID     string         `json:"farm_id"`
	Name       string         `json:"name"`
	Crop       Crop           `json:"crop,omitempty"`
	SowingDate *time.Time     `json:"sowing_date,omitempty"`
	Soil       string         `json:"soil,omitempty"`
	KcProfile  map[string]any `json:"kc_profile,omitempty"`
	Boundary   Ring           `json:"boundary,omitempty"`
	AreaHa     float64        `json:"area_ha"`
	Centroid   GeoPoint       `json:"centroid"`
	CreatedAt  time.Time      `json:"created_at"`
}

// FieldPatch carries the attributes that may change after creation.
// The boundary is immutable once a field is stored.
type FieldPatch struct {
	Crop       *Crop          `json:"crop,omitempty"`
	SowingDate *time.Time     `json:"sowing_date,omitempty"`
	Soil       *string        `json:"soil,omitempty"`
	KcProfile  map[string]any `json:"kc_profile,omitempty"`
}

// RecommendationStatus is the lifecycle state of an irrigation recommendation.
type RecommendationStatus string

const (
	RecommendationReady      RecommendationStatus = "ready"
	RecommendationProcessing RecommendationStatus = "processing"
)

// RecommendationInputs records what went into a recommendation so it can
// be audited alongside the confirmed schedule.
type RecommendationInputs struct {
	Crop            Crop     `json:"crop,omitempty"`
	SoilMoisturePct *float64 `json:"soil_moisture_pct,omitempty"`
	TempC           float64  `json:"temp_c"`
	RainForecastMm  float64  `json:"rainfall_forecast_mm"`
	ET0Mm           float64  `json:"et0_mm"`
}

// Recommendation is an irrigation water-depth advice for a field.
// When satellite soil moisture is not yet available the status is
// "processing" and ETAMinutes tells the caller when to re-poll.
type Recommendation struct {
	FieldID    string               `json:"field_id"`
	Status     RecommendationStatus `json:"status"`
	Mm         float64              `json:"recommendation_mm,omitempty"`
	WindowDays int                  `json:"window_days,omitempty"`
	Inputs     RecommendationInputs `json:"inputs"`
	ETAMinutes int                  `json:"eta_minutes,omitempty"`
	ComputedAt time.Time            `json:"computed_at"`
}

// ScheduleEvent is a single planned irrigation application.
type ScheduleEvent struct {
	Date     time.Time `json:"date"`
	NetMm    float64   `json:"net_mm"`
	GrossMm  float64   `json:"gross_mm"`
	VolumeM3 *float64  `json:"volume_m3,omitempty"`
}

// Schedule is a confirmed irrigation plan persisted against a field.
type Schedule struct {
	ID               string               `json:"id"`
	FieldID          string               `json:"field_id"`
	Events           []ScheduleEvent      `json:"events"`
	RecommendationMm float64              `json:"recommendation_mm,omitempty"`
	WindowDays       int                  `json:"window_days,omitempty"`
	Inputs           RecommendationInputs `json:"inputs"`
	Notes            string               `json:"notes,omitempty"`
	Confirmed        bool                 `json:"confirmed"`
	CreatedAt        time.Time            `json:"created_at"`
}

// SatelliteStat is a per-scene vegetation/moisture summary for a field,
// derived from Sentinel-2 L2A imagery clipped to the field boundary.
type SatelliteStat struct {
	ID         string    `json:"id"`
	FieldID    string    `json:"field_id"`
	SceneDate  time.Time `json:"scene_date"`
	Collection string    `json:"collection"`
	NDVIMean   *float64  `json:"ndvi_mean,omitempty"`
	NDWIMean   *float64  `json:"ndwi_mean,omitempty"`
	CloudPct   *float64  `json:"cloud_pct,omitempty"`
	AssetID    string    `json:"asset_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
