package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/adeelhaq/sinchai/internal/adapters/postgres"
	"github.com/adeelhaq/sinchai/internal/core/domain"
	"github.com/adeelhaq/sinchai/internal/pkg/config"
	"github.com/adeelhaq/sinchai/internal/pkg/geospatial"
	"github.com/adeelhaq/sinchai/internal/pkg/logging"
	"github.com/adeelhaq/sinchai/internal/pkg/metrics"
)

const (
	stacEndpoint   = "https://earth-search.aws.element84.com/v1/search"
	stacCollection = "sentinel-2-l2a"

	aoiBufferMeters = 40.0
	sceneDaysBack   = 30
	maxCloudPct     = 40.0
	maxScenes       = 5
)

// stacItem is the subset of a STAC item we keep per scene.
type stacItem struct {
	ID         string `json:"id"`
	Properties struct {
		Datetime   time.Time `json:"datetime"`
		CloudCover *float64  `json:"eo:cloud_cover"`
	} `json:"properties"`
}

type stacSearchResponse struct {
	Features []stacItem `json:"features"`
}

// searchScenes queries Earth Search for recent low-cloud Sentinel-2 scenes
// intersecting the field's AOI, newest first.
func searchScenes(ctx context.Context, client *http.Client, field domain.Field) ([]stacItem, error) {
	aoi := geospatial.AOIPolygon(field.Centroid, aoiBufferMeters)
	now := time.Now().UTC()
	body := map[string]any{
		"collections": []string{stacCollection},
		"intersects": map[string]any{
			"type":        "Polygon",
			"coordinates": [][][]float64{aoi},
		},
		"datetime": fmt.Sprintf("%s/%s",
			now.AddDate(0, 0, -sceneDaysBack).Format(time.RFC3339),
			now.Format(time.RFC3339)),
		"query": map[string]any{
			"eo:cloud_cover": map[string]float64{"lt": maxCloudPct},
		},
		"sortby": []map[string]string{{"field": "properties.datetime", "direction": "desc"}},
		"limit":  maxScenes,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, stacEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stac search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stac search: unexpected status %d", resp.StatusCode)
	}

	var parsed stacSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("stac search: decode: %w", err)
	}
	return parsed.Features, nil
}

func ingestField(ctx context.Context, client *http.Client, repo *postgres.SatelliteStatRepo, field domain.Field) (int, error) {
	items, err := searchScenes(ctx, client, field)
	if err != nil {
		return 0, err
	}

	stats := make([]domain.SatelliteStat, 0, len(items))
	for _, item := range items {
		stats = append(stats, domain.SatelliteStat{
			FieldID:    field.ID,
			SceneDate:  item.Properties.Datetime,
			Collection: stacCollection,
			CloudPct:   item.Properties.CloudCover,
			AssetID:    item.ID,
		})
	}

	if err := repo.InsertBatch(ctx, stats); err != nil {
		return 0, err
	}
	metrics.SceneStatsIngested.WithLabelValues(stacCollection).Add(float64(len(stats)))
	return len(stats), nil
}

func main() {
	cfg, err := config.Load("sinchai-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("sinchai-ingestor", logLevel, "json")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	fieldRepo := postgres.NewFieldRepo(db)
	statRepo := postgres.NewSatelliteStatRepo(db)

	fields, err := fieldRepo.List(ctx)
	if err != nil {
		log.Fatalf("list fields: %v", err)
	}
	slog.Info("ingest starting", "fields", len(fields))

	client := &http.Client{Timeout: 30 * time.Second}

	var wg sync.WaitGroup
	sem := make(chan struct{}, 4) // max 4 concurrent STAC searches
	var mu sync.Mutex
	var total, failed int

	for _, field := range fields {
		wg.Add(1)
		sem <- struct{}{}
		go func(f domain.Field) {
			defer wg.Done()
			defer func() { <-sem }()

			n, err := ingestField(ctx, client, statRepo, f)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				slog.Error("field ingest failed", "field_id", f.ID, "error", err)
				return
			}
			total += n
			slog.Info("field ingested", "field_id", f.ID, "scenes", n)
		}(field)
	}
	wg.Wait()

	slog.Info("ingest finished", "fields", len(fields), "scenes", total, "failed", failed)
	if failed == len(fields) && len(fields) > 0 {
		os.Exit(1)
	}
}
