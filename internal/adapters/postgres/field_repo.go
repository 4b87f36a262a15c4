package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adeelhaq/sinchai/internal/core/domain"
	"github.com/adeelhaq/sinchai/internal/pkg/geospatial"
)

// FieldRepo implements ports.FieldRepository with pgx.
//
// The boundary is normalized to a closed GeoJSON polygon before insert;
// area_ha and centroid are generated columns maintained by PostGIS, so
// every read returns the authoritative server-side values.
type FieldRepo struct {
	db *DB
}

// NewFieldRepo creates a new FieldRepo.
func NewFieldRepo(db *DB) *FieldRepo {
	return &FieldRepo{db: db}
}

// geoJSONPolygon is the wire shape stored in the boundary column.
type geoJSONPolygon struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

func boundaryGeoJSON(ring domain.Ring) ([]byte, error) {
	poly := geoJSONPolygon{
		Type:        "Polygon",
		Coordinates: [][][]float64{geospatial.ClosedPolygon(ring)},
	}
	return json.Marshal(poly)
}

func ringFromGeoJSON(data []byte) (domain.Ring, error) {
	var poly geoJSONPolygon
	if err := json.Unmarshal(data, &poly); err != nil {
		return nil, err
	}
	if len(poly.Coordinates) == 0 {
		return nil, nil
	}
	ring := make(domain.Ring, 0, len(poly.Coordinates[0]))
	for _, pair := range poly.Coordinates[0] {
		if len(pair) < 2 {
			continue
		}
		ring = append(ring, domain.GeoPoint{Lon: pair[0], Lat: pair[1]})
	}
	return ring, nil
}

const fieldColumns = `
	id, farm_id, name, COALESCE(crop, ''), sowing_date, COALESCE(soil, ''),
	COALESCE(kc_profile, '{}'),
	ST_AsGeoJSON(boundary::geometry),
	area_ha,
	ST_Y(centroid::geometry), ST_X(centroid::geometry),
	created_at`

// Create inserts a field and returns it with the database-computed
// area and centroid filled in.
func (r *FieldRepo) Create(ctx context.Context, f *domain.Field) (*domain.Field, error) {
	gj, err := boundaryGeoJSON(f.Boundary)
	if err != nil {
		return nil, fmt.Errorf("encode boundary: %w", err)
	}

	row := r.db.Pool.QueryRow(ctx, `
		INSERT INTO fields (farm_id, name, crop, sowing_date, soil, kc_profile, boundary)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6,
		        ST_SetSRID(ST_GeomFromGeoJSON($7), 4326)::geography)
		RETURNING`+fieldColumns, f.FarmID, f.Name, string(f.Crop), f.SowingDate, f.Soil, f.KcProfile, string(gj))

	return scanField(row)
}

// GetByID returns a field by UUID.
func (r *FieldRepo) GetByID(ctx context.Context, id string) (*domain.Field, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT`+fieldColumns+` FROM fields WHERE id = $1`, id)
	return scanField(row)
}

// List returns all fields, newest first.
func (r *FieldRepo) List(ctx context.Context) ([]domain.Field, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT`+fieldColumns+` FROM fields ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFields(rows)
}

// ListByFarm returns a farm's fields, newest first.
func (r *FieldRepo) ListByFarm(ctx context.Context, farmID string) ([]domain.Field, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT`+fieldColumns+` FROM fields WHERE farm_id = $1 ORDER BY created_at DESC`, farmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFields(rows)
}

// FindNearby returns fields whose boundary lies within radiusMeters of a
// point, nearest first, using PostGIS ST_DWithin on the geography column.
func (r *FieldRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Field, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT`+fieldColumns+`
		FROM fields
		WHERE ST_DWithin(boundary, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY ST_Distance(boundary, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography)
		LIMIT $4
	`, lon, lat, radiusMeters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFields(rows)
}

// UpdateAttrs patches crop/sowing_date/soil/kc_profile. Boundary is never
// touched here. Returns false when the patch is empty or no row matched.
func (r *FieldRepo) UpdateAttrs(ctx context.Context, id string, patch domain.FieldPatch) (bool, error) {
	var sets []string
	args := []any{id}

	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Crop != nil {
		add("crop", string(*patch.Crop))
	}
	if patch.SowingDate != nil {
		add("sowing_date", *patch.SowingDate)
	}
	if patch.Soil != nil {
		add("soil", *patch.Soil)
	}
	if patch.KcProfile != nil {
		add("kc_profile", patch.KcProfile)
	}

	if len(sets) == 0 {
		return false, nil
	}

	tag, err := r.db.Pool.Exec(ctx,
		fmt.Sprintf("UPDATE fields SET %s WHERE id = $1", strings.Join(sets, ", ")), args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanField(row rowScanner) (*domain.Field, error) {
	var (
		f        domain.Field
		crop     string
		boundary []byte
	)
	err := row.Scan(
		&f.ID, &f.FarmID, &f.Name, &crop, &f.SowingDate, &f.Soil,
		&f.KcProfile, &boundary, &f.AreaHa,
		&f.Centroid.Lat, &f.Centroid.Lon, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Crop = domain.Crop(crop)
	if f.Boundary, err = ringFromGeoJSON(boundary); err != nil {
		return nil, fmt.Errorf("decode boundary: %w", err)
	}
	return &f, nil
}

type rowsScanner interface {
	rowScanner
	Next() bool
	Err() error
}

func scanFields(rows rowsScanner) ([]domain.Field, error) {
	var fields []domain.Field
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, *f)
	}
	return fields, rows.Err()
}
