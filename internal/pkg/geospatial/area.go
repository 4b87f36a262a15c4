package geospatial

import (
	"math"

	"github.com/adeelhaq/sinchai/internal/core/domain"
)

// equatorialRadiusM is the WGS 84 equatorial radius. The spherical-excess
// sum below is an approximation, not a geodesic computation; it is accurate
// to well under a percent for field-sized parcels, which is all this
// service ever sees. The stored area_ha is recomputed by PostGIS and is
// the authoritative value.
const equatorialRadiusM = 6378137.0

const (
	sqMetersPerHectare = 10000.0
	sqMetersPerAcre    = 4046.8564224
)

// AreaSqMeters returns the approximate enclosed area of a boundary ring
// on the Earth's surface, in square meters.
//
// Rings with fewer than three points have no defined area and yield 0.
// The ring may be open or closed; an open ring is closed on a local copy,
// never by mutating the caller's slice. Winding direction does not matter.
// Degenerate input that produces a non-finite sum also yields 0.
func AreaSqMeters(ring domain.Ring) float64 {
	if len(ring) < 3 {
		return 0
	}

	closed := ring
	if !ring.Closed() {
		closed = make(domain.Ring, len(ring)+1)
		copy(closed, ring)
		closed[len(ring)] = ring[0]
	}

	sum := 0.0
	for i := 0; i < len(closed)-1; i++ {
		lat1 := toRad(closed[i].Lat)
		lon1 := toRad(closed[i].Lon)
		lat2 := toRad(closed[i+1].Lat)
		lon2 := toRad(closed[i+1].Lon)
		sum += (lon2 - lon1) * (2 + math.Sin(lat1) + math.Sin(lat2))
	}

	area := math.Abs(sum * equatorialRadiusM * equatorialRadiusM / 2)
	if math.IsNaN(area) || math.IsInf(area, 0) {
		return 0
	}
	return area
}

// SqMetersToHectares converts square meters to hectares.
func SqMetersToHectares(sqMeters float64) float64 {
	return sqMeters / sqMetersPerHectare
}

// SqMetersToAcres converts square meters to acres.
func SqMetersToAcres(sqMeters float64) float64 {
	return sqMeters / sqMetersPerAcre
}

// ClosedPolygon returns the ring as [lon, lat] coordinate pairs in GeoJSON
// order, closed (first pair repeated last) if the input ring is open.
// The input is never mutated. An empty ring yields an empty slice with no
// closing point.
func ClosedPolygon(ring domain.Ring) [][]float64 {
	if len(ring) == 0 {
		return [][]float64{}
	}

	coords := make([][]float64, 0, len(ring)+1)
	for _, p := range ring {
		coords = append(coords, []float64{p.Lon, p.Lat})
	}
	if !ring.Closed() {
		coords = append(coords, []float64{ring[0].Lon, ring[0].Lat})
	}
	return coords
}

// AreaPolicy is the acceptable field-size range, in acres, enforced
// before a boundary is accepted for storage. Both ends are inclusive.
type AreaPolicy struct {
	MinAcres float64
	MaxAcres float64
}

// InRange reports whether an area in acres falls inside the policy range.
func (p AreaPolicy) InRange(acres float64) bool {
	return acres >= p.MinAcres && acres <= p.MaxAcres
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
