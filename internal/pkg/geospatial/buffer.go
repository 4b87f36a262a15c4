package geospatial

import (
	"math"

	"github.com/adeelhaq/sinchai/internal/core/domain"
)

// metersPerDegreeLat is the approximate length of one degree of latitude.
const metersPerDegreeLat = 111320.0

// BoundingBox returns a bounding box around a point with the given radius
// in meters. Longitude spread is corrected for latitude.
func BoundingBox(lat, lon, radiusMeters float64) domain.Bounds {
	latDelta := radiusMeters / metersPerDegreeLat
	lonDelta := radiusMeters / (metersPerDegreeLat*math.Cos(toRad(lat)) + 1e-9)

	return domain.Bounds{
		MinLat: lat - latDelta,
		MinLon: lon - lonDelta,
		MaxLat: lat + latDelta,
		MaxLon: lon + lonDelta,
	}
}

// AOIPolygon builds a small closed rectangle around a centroid, used as
// the area of interest when clipping satellite scenes. The default 40 m
// radius keeps raster reads tiny.
func AOIPolygon(centroid domain.GeoPoint, radiusMeters float64) [][]float64 {
	b := BoundingBox(centroid.Lat, centroid.Lon, radiusMeters)
	return [][]float64{
		{b.MinLon, b.MinLat},
		{b.MaxLon, b.MinLat},
		{b.MaxLon, b.MaxLat},
		{b.MinLon, b.MaxLat},
		{b.MinLon, b.MinLat},
	}
}
