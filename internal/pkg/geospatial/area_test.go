package geospatial_test

import (
	"math"
	"testing"

	"github.com/adeelhaq/sinchai/internal/core/domain"
	"github.com/adeelhaq/sinchai/internal/pkg/geospatial"
)

// smallPlot is a near-rectangular field of roughly 0.001° × 0.001°
// (about 110 m × 93 m at this latitude).
var smallPlot = domain.Ring{
	{Lat: 33.700, Lon: 72.900},
	{Lat: 33.700, Lon: 72.901},
	{Lat: 33.701, Lon: 72.901},
	{Lat: 33.701, Lon: 72.900},
}

func TestAreaSqMeters_TooFewPoints(t *testing.T) {
	rings := []domain.Ring{
		nil,
		{},
		{{Lat: 33.7, Lon: 72.9}},
		{{Lat: 33.7, Lon: 72.9}, {Lat: 33.701, Lon: 72.901}},
	}
	for _, r := range rings {
		if got := geospatial.AreaSqMeters(r); got != 0 {
			t.Errorf("ring with %d points: expected area 0, got %f", len(r), got)
		}
	}
}

func TestAreaSqMeters_OpenAndClosedAgree(t *testing.T) {
	open := smallPlot
	closed := append(append(domain.Ring{}, smallPlot...), smallPlot[0])

	a := geospatial.AreaSqMeters(open)
	b := geospatial.AreaSqMeters(closed)
	if a != b {
		t.Errorf("open ring area %f differs from pre-closed area %f", a, b)
	}
}

func TestAreaSqMeters_WindingInvariant(t *testing.T) {
	reversed := make(domain.Ring, len(smallPlot))
	for i, p := range smallPlot {
		reversed[len(smallPlot)-1-i] = p
	}

	a := geospatial.AreaSqMeters(smallPlot)
	b := geospatial.AreaSqMeters(reversed)
	if math.Abs(a-b) > 1e-6 {
		t.Errorf("winding direction changed area: %f vs %f", a, b)
	}
}

func TestAreaSqMeters_DoesNotMutateInput(t *testing.T) {
	// Give the slice spare capacity so a careless close-in-place would
	// write into the caller's backing array.
	ring := make(domain.Ring, 0, 8)
	ring = append(ring, smallPlot...)

	_ = geospatial.AreaSqMeters(ring)

	if len(ring) != 4 {
		t.Fatalf("input ring length changed to %d", len(ring))
	}
	for i, p := range smallPlot {
		if ring[i] != p {
			t.Errorf("point %d mutated: %+v", i, ring[i])
		}
	}
}

func TestAreaSqMeters_SmallPlotAccuracy(t *testing.T) {
	// Planar approximation for the same plot: dLat° × dLon° rectangle.
	latM := 0.001 * 111320.0
	lonM := 0.001 * 111320.0 * math.Cos(33.7005*math.Pi/180)
	planar := latM * lonM

	got := geospatial.AreaSqMeters(smallPlot)
	if got <= 0 {
		t.Fatalf("expected positive area, got %f", got)
	}

	relErr := math.Abs(got-planar) / planar
	if relErr > 0.05 {
		t.Errorf("spherical area %f deviates %.1f%% from planar %f", got, relErr*100, planar)
	}
}

func TestAreaSqMeters_DegenerateRing(t *testing.T) {
	// All points identical: zero area, not NaN.
	p := domain.GeoPoint{Lat: 33.7, Lon: 72.9}
	if got := geospatial.AreaSqMeters(domain.Ring{p, p, p, p}); got != 0 {
		t.Errorf("degenerate ring: expected 0, got %f", got)
	}
}

func TestAreaSqMeters_NonFiniteCoercedToZero(t *testing.T) {
	ring := domain.Ring{
		{Lat: math.NaN(), Lon: 72.9},
		{Lat: 33.7, Lon: 72.901},
		{Lat: 33.701, Lon: 72.9},
	}
	if got := geospatial.AreaSqMeters(ring); got != 0 {
		t.Errorf("NaN input: expected 0, got %f", got)
	}
}

func TestUnitConversions_Exact(t *testing.T) {
	if got := geospatial.SqMetersToHectares(10000.0); got != 1.0 {
		t.Errorf("10000 m2 = %f ha, want 1", got)
	}
	if got := geospatial.SqMetersToAcres(4046.8564224); got != 1.0 {
		t.Errorf("4046.8564224 m2 = %f ac, want 1", got)
	}
}

func TestClosedPolygon(t *testing.T) {
	t.Run("empty ring", func(t *testing.T) {
		coords := geospatial.ClosedPolygon(nil)
		if len(coords) != 0 {
			t.Errorf("expected empty coordinates, got %d pairs", len(coords))
		}
	})

	t.Run("open ring gets closed", func(t *testing.T) {
		coords := geospatial.ClosedPolygon(smallPlot)
		if len(coords) != len(smallPlot)+1 {
			t.Fatalf("expected %d pairs, got %d", len(smallPlot)+1, len(coords))
		}
		first, last := coords[0], coords[len(coords)-1]
		if first[0] != last[0] || first[1] != last[1] {
			t.Errorf("ring not closed: first %v last %v", first, last)
		}
		// GeoJSON order: longitude first.
		if coords[0][0] != smallPlot[0].Lon || coords[0][1] != smallPlot[0].Lat {
			t.Errorf("expected [lon, lat] order, got %v", coords[0])
		}
	})

	t.Run("already closed ring unchanged", func(t *testing.T) {
		closed := append(append(domain.Ring{}, smallPlot...), smallPlot[0])
		coords := geospatial.ClosedPolygon(closed)
		if len(coords) != len(closed) {
			t.Errorf("expected %d pairs, got %d", len(closed), len(coords))
		}
	})

	t.Run("input not mutated", func(t *testing.T) {
		ring := make(domain.Ring, 0, 8)
		ring = append(ring, smallPlot...)
		_ = geospatial.ClosedPolygon(ring)
		if len(ring) != 4 {
			t.Errorf("input ring length changed to %d", len(ring))
		}
	})
}

func TestAreaPolicy_InclusiveBounds(t *testing.T) {
	policy := geospatial.AreaPolicy{MinAcres: 1.0, MaxAcres: 5.0}

	cases := []struct {
		acres float64
		want  bool
	}{
		{1.0, true},
		{5.0, true},
		{2.5, true},
		{0.99, false},
		{5.01, false},
		{0, false},
	}
	for _, tc := range cases {
		if got := policy.InRange(tc.acres); got != tc.want {
			t.Errorf("InRange(%v) = %v, want %v", tc.acres, got, tc.want)
		}
	}
}

func TestAreaSqMeters_EndToEndUnits(t *testing.T) {
	area := geospatial.AreaSqMeters(smallPlot)
	if area <= 0 {
		t.Fatalf("expected positive area, got %f", area)
	}

	ha := geospatial.SqMetersToHectares(area)
	ac := geospatial.SqMetersToAcres(area)
	if ha <= 0 || ac <= 0 {
		t.Fatalf("expected positive conversions, got %f ha / %f ac", ha, ac)
	}

	// 1 hectare = 2.47105 acres (to 5 decimal places).
	if math.Abs(ac/ha-2.47105) > 0.0001 {
		t.Errorf("acre/hectare ratio %f, want ~2.47105", ac/ha)
	}
}

func TestBoundingBox_CenteredOnPoint(t *testing.T) {
	b := geospatial.BoundingBox(33.7, 72.9, 500)
	if b.MinLat >= 33.7 || b.MaxLat <= 33.7 || b.MinLon >= 72.9 || b.MaxLon <= 72.9 {
		t.Errorf("box does not contain its center: %+v", b)
	}
	// Longitude spread must exceed latitude spread away from the equator.
	if (b.MaxLon - b.MinLon) <= (b.MaxLat - b.MinLat) {
		t.Errorf("expected lon delta > lat delta at 33.7°N: %+v", b)
	}
}

func TestAOIPolygon_ClosedRectangle(t *testing.T) {
	coords := geospatial.AOIPolygon(domain.GeoPoint{Lat: 33.7, Lon: 72.9}, 40)
	if len(coords) != 5 {
		t.Fatalf("expected 5 coordinate pairs, got %d", len(coords))
	}
	first, last := coords[0], coords[len(coords)-1]
	if first[0] != last[0] || first[1] != last[1] {
		t.Errorf("AOI ring not closed: %v vs %v", first, last)
	}
}
