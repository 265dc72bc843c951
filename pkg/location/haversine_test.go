package location

import (
	"math"
	"testing"
)

func TestDistanceMeters_SamePointIsZero(t *testing.T) {
	points := [][2]float64{{0, 0}, {51.5074, -0.1278}, {-33.8688, 151.2093}, {89.9, 179.9}}
	for _, p := range points {
		if d := DistanceMeters(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("distance(%v, %v) = %f, want 0", p, p, d)
		}
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	a := [2]float64{23.8103, 90.4125}
	b := [2]float64{22.3569, 91.7832}
	ab := DistanceMeters(a[0], a[1], b[0], b[1])
	ba := DistanceMeters(b[0], b[1], a[0], a[1])
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("asymmetric distance: %f vs %f", ab, ba)
	}
}

func TestDistanceMeters_OneDegreeLatitude(t *testing.T) {
	const want = 111320.0
	got := DistanceMeters(0, 0, 1, 0)
	if diff := math.Abs(got-want) / want; diff > 0.005 {
		t.Errorf("one degree latitude = %f m, want %f ±0.5%%", got, want)
	}
}

func TestHaversineKm(t *testing.T) {
	m := DistanceMeters(10, 10, 10.5, 10.5)
	km := HaversineKm(10, 10, 10.5, 10.5)
	if math.Abs(km*1000-m) > 1e-6 {
		t.Errorf("HaversineKm = %f, want %f", km, m/1000)
	}
}

func TestDistanceMeters_NaNPropagates(t *testing.T) {
	if d := DistanceMeters(math.NaN(), 0, 0, 0); !math.IsNaN(d) {
		t.Errorf("expected NaN, got %f", d)
	}
}

// latOffset returns the latitude that is meters north of the equator along lng 0.
func latOffset(meters float64) float64 {
	return meters / EarthRadiusMeters * 180 / math.Pi
}

func TestWithin_InclusiveBoundary(t *testing.T) {
	const radius = 1000.0
	cases := []struct {
		meters float64
		inside bool
	}{
		{999, true},
		{1001, false},
	}
	for _, tc := range cases {
		d := DistanceMeters(0, 0, latOffset(tc.meters), 0)
		if got := Within(d, radius); got != tc.inside {
			t.Errorf("point at %.0f m (computed %.6f): inside=%v, want %v", tc.meters, d, got, tc.inside)
		}
	}
	if !Within(radius, radius) {
		t.Error("distance equal to radius must be inside")
	}
	// radius taken from the computed distance itself: exactly on the edge
	edge := DistanceMeters(0, 0, latOffset(1000), 0)
	if !Within(DistanceMeters(0, 0, latOffset(1000), 0), edge) {
		t.Error("point exactly on the boundary must be inside")
	}
}

func TestBoundingBox_ContainsCircle(t *testing.T) {
	lat, lng, radius := 45.0, 7.0, 2500.0
	box := BoundingBox(lat, lng, radius)
	// walk the circle edge and make sure every point is in the box
	for deg := 0; deg < 360; deg += 15 {
		θ := float64(deg) * math.Pi / 180
		pLat := lat + latOffset(radius)*math.Cos(θ)
		pLng := lng + latOffset(radius)*math.Sin(θ)/math.Cos(lat*math.Pi/180)
		if pLat < box.MinLat || pLat > box.MaxLat || pLng < box.MinLng || pLng > box.MaxLng {
			t.Errorf("edge point (%f, %f) at %d° outside box %+v", pLat, pLng, deg, box)
		}
	}
	if box.WrapsLongitude() {
		t.Error("box near 7°E should not wrap the antimeridian")
	}
}

func TestBoundingBox_Antimeridian(t *testing.T) {
	box := BoundingBox(0, 179.999, 1000)
	if !box.WrapsLongitude() {
		t.Errorf("expected wrap for box %+v", box)
	}
}

func TestRoundTo(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{23.8149, 23.81},
		{23.816, 23.82},
		{-90.4163, -90.42},
		{1.004, 1.0},
	}
	for _, tc := range cases {
		if got := RoundTo(tc.in, 2); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("RoundTo(%v, 2) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
