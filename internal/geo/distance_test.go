package geo

import (
	"math"
	"testing"
)

func TestDistanceKmIdenticalPoints(t *testing.T) {
	d := DistanceKm(25.7617, -80.1918, 25.7617, -80.1918)
	if d != 0 {
		t.Errorf("Expected 0 distance for identical points, got %f", d)
	}
}

func TestDistanceKmSymmetry(t *testing.T) {
	d1 := DistanceKm(1.2897, 103.8501, 35.6762, 139.6503) // Singapore -> Tokyo
	d2 := DistanceKm(35.6762, 139.6503, 1.2897, 103.8501)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("Expected symmetric distance, got %f and %f", d1, d2)
	}
}

func TestDistanceKmKnownDistance(t *testing.T) {
	// Singapore to Tokyo is roughly 5300 km great-circle.
	d := DistanceKm(1.2897, 103.8501, 35.6762, 139.6503)
	if d < 5200 || d > 5400 {
		t.Errorf("Expected Singapore-Tokyo distance near 5300 km, got %f", d)
	}
}

func TestDistanceKmShortRange(t *testing.T) {
	// One degree of latitude is about 111.19 km on the 6371 km sphere.
	d := DistanceKm(0, 0, 1, 0)
	if math.Abs(d-111.19) > 0.5 {
		t.Errorf("Expected ~111.19 km for one degree of latitude, got %f", d)
	}
}
