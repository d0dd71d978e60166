package services

import "testing"

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	if th.ProximityKm != 15.0 {
		t.Errorf("Expected proximity radius 15.0, got %f", th.ProximityKm)
	}
	if th.DangerMeanSeverity != 7.0 {
		t.Errorf("Expected danger mean severity 7.0, got %f", th.DangerMeanSeverity)
	}
	if th.ResolutionRatio != 0.15 {
		t.Errorf("Expected resolution ratio 0.15, got %f", th.ResolutionRatio)
	}
}

func TestThresholdsFromEnv(t *testing.T) {
	t.Setenv("SEA_PROXIMITY_KM", "25.5")
	t.Setenv("RESOLUTION_RATIO", "0.3")
	t.Setenv("SEVERITY_DANGER_BAND", "not-a-number")

	th := ThresholdsFromEnv()
	if th.ProximityKm != 25.5 {
		t.Errorf("Expected overridden proximity 25.5, got %f", th.ProximityKm)
	}
	if th.ResolutionRatio != 0.3 {
		t.Errorf("Expected overridden ratio 0.3, got %f", th.ResolutionRatio)
	}
	if th.DangerSeverity != 8 {
		t.Errorf("Expected unparseable override to fall back to 8, got %d", th.DangerSeverity)
	}
}
