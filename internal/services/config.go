package services

import (
	"os"
	"strconv"
)

// Thresholds collects the tunable constants of the reconciliation engine.
// Every value has a production default and can be overridden from the
// environment.
type Thresholds struct {
	// ProximityKm is the vessel-to-incident match radius for sea incidents.
	ProximityKm float64
	// DangerMeanSeverity is the mean-severity cutoff for the DANGER risk tier.
	DangerMeanSeverity float64
	// DangerSeverity and CautionSeverity are the per-incident bands used by
	// map visualization and severity labels (High / Medium / Low).
	DangerSeverity  int
	CautionSeverity int
	// ResolutionRatio is the resolved/affected fraction above which an
	// incident is considered cleared by traffic.
	ResolutionRatio float64
}

// DefaultThresholds returns the production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ProximityKm:        15.0,
		DangerMeanSeverity: 7.0,
		DangerSeverity:     8,
		CautionSeverity:    5,
		ResolutionRatio:    0.15,
	}
}

// ThresholdsFromEnv reads overrides from the environment, falling back to
// defaults for anything unset or unparseable.
func ThresholdsFromEnv() Thresholds {
	t := DefaultThresholds()
	t.ProximityKm = envFloat("SEA_PROXIMITY_KM", t.ProximityKm)
	t.DangerMeanSeverity = envFloat("RISK_DANGER_MEAN_SEVERITY", t.DangerMeanSeverity)
	t.DangerSeverity = envInt("SEVERITY_DANGER_BAND", t.DangerSeverity)
	t.CautionSeverity = envInt("SEVERITY_CAUTION_BAND", t.CautionSeverity)
	t.ResolutionRatio = envFloat("RESOLUTION_RATIO", t.ResolutionRatio)
	return t
}

func envFloat(key string, fallback float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
