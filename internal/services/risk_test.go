package services

import (
	"testing"

	"github.com/lib/pq"
	"github.com/seatrace/backend/internal/models"
)

func TestClassifySeverities(t *testing.T) {
	tests := []struct {
		name         string
		severities   []int
		expectedTier RiskTier
		expectedMean float64
	}{
		{"no incidents", nil, RiskNotAffected, 0},
		{"single severe", []int{8}, RiskDanger, 8},
		{"single moderate", []int{6}, RiskCaution, 6},
		{"mean exactly at threshold", []int{6, 8}, RiskDanger, 7},
		{"mean below threshold", []int{5, 6}, RiskCaution, 5.5},
		{"minor incident still lifts tier", []int{1}, RiskCaution, 1},
	}

	for _, test := range tests {
		tier, mean := classifySeverities(test.severities, 7.0)
		if tier != test.expectedTier {
			t.Errorf("%s: expected tier %s, got %s", test.name, test.expectedTier, tier)
		}
		if mean != test.expectedMean {
			t.Errorf("%s: expected mean %.1f, got %.1f", test.name, test.expectedMean, mean)
		}
	}
}

func TestSeverityLabel(t *testing.T) {
	thresholds := DefaultThresholds()

	tests := []struct {
		severity int
		expected string
	}{
		{10, "High"},
		{8, "High"},
		{7, "Medium"},
		{5, "Medium"},
		{4, "Low"},
		{0, "Low"},
	}

	for _, test := range tests {
		if got := severityLabel(test.severity, thresholds); got != test.expected {
			t.Errorf("severity %d: expected %s, got %s", test.severity, test.expected, got)
		}
	}
}

func TestHighestRouteSeverity(t *testing.T) {
	shipment := &models.Shipment{OriginPort: "CNTAO", DestinationPort: "SGSIN"}

	incidents := []models.Incident{
		{ID: 1, AffectedPorts: pq.StringArray{"SGSIN"}, Severity: 5},
		{ID: 2, AffectedPorts: pq.StringArray{"CNTAO"}, Severity: 7},
		{ID: 3, AffectedPorts: pq.StringArray{"USLAX"}, Severity: 9},
	}

	if got := highestRouteSeverity(shipment, incidents); got != 7 {
		t.Errorf("Expected highest route severity 7, got %d", got)
	}

	unaffected := &models.Shipment{OriginPort: "DEHAM", DestinationPort: "JPTYO"}
	if got := highestRouteSeverity(unaffected, incidents); got != 0 {
		t.Errorf("Expected 0 for untouched route, got %d", got)
	}
}

func TestPeakSeverity(t *testing.T) {
	incidents := map[uint]*models.Incident{
		1: {ID: 1, Severity: 5},
		2: {ID: 2, Severity: 8},
	}

	if got := peakSeverity([]uint{1, 2}, incidents); got != 8 {
		t.Errorf("Expected peak 8, got %d", got)
	}
	// References to incidents missing from the lookup are ignored.
	if got := peakSeverity([]uint{1, 99}, incidents); got != 5 {
		t.Errorf("Expected peak 5 with missing reference, got %d", got)
	}
	if got := peakSeverity(nil, incidents); got != 0 {
		t.Errorf("Expected 0 for no references, got %d", got)
	}
}

func TestAddMarkerBuckets(t *testing.T) {
	thresholds := DefaultThresholds()
	data := &MapData{}

	addMarker(data, 8, thresholds, [2]float64{1.26, 103.84}, "Singapore")
	addMarker(data, 6, thresholds, [2]float64{33.74, -118.27}, "Los Angeles")

	if len(data.Danger.Coordinates) != 1 || data.Danger.Names[0] != "Singapore" {
		t.Errorf("Expected severity 8 in the danger group, got %+v", data.Danger)
	}
	if len(data.Caution.Coordinates) != 1 || data.Caution.Names[0] != "Los Angeles" {
		t.Errorf("Expected severity 6 in the caution group, got %+v", data.Caution)
	}
	if data.Danger.Radius[0] != mapMarkerRadiusKm {
		t.Errorf("Expected marker radius %.1f, got %.1f", mapMarkerRadiusKm, data.Danger.Radius[0])
	}
}

func TestBuildMapDataThreeGroups(t *testing.T) {
	thresholds := DefaultThresholds()

	delays := []models.Delay{
		{
			ShipmentID: 100,
			AffectedPorts: models.PortDelayList{
				{PortCode: "SGSIN", DelayDays: 3, Incidents: []uint{1}},
			},
			SeaDelays: models.SeaDelayList{
				{Latitude: 25.7, Longitude: -80.1, DelayDays: 2, Incidents: []uint{2}},
			},
		},
	}
	incidents := map[uint]*models.Incident{
		1: {ID: 1, Severity: 8},
		2: {ID: 2, Severity: 6},
	}
	ports := map[string]*models.Port{
		"SGSIN": {PortCode: "SGSIN", PortName: "Singapore", Latitude: floatPtr(1.26), Longitude: floatPtr(103.84)},
	}
	undelayed := []models.VesselTracking{
		{ID: 11, VesselName: "Container Ship Gamma", Latitude: 34.0, Longitude: -119.0},
	}

	data := buildMapData(delays, incidents, ports, undelayed, thresholds)

	if len(data.Danger.Names) != 1 || data.Danger.Names[0] != "Singapore" {
		t.Errorf("Expected severity 8 port in the danger group, got %+v", data.Danger)
	}
	if len(data.Caution.Names) != 1 || data.Caution.Names[0] != "Sea Incident" {
		t.Errorf("Expected severity 6 sea entry in the caution group, got %+v", data.Caution)
	}
	if len(data.Normal.Names) != 1 || data.Normal.Names[0] != "Container Ship Gamma" {
		t.Errorf("Expected un-delayed vessel in the normal group, got %+v", data.Normal)
	}
	if data.Normal.Coordinates[0] != [2]float64{34.0, -119.0} {
		t.Errorf("Expected vessel position marker, got %v", data.Normal.Coordinates[0])
	}
	if data.Normal.Radius[0] != normalMarkerRadiusKm {
		t.Errorf("Expected normal marker radius %.1f, got %.1f", normalMarkerRadiusKm, data.Normal.Radius[0])
	}
}

func TestBuildMapDataNoUndelayedVessels(t *testing.T) {
	data := buildMapData(nil, nil, nil, nil, DefaultThresholds())
	if len(data.Normal.Coordinates) != 0 {
		t.Errorf("Expected empty normal group, got %+v", data.Normal)
	}
}

func TestDelayIncidentIDsDistinct(t *testing.T) {
	d := &models.Delay{
		AffectedPorts: models.PortDelayList{
			{PortCode: "SGSIN", Incidents: []uint{1, 2}},
			{PortCode: "USLAX", Incidents: []uint{2}},
		},
		SeaDelays: models.SeaDelayList{
			{Latitude: 25.7, Longitude: -80.1, Incidents: []uint{3, 1}},
		},
	}

	ids := d.IncidentIDs()
	if len(ids) != 3 {
		t.Errorf("Expected 3 distinct ids, got %v", ids)
	}
	if !d.References(3) {
		t.Error("Expected document to reference incident 3")
	}
	if d.References(99) {
		t.Error("Document must not report references it does not hold")
	}
}
