package services

import (
	"testing"
	"time"

	"github.com/seatrace/backend/internal/models"
)

func TestExpiredByDuration(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		created  time.Time
		duration int
		expired  bool
	}{
		{"window elapsed", now.AddDate(0, 0, -4), 3, true},
		{"window elapsing today", now.AddDate(0, 0, -3), 3, true},
		{"window still open", now.AddDate(0, 0, -2), 3, false},
		{"created just now", now, 3, false},
	}

	for _, test := range tests {
		incidents := []models.Incident{{
			ID:                    1,
			EstimatedDurationDays: test.duration,
			CreatedAt:             test.created,
		}}
		got := expiredByDuration(incidents, now)
		if (len(got) == 1) != test.expired {
			t.Errorf("%s: expected expired=%v, got %d candidates", test.name, test.expired, len(got))
		}
	}
}

func TestClearedByTraffic(t *testing.T) {
	tests := []struct {
		name     string
		affected int
		resolved int
		cleared  bool
	}{
		{"above ratio", 10, 2, true},
		{"exactly at ratio", 20, 3, true},
		{"below ratio", 10, 1, false},
		{"nothing affected", 0, 0, false},
	}

	for _, test := range tests {
		incidents := []models.Incident{{
			ID:                     1,
			TotalShipmentsAffected: test.affected,
			TotalShipmentsResolved: test.resolved,
		}}
		got := clearedByTraffic(incidents, 0.15)
		if (len(got) == 1) != test.cleared {
			t.Errorf("%s: expected cleared=%v, got %d candidates", test.name, test.cleared, len(got))
		}
	}
}

func TestDedupeIncidents(t *testing.T) {
	a := models.Incident{ID: 1}
	b := models.Incident{ID: 2}
	c := models.Incident{ID: 3}

	// Incident 2 is nominated by two heuristics; it must resolve once.
	got := dedupeIncidents([]models.Incident{a, b}, []models.Incident{b, c}, nil)
	if len(got) != 3 {
		t.Fatalf("Expected 3 distinct incidents, got %d", len(got))
	}
	seen := make(map[uint]int)
	for _, incident := range got {
		seen[incident.ID]++
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("Incident %d appears %d times", id, count)
		}
	}
}

func TestSelectByVerdict(t *testing.T) {
	incidents := []models.Incident{{ID: 1}, {ID: 2}, {ID: 3}}
	verdicts := map[uint]bool{1: true, 2: false}

	got := selectByVerdict(incidents, verdicts)
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("Expected only incident 1 selected, got %v", got)
	}
}

func TestRemoveIncidentRefsKeepsSharedEntries(t *testing.T) {
	d := &models.Delay{
		AffectedPorts: models.PortDelayList{
			{PortCode: "SGSIN", DelayDays: 5, Incidents: []uint{1, 2}},
		},
		SeaDelays: models.SeaDelayList{},
	}

	changed, empty := removeIncidentRefs(d, 1)
	if !changed {
		t.Error("Expected the document to report a change")
	}
	if empty {
		t.Error("Entry still referenced by incident 2 must survive")
	}
	if len(d.AffectedPorts) != 1 {
		t.Fatalf("Expected port entry to survive, got %d entries", len(d.AffectedPorts))
	}
	if refs := d.AffectedPorts[0].Incidents; len(refs) != 1 || refs[0] != 2 {
		t.Errorf("Expected remaining reference [2], got %v", refs)
	}
}

func TestRemoveIncidentRefsDropsOrphanedEntries(t *testing.T) {
	d := &models.Delay{
		AffectedPorts: models.PortDelayList{
			{PortCode: "SGSIN", DelayDays: 5, Incidents: []uint{1}},
			{PortCode: "USLAX", DelayDays: 2, Incidents: []uint{2}},
		},
	}

	changed, empty := removeIncidentRefs(d, 1)
	if !changed || empty {
		t.Fatalf("Expected changed=true empty=false, got changed=%v empty=%v", changed, empty)
	}
	if len(d.AffectedPorts) != 1 || d.AffectedPorts[0].PortCode != "USLAX" {
		t.Errorf("Expected only the USLAX entry to survive, got %v", d.AffectedPorts)
	}
}

func TestRemoveIncidentRefsEmptiesDocument(t *testing.T) {
	d := &models.Delay{
		AffectedPorts: models.PortDelayList{
			{PortCode: "SGSIN", DelayDays: 5, Incidents: []uint{1}},
		},
		SeaDelays: models.SeaDelayList{
			{Latitude: 25.7, Longitude: -80.1, DelayDays: 3, Incidents: []uint{1}},
		},
	}

	changed, empty := removeIncidentRefs(d, 1)
	if !changed || !empty {
		t.Errorf("Expected changed=true empty=true, got changed=%v empty=%v", changed, empty)
	}
}

func TestRemoveIncidentRefsUnrelatedIncident(t *testing.T) {
	d := &models.Delay{
		AffectedPorts: models.PortDelayList{
			{PortCode: "SGSIN", DelayDays: 5, Incidents: []uint{2}},
		},
	}

	changed, empty := removeIncidentRefs(d, 1)
	if changed {
		t.Error("Unreferenced incident must not change the document")
	}
	if empty {
		t.Error("Document with surviving entries must not report empty")
	}
}
