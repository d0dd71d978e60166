package services

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/seatrace/backend/internal/models"
)

func day(base time.Time, offset int) time.Time {
	return base.AddDate(0, 0, offset)
}

func TestMergeIntervalsOverlapping(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	intervals := []delayInterval{
		{Start: day(base, 0), End: day(base, 5), DelayDays: 5},
		{Start: day(base, 2), End: day(base, 7), DelayDays: 5},
	}

	merged := mergeIntervals(intervals)
	if len(merged) != 1 {
		t.Fatalf("Expected 1 merged run, got %d", len(merged))
	}
	if !merged[0].Start.Equal(day(base, 0)) || !merged[0].End.Equal(day(base, 7)) {
		t.Errorf("Expected merged run [0,7], got [%v,%v]", merged[0].Start, merged[0].End)
	}
	if merged[0].DelayDays != 5 {
		t.Errorf("Expected merged DelayDays 5 (max of constituents), got %d", merged[0].DelayDays)
	}
}

func TestMergeIntervalsDisjoint(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	intervals := []delayInterval{
		{Start: day(base, 0), End: day(base, 2), DelayDays: 2},
		{Start: day(base, 5), End: day(base, 8), DelayDays: 3},
	}

	merged := mergeIntervals(intervals)
	if len(merged) != 2 {
		t.Fatalf("Expected 2 disjoint runs, got %d", len(merged))
	}
}

func TestMergedDelayDaysDoesNotStackOverlaps(t *testing.T) {
	// Incident A: start day 0, duration 5. Incident B: start day 2,
	// duration 5. The merged estimate is the elapsed merged span (7), not
	// the 10-day linear sum.
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	intervals := []delayInterval{
		{Start: day(base, 0), End: day(base, 5), DelayDays: 5},
		{Start: day(base, 2), End: day(base, 7), DelayDays: 5},
	}

	if got := mergedDelayDays(intervals); got != 7 {
		t.Errorf("Expected merged delay of 7 days, got %d", got)
	}
}

func TestMergedDelayDaysPeakDurationFloor(t *testing.T) {
	// A run never reports less than its worst constituent's stated
	// duration, even when the elapsed span is shorter.
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	intervals := []delayInterval{
		{Start: day(base, 0), End: day(base, 2), DelayDays: 6},
	}

	if got := mergedDelayDays(intervals); got != 6 {
		t.Errorf("Expected peak duration 6 to floor the estimate, got %d", got)
	}
}

func TestPortDelayEstimateUsesProcessedHistory(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := day(base, 10)

	processed := []models.Incident{
		{
			ID:                    1,
			LocationType:          models.LocationPort,
			AffectedPorts:         pq.StringArray{"SGSIN"},
			StartTime:             day(base, 0),
			EstimatedDurationDays: 5,
			DelayUpdated:          true,
		},
	}
	current := &models.Incident{
		ID:                    2,
		LocationType:          models.LocationPort,
		AffectedPorts:         pq.StringArray{"SGSIN"},
		StartTime:             day(base, 2),
		EstimatedDurationDays: 5,
	}

	if got := portDelayEstimate("SGSIN", current, processed, now); got != 7 {
		t.Errorf("Expected merged estimate 7 for overlapping incidents, got %d", got)
	}

	// History for a different port must not leak into the estimate.
	if got := portDelayEstimate("USLAX", current, processed, now); got != 5 {
		t.Errorf("Expected estimate 5 without unrelated history, got %d", got)
	}
}

func TestIncidentIntervalClampedToNow(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := day(base, 3)

	incident := &models.Incident{
		StartTime:             day(base, 0),
		EstimatedDurationDays: 10,
	}

	iv := incidentInterval(incident, now)
	if !iv.End.Equal(now) {
		t.Errorf("Expected interval end clamped to now, got %v", iv.End)
	}
}

func TestRemainingDelayDays(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		start    time.Time
		duration int
		now      time.Time
		expected int
	}{
		{"three days remaining", day(base, -2), 5, base, 3},
		{"already elapsed", day(base, -10), 5, base, 0},
		{"ends exactly now", day(base, -5), 5, base, 0},
	}

	for _, test := range tests {
		incident := &models.Incident{StartTime: test.start, EstimatedDurationDays: test.duration}
		if got := remainingDelayDays(incident, test.now); got != test.expected {
			t.Errorf("%s: expected %d, got %d", test.name, test.expected, got)
		}
	}
}

func TestSpanDaysRoundsUp(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if got := spanDays(base, base.Add(36*time.Hour)); got != 2 {
		t.Errorf("Expected 36h to round up to 2 days, got %d", got)
	}
	if got := spanDays(base, base); got != 0 {
		t.Errorf("Expected 0 for identical instants, got %d", got)
	}
	if got := spanDays(base, base.Add(-time.Hour)); got != 0 {
		t.Errorf("Expected 0 for negative span, got %d", got)
	}
}
