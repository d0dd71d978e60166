package services

import (
	"math"
	"sort"
	"time"

	"github.com/seatrace/backend/internal/models"
)

// delayInterval is one incident's active window for merge purposes. End is
// clamped to "now" by the caller since a still-open incident cannot
// contribute delay beyond the present. DelayDays keeps the incident's stated
// duration so a merged run never reports less than its worst constituent.
type delayInterval struct {
	Start     time.Time
	End       time.Time
	DelayDays int
}

// mergeIntervals collapses overlapping intervals into non-overlapping runs.
// A run absorbs any interval starting at or before the run's current end;
// the run's end becomes the max of the two ends and its DelayDays the max of
// the two estimates. Overlapping disruptions at the same port do not stack
// linearly: the realistic worst case is bounded by the longest contributor.
func mergeIntervals(intervals []delayInterval) []delayInterval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]delayInterval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []delayInterval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			if iv.DelayDays > last.DelayDays {
				last.DelayDays = iv.DelayDays
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// mergedDelayDays computes the total delay estimate over a set of incident
// windows: each merged run contributes the larger of its elapsed span in days
// and its peak constituent's stated duration.
func mergedDelayDays(intervals []delayInterval) int {
	total := 0
	for _, run := range mergeIntervals(intervals) {
		span := spanDays(run.Start, run.End)
		if run.DelayDays > span {
			span = run.DelayDays
		}
		total += span
	}
	return total
}

// portDelayEstimate folds a new incident into the delay history of one port:
// it rebuilds the merged estimate over all previously processed incidents
// that affect the port plus the incident being processed. The result replaces
// any prior estimate for the port; it is never added to one.
func portDelayEstimate(portCode string, incident *models.Incident, processed []models.Incident, now time.Time) int {
	intervals := []delayInterval{incidentInterval(incident, now)}
	for i := range processed {
		p := &processed[i]
		if p.ID == incident.ID || p.LocationType != models.LocationPort {
			continue
		}
		if p.AffectsPort(portCode) {
			intervals = append(intervals, incidentInterval(p, now))
		}
	}
	return mergedDelayDays(intervals)
}

func incidentInterval(incident *models.Incident, now time.Time) delayInterval {
	end := incident.EstimatedEnd()
	if end.After(now) {
		end = now
	}
	return delayInterval{
		Start:     incident.StartTime,
		End:       end,
		DelayDays: incident.EstimatedDurationDays,
	}
}

// remainingDelayDays is the sea-incident estimate: whole days left until the
// incident's projected end, floored at zero. Sea delays are not merged across
// incidents; each contributes independently.
func remainingDelayDays(incident *models.Incident, now time.Time) int {
	remaining := spanDays(now, incident.EstimatedEnd())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// spanDays is the elapsed span between two instants in whole days, rounded
// up. Negative spans (end before start, possible after clamping) yield 0.
func spanDays(start, end time.Time) int {
	hours := end.Sub(start).Hours()
	if hours <= 0 {
		return 0
	}
	return int(math.Ceil(hours / 24))
}
