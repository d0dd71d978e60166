package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/seatrace/backend/internal/logger"
	"github.com/seatrace/backend/internal/models"
	"gorm.io/gorm"
)

// ResolutionService moves incidents from ongoing to resolved. Three
// independent heuristics nominate candidates; an incident resolves when any
// one of them fires. Resolution is terminal.
type ResolutionService struct {
	db         *gorm.DB
	llm        *LLMService
	thresholds Thresholds
	running    atomic.Bool
}

func NewResolutionService(db *gorm.DB, llm *LLMService, thresholds Thresholds) *ResolutionService {
	return &ResolutionService{db: db, llm: llm, thresholds: thresholds}
}

// ResolveIncidents runs one resolution batch over all ongoing incidents.
// Candidates from all heuristics are deduplicated by id so each incident
// resolves exactly once per run.
func (rs *ResolutionService) ResolveIncidents(ctx context.Context) error {
	if !rs.running.CompareAndSwap(false, true) {
		logger.Info("Resolution already running, skipping tick", nil)
		return ErrRunInFlight
	}
	defer rs.running.Store(false)

	var incidents []models.Incident
	if err := rs.db.WithContext(ctx).
		Where("status = ?", models.IncidentOngoing).
		Find(&incidents).Error; err != nil {
		return fmt.Errorf("loading ongoing incidents: %w", err)
	}
	if len(incidents) == 0 {
		return nil
	}

	now := time.Now()
	byDuration := expiredByDuration(incidents, now)
	byTraffic := clearedByTraffic(incidents, rs.thresholds.ResolutionRatio)
	byNews := rs.closedByNews(ctx, incidents)

	toResolve := dedupeIncidents(byDuration, byTraffic, byNews)
	if len(toResolve) == 0 {
		logger.Info("No incidents to resolve", map[string]interface{}{"ongoing": len(incidents)})
		return nil
	}

	var delays []models.Delay
	if err := rs.db.WithContext(ctx).Find(&delays).Error; err != nil {
		return fmt.Errorf("loading delay documents: %w", err)
	}

	for i := range toResolve {
		if err := rs.resolveIncident(ctx, &toResolve[i], delays); err != nil {
			return fmt.Errorf("resolving incident %d: %w", toResolve[i].ID, err)
		}
	}

	logger.Info("Resolution run completed", map[string]interface{}{
		"ongoing":  len(incidents),
		"resolved": len(toResolve),
	})
	return nil
}

// expiredByDuration nominates incidents whose estimated disruption window
// has fully elapsed since creation.
func expiredByDuration(incidents []models.Incident, now time.Time) []models.Incident {
	var out []models.Incident
	for _, incident := range incidents {
		daysPassed := int(now.Sub(incident.CreatedAt).Hours() / 24)
		if daysPassed >= incident.EstimatedDurationDays {
			out = append(out, incident)
		}
	}
	return out
}

// clearedByTraffic nominates incidents where enough of the affected
// shipments have already made it through, a proxy that the disruption no
// longer bites.
func clearedByTraffic(incidents []models.Incident, ratio float64) []models.Incident {
	var out []models.Incident
	for _, incident := range incidents {
		if incident.TotalShipmentsAffected == 0 {
			continue
		}
		resolved := float64(incident.TotalShipmentsResolved) / float64(incident.TotalShipmentsAffected)
		if resolved >= ratio {
			out = append(out, incident)
		}
	}
	return out
}

// closedByNews asks the external text model whether each incident's source
// news reads as concluded. Any failure in the batched call degrades to "no
// incidents resolved by this heuristic".
func (rs *ResolutionService) closedByNews(ctx context.Context, incidents []models.Incident) []models.Incident {
	newsIDs := make([]uint, 0, len(incidents))
	for _, incident := range incidents {
		newsIDs = append(newsIDs, incident.SourceNewsID)
	}

	var newsItems []models.News
	if err := rs.db.WithContext(ctx).Where("id IN ?", newsIDs).Find(&newsItems).Error; err != nil {
		logger.WithError(err, "resolution_service").Error("Failed to load source news, skipping closing-news heuristic")
		return nil
	}
	newsByID := make(map[uint]*models.News, len(newsItems))
	for i := range newsItems {
		newsByID[newsItems[i].ID] = &newsItems[i]
	}

	var batch []IncidentNews
	for _, incident := range incidents {
		news, ok := newsByID[incident.SourceNewsID]
		if !ok {
			continue
		}
		batch = append(batch, IncidentNews{
			IncidentID:    incident.ID,
			Title:         news.Title,
			Details:       news.Details,
			PublishedDate: news.PublishedDate,
		})
	}
	if len(batch) == 0 {
		return nil
	}

	verdicts, err := rs.llm.CheckResolvedIncidents(ctx, batch)
	if err != nil {
		// Fail-safe: the other heuristics and the rest of the run proceed.
		logger.WithError(err, "resolution_service").Warn("Closing-news heuristic unavailable this run")
		return nil
	}

	return selectByVerdict(incidents, verdicts)
}

// selectByVerdict picks the incidents the model judged concluded.
func selectByVerdict(incidents []models.Incident, verdicts map[uint]bool) []models.Incident {
	var out []models.Incident
	for _, incident := range incidents {
		if verdicts[incident.ID] {
			out = append(out, incident)
		}
	}
	return out
}

// dedupeIncidents merges heuristic candidate lists, keeping the first
// occurrence of each incident id.
func dedupeIncidents(lists ...[]models.Incident) []models.Incident {
	seen := make(map[uint]bool)
	var out []models.Incident
	for _, list := range lists {
		for _, incident := range list {
			if seen[incident.ID] {
				continue
			}
			seen[incident.ID] = true
			out = append(out, incident)
		}
	}
	return out
}

// resolveIncident performs the terminal transition and the cascading delay
// cleanup: the incident's references are removed from every delay sub-entry;
// sub-entries (and whole documents) are deleted only once no referencing
// incident remains, so unrelated delay data survives.
func (rs *ResolutionService) resolveIncident(ctx context.Context, incident *models.Incident, delays []models.Delay) error {
	return rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range delays {
			d := &delays[i]
			changed, empty := removeIncidentRefs(d, incident.ID)
			if !changed {
				continue
			}
			if empty {
				if err := tx.Delete(d).Error; err != nil {
					return err
				}
				logger.WithShipment(d.ShipmentID).Info("Deleted empty delay document after resolution")
				continue
			}
			if err := tx.Save(d).Error; err != nil {
				return err
			}
		}

		incident.Status = models.IncidentResolved
		incident.TotalShipmentsResolved = incident.TotalShipmentsAffected
		if err := tx.Save(incident).Error; err != nil {
			return err
		}

		logger.WithResolution(incident.ID, "combined").Info("Incident resolved")
		return nil
	})
}

// removeIncidentRefs strips an incident from a delay document's sub-entries,
// dropping entries left with no contributing incidents. It reports whether
// the document changed and whether it ended up empty.
func removeIncidentRefs(d *models.Delay, incidentID uint) (changed bool, empty bool) {
	var ports models.PortDelayList
	for _, entry := range d.AffectedPorts {
		filtered := removeUint(entry.Incidents, incidentID)
		if len(filtered) != len(entry.Incidents) {
			changed = true
			if len(filtered) == 0 {
				continue
			}
			entry.Incidents = filtered
		}
		ports = append(ports, entry)
	}

	var seas models.SeaDelayList
	for _, entry := range d.SeaDelays {
		filtered := removeUint(entry.Incidents, incidentID)
		if len(filtered) != len(entry.Incidents) {
			changed = true
			if len(filtered) == 0 {
				continue
			}
			entry.Incidents = filtered
		}
		seas = append(seas, entry)
	}

	d.AffectedPorts = ports
	d.SeaDelays = seas
	return changed, len(ports) == 0 && len(seas) == 0
}

func removeUint(ids []uint, id uint) []uint {
	var out []uint
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
