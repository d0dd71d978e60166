package services

import (
	"time"

	"github.com/seatrace/backend/internal/geo"
	"github.com/seatrace/backend/internal/logger"
	"github.com/seatrace/backend/internal/models"
)

// reconcileState is one run's working set, batch-fetched up front so the
// matching loop never goes back to the database. Incidents must be ordered by
// creation time ascending: the merge step for a port has to see every
// already-processed incident before a later one is folded in.
type reconcileState struct {
	now        time.Time
	thresholds Thresholds

	incidents []*models.Incident // candidates for matching
	processed []models.Incident  // delay_updated == true history
	vessels   []models.VesselTracking
	shipments map[uint]*models.Shipment // keyed by tracking id
	delays    map[uint]*models.Delay    // keyed by shipment id

	dirtyDelays    map[uint]bool // shipment ids with modified delay docs
	dirtyIncidents map[uint]bool
}

func newReconcileState(now time.Time, thresholds Thresholds) *reconcileState {
	return &reconcileState{
		now:            now,
		thresholds:     thresholds,
		shipments:      make(map[uint]*models.Shipment),
		delays:         make(map[uint]*models.Delay),
		dirtyDelays:    make(map[uint]bool),
		dirtyIncidents: make(map[uint]bool),
	}
}

// matchIncidents runs the matcher over every pending incident. Incidents
// already folded into delay records (delay_updated) are skipped, which makes
// repeated runs over the same data no-ops.
func matchIncidents(st *reconcileState) {
	for _, incident := range st.incidents {
		if incident.DelayUpdated {
			continue
		}

		switch incident.LocationType {
		case models.LocationPort:
			matchPortIncident(st, incident)
		case models.LocationSea:
			matchSeaIncident(st, incident)
		default:
			logger.Warn("Skipping incident with unknown location type", map[string]interface{}{
				"incident_id":   incident.ID,
				"location_type": incident.LocationType,
			})
		}

		incident.DelayUpdated = true
		st.dirtyIncidents[incident.ID] = true
		st.processed = append(st.processed, *incident)
	}
}

// matchPortIncident finds every vessel with a still-pending scheduled call at
// one of the incident's affected ports and folds the incident into the
// owning shipment's delay record. The affected counter tracks distinct
// shipments, not match events.
func matchPortIncident(st *reconcileState, incident *models.Incident) {
	matched := make(map[uint]bool)

	for _, portCode := range incident.AffectedPorts {
		for i := range st.vessels {
			vessel := &st.vessels[i]
			if !vessel.HasPendingCall(portCode) {
				continue
			}

			shipment, ok := st.shipments[vessel.ID]
			if !ok {
				logger.Warn("No shipment found for vessel, skipping match", map[string]interface{}{
					"incident_id": incident.ID,
					"vessel_id":   vessel.ID,
					"port_code":   portCode,
				})
				continue
			}

			delayDays := portDelayEstimate(portCode, incident, st.processed, st.now)
			upsertPortEntry(st, shipment.ID, incident, portCode, delayDays)
			matched[shipment.ID] = true
		}
	}

	incident.TotalShipmentsAffected += len(matched)
	if len(matched) > 0 {
		logger.WithIncident(incident.ID, string(incident.LocationType)).
			WithField("shipments_matched", len(matched)).
			Info("Port incident matched to shipments")
	}
}

// matchSeaIncident finds in-transit vessels within the proximity radius of
// the incident coordinate. A missing coordinate is a data contract violation
// that should have been rejected at ingestion; here it simply matches
// nothing.
func matchSeaIncident(st *reconcileState, incident *models.Incident) {
	if !incident.HasCoordinate() {
		logger.Warn("Sea incident without coordinate, treating as no match", map[string]interface{}{
			"incident_id": incident.ID,
		})
		return
	}

	matched := make(map[uint]bool)
	delayDays := remainingDelayDays(incident, st.now)

	for i := range st.vessels {
		vessel := &st.vessels[i]
		if vessel.Status != models.VesselInTransit {
			continue
		}

		distance := geo.DistanceKm(vessel.Latitude, vessel.Longitude, *incident.Latitude, *incident.Longitude)
		if distance > st.thresholds.ProximityKm {
			continue
		}

		shipment, ok := st.shipments[vessel.ID]
		if !ok {
			logger.Warn("No shipment found for vessel, skipping match", map[string]interface{}{
				"incident_id": incident.ID,
				"vessel_id":   vessel.ID,
			})
			continue
		}

		upsertSeaEntry(st, shipment.ID, incident, delayDays)
		matched[shipment.ID] = true
	}

	incident.TotalShipmentsAffected += len(matched)
	if len(matched) > 0 {
		logger.WithIncident(incident.ID, string(incident.LocationType)).
			WithField("shipments_matched", len(matched)).
			Info("Sea incident matched to shipments")
	}
}

// delayFor returns the shipment's delay document, creating one typed after
// the first contributing incident when absent.
func delayFor(st *reconcileState, shipmentID uint, incident *models.Incident) *models.Delay {
	if d, ok := st.delays[shipmentID]; ok {
		return d
	}
	d := &models.Delay{
		ShipmentID:    shipmentID,
		LocationType:  incident.LocationType,
		AffectedPorts: models.PortDelayList{},
		SeaDelays:     models.SeaDelayList{},
	}
	st.delays[shipmentID] = d
	return d
}

// upsertPortEntry sets the merged estimate on the shipment's entry for the
// port, creating the entry on first contact. The estimate replaces the old
// value because the merge already accounts for history; the incident set is
// deduplicated.
func upsertPortEntry(st *reconcileState, shipmentID uint, incident *models.Incident, portCode string, delayDays int) {
	d := delayFor(st, shipmentID, incident)

	for i := range d.AffectedPorts {
		entry := &d.AffectedPorts[i]
		if entry.PortCode != portCode {
			continue
		}
		entry.DelayDays = delayDays
		entry.Incidents = appendIncidentID(entry.Incidents, incident.ID)
		entry.UpdatedAt = st.now
		st.dirtyDelays[shipmentID] = true
		return
	}

	d.AffectedPorts = append(d.AffectedPorts, models.PortDelayEntry{
		PortCode:  portCode,
		DelayDays: delayDays,
		Incidents: []uint{incident.ID},
		UpdatedAt: st.now,
	})
	st.dirtyDelays[shipmentID] = true
}

// upsertSeaEntry is the open-water counterpart, keyed by the incident
// coordinate.
func upsertSeaEntry(st *reconcileState, shipmentID uint, incident *models.Incident, delayDays int) {
	d := delayFor(st, shipmentID, incident)
	lat, lon := *incident.Latitude, *incident.Longitude

	for i := range d.SeaDelays {
		entry := &d.SeaDelays[i]
		if entry.Latitude != lat || entry.Longitude != lon {
			continue
		}
		entry.DelayDays = delayDays
		entry.Incidents = appendIncidentID(entry.Incidents, incident.ID)
		entry.UpdatedAt = st.now
		st.dirtyDelays[shipmentID] = true
		return
	}

	d.SeaDelays = append(d.SeaDelays, models.SeaDelayEntry{
		Latitude:  lat,
		Longitude: lon,
		DelayDays: delayDays,
		Incidents: []uint{incident.ID},
		UpdatedAt: st.now,
	})
	st.dirtyDelays[shipmentID] = true
}

func appendIncidentID(ids []uint, id uint) []uint {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// totalDelayDays sums the merged per-location estimates of a delay document.
// Distinct locations represent independent route segments and are additive;
// same-location double counting was already collapsed by the merge.
func totalDelayDays(d *models.Delay) int {
	if d == nil {
		return 0
	}
	total := 0
	for _, p := range d.AffectedPorts {
		total += p.DelayDays
	}
	for _, s := range d.SeaDelays {
		total += s.DelayDays
	}
	return total
}
