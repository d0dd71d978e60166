package services

import (
	"errors"
	"fmt"

	"github.com/seatrace/backend/internal/models"
	"gorm.io/gorm"
)

// RiskTier is the dashboard classification of a shipment's exposure.
type RiskTier string

const (
	RiskNotAffected RiskTier = "NOT_AFFECTED"
	RiskCaution     RiskTier = "CAUTION"
	RiskDanger      RiskTier = "DANGER"
)

// RiskService derives risk tiers, per-client shipment statistics and map
// marker groups from the delay documents the reconciliation engine writes.
type RiskService struct {
	db         *gorm.DB
	thresholds Thresholds
}

func NewRiskService(db *gorm.DB, thresholds Thresholds) *RiskService {
	return &RiskService{db: db, thresholds: thresholds}
}

// ShipmentRisk is the classification result for one shipment.
type ShipmentRisk struct {
	ShipmentID      uint     `json:"shipmentId"`
	Tier            RiskTier `json:"tier"`
	AverageSeverity float64  `json:"averageSeverity"`
	TotalIncidents  int      `json:"totalIncidents"`
}

// ClassifyShipment maps the mean severity of a shipment's contributing
// incidents to a risk tier. No delay document or no resolvable incidents
// means NOT_AFFECTED.
func (rs *RiskService) ClassifyShipment(shipmentID uint) (*ShipmentRisk, error) {
	risk := &ShipmentRisk{ShipmentID: shipmentID, Tier: RiskNotAffected}

	var delay models.Delay
	err := rs.db.Where("shipment_id = ?", shipmentID).First(&delay).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return risk, nil
	}
	if err != nil {
		return nil, err
	}

	incidentIDs := delay.IncidentIDs()
	if len(incidentIDs) == 0 {
		return risk, nil
	}

	var incidents []models.Incident
	if err := rs.db.Where("id IN ?", incidentIDs).Find(&incidents).Error; err != nil {
		return nil, fmt.Errorf("loading contributing incidents: %w", err)
	}

	severities := make([]int, 0, len(incidents))
	for _, incident := range incidents {
		severities = append(severities, incident.Severity)
	}

	risk.Tier, risk.AverageSeverity = classifySeverities(severities, rs.thresholds.DangerMeanSeverity)
	risk.TotalIncidents = len(severities)
	return risk, nil
}

// classifySeverities computes the arithmetic mean severity and the resulting
// tier. Any contributing incident at all lifts the shipment out of
// NOT_AFFECTED.
func classifySeverities(severities []int, dangerMean float64) (RiskTier, float64) {
	if len(severities) == 0 {
		return RiskNotAffected, 0
	}
	sum := 0
	for _, s := range severities {
		sum += s
	}
	mean := float64(sum) / float64(len(severities))
	if mean >= dangerMean {
		return RiskDanger, mean
	}
	return RiskCaution, mean
}

// SeverityLabel is the High/Medium/Low band shown on incident listings.
func (rs *RiskService) SeverityLabel(severity int) string {
	return severityLabel(severity, rs.thresholds)
}

// severityLabel is the High/Medium/Low band used for map markers and
// incident listings.
func severityLabel(severity int, t Thresholds) string {
	switch {
	case severity >= t.DangerSeverity:
		return "High"
	case severity >= t.CautionSeverity:
		return "Medium"
	default:
		return "Low"
	}
}

// ShipmentStatistics are the per-client dashboard counters.
type ShipmentStatistics struct {
	InTransit    int `json:"shipmentInTransit"`
	NotAffected  int `json:"shipmentNotAffected"`
	UnderCaution int `json:"shipmentUnderCaution"`
	UnderDanger  int `json:"shipmentUnderDanger"`
}

// GetShipmentStatistics classifies every shipment of a client against the
// ongoing incidents touching its origin or destination port.
func (rs *RiskService) GetShipmentStatistics(clientID uint) (*ShipmentStatistics, error) {
	var shipments []models.Shipment
	if err := rs.db.Where("client_id = ?", clientID).Find(&shipments).Error; err != nil {
		return nil, err
	}

	var incidents []models.Incident
	if err := rs.db.
		Where("status = ? AND location_type = ?", models.IncidentOngoing, models.LocationPort).
		Find(&incidents).Error; err != nil {
		return nil, err
	}

	trackingIDs := make([]uint, 0, len(shipments))
	for _, s := range shipments {
		trackingIDs = append(trackingIDs, s.TrackingID)
	}
	var vessels []models.VesselTracking
	if len(trackingIDs) > 0 {
		if err := rs.db.Where("id IN ?", trackingIDs).Find(&vessels).Error; err != nil {
			return nil, err
		}
	}
	vesselByID := make(map[uint]*models.VesselTracking, len(vessels))
	for i := range vessels {
		vesselByID[vessels[i].ID] = &vessels[i]
	}

	stats := &ShipmentStatistics{}
	for _, shipment := range shipments {
		if vessel, ok := vesselByID[shipment.TrackingID]; ok && vessel.Status == models.VesselInTransit {
			stats.InTransit++
		}

		highest := highestRouteSeverity(&shipment, incidents)
		switch {
		case highest >= rs.thresholds.DangerSeverity:
			stats.UnderDanger++
		case highest >= rs.thresholds.CautionSeverity:
			stats.UnderCaution++
		default:
			stats.NotAffected++
		}
	}
	return stats, nil
}

// highestRouteSeverity returns the worst ongoing incident severity touching
// the shipment's origin or destination port, 0 when none does.
func highestRouteSeverity(shipment *models.Shipment, incidents []models.Incident) int {
	highest := 0
	for i := range incidents {
		incident := &incidents[i]
		if incident.AffectsPort(shipment.OriginPort) || incident.AffectsPort(shipment.DestinationPort) {
			if incident.Severity > highest {
				highest = incident.Severity
			}
		}
	}
	return highest
}

// MarkerGroup is one severity bucket of map markers.
type MarkerGroup struct {
	Coordinates [][2]float64 `json:"coordinates"`
	Names       []string     `json:"names"`
	Radius      []float64    `json:"radius"`
}

// MapData buckets a client's shipments for map rendering: delay locations in
// the danger/caution groups by severity band, and the vessel positions of
// un-delayed shipments in the normal group.
type MapData struct {
	Danger  MarkerGroup `json:"danger"`
	Caution MarkerGroup `json:"caution"`
	Normal  MarkerGroup `json:"normal"`
}

const (
	mapMarkerRadiusKm    = 15.0
	normalMarkerRadiusKm = 5.0
)

// GetMapData builds the map marker groups for a client: delay locations
// bucketed danger/caution by severity band, plus the vessel positions of
// shipments that currently have no delay document.
func (rs *RiskService) GetMapData(clientID uint) (*MapData, error) {
	var shipments []models.Shipment
	if err := rs.db.Where("client_id = ?", clientID).Find(&shipments).Error; err != nil {
		return nil, err
	}
	shipmentIDs := make([]uint, 0, len(shipments))
	for _, s := range shipments {
		shipmentIDs = append(shipmentIDs, s.ID)
	}

	data := &MapData{}
	if len(shipmentIDs) == 0 {
		return data, nil
	}

	var delays []models.Delay
	if err := rs.db.Where("shipment_id IN ?", shipmentIDs).Find(&delays).Error; err != nil {
		return nil, err
	}

	incidentIDs := make(map[uint]bool)
	portCodes := make(map[string]bool)
	for i := range delays {
		for _, id := range delays[i].IncidentIDs() {
			incidentIDs[id] = true
		}
		for _, p := range delays[i].AffectedPorts {
			portCodes[p.PortCode] = true
		}
	}

	incidentByID := make(map[uint]*models.Incident)
	if len(incidentIDs) > 0 {
		ids := make([]uint, 0, len(incidentIDs))
		for id := range incidentIDs {
			ids = append(ids, id)
		}
		var incidents []models.Incident
		if err := rs.db.Where("id IN ?", ids).Find(&incidents).Error; err != nil {
			return nil, err
		}
		for i := range incidents {
			incidentByID[incidents[i].ID] = &incidents[i]
		}
	}

	portByCode := make(map[string]*models.Port)
	if len(portCodes) > 0 {
		codes := make([]string, 0, len(portCodes))
		for code := range portCodes {
			codes = append(codes, code)
		}
		var ports []models.Port
		if err := rs.db.Where("port_code IN ?", codes).Find(&ports).Error; err != nil {
			return nil, err
		}
		for i := range ports {
			portByCode[ports[i].PortCode] = &ports[i]
		}
	}

	delayedShipments := make(map[uint]bool, len(delays))
	for i := range delays {
		delayedShipments[delays[i].ShipmentID] = true
	}
	undelayedTrackingIDs := make([]uint, 0, len(shipments))
	for _, s := range shipments {
		if !delayedShipments[s.ID] {
			undelayedTrackingIDs = append(undelayedTrackingIDs, s.TrackingID)
		}
	}
	var undelayedVessels []models.VesselTracking
	if len(undelayedTrackingIDs) > 0 {
		if err := rs.db.Where("id IN ?", undelayedTrackingIDs).Find(&undelayedVessels).Error; err != nil {
			return nil, err
		}
	}

	return buildMapData(delays, incidentByID, portByCode, undelayedVessels, rs.thresholds), nil
}

// buildMapData assembles the marker groups from a batch-fetched working set.
// Delay locations land in danger or caution by their peak contributing
// severity; vessels of shipments without a delay document land in normal at
// their current position.
func buildMapData(delays []models.Delay, incidentByID map[uint]*models.Incident, portByCode map[string]*models.Port, undelayedVessels []models.VesselTracking, t Thresholds) *MapData {
	data := &MapData{}

	for i := range delays {
		d := &delays[i]
		for _, entry := range d.AffectedPorts {
			port, ok := portByCode[entry.PortCode]
			if !ok || port.Latitude == nil || port.Longitude == nil {
				continue
			}
			severity := peakSeverity(entry.Incidents, incidentByID)
			addMarker(data, severity, t, [2]float64{*port.Latitude, *port.Longitude}, port.PortName)
		}
		for _, entry := range d.SeaDelays {
			severity := peakSeverity(entry.Incidents, incidentByID)
			addMarker(data, severity, t, [2]float64{entry.Latitude, entry.Longitude}, "Sea Incident")
		}
	}

	for i := range undelayedVessels {
		vessel := &undelayedVessels[i]
		data.Normal.Coordinates = append(data.Normal.Coordinates, [2]float64{vessel.Latitude, vessel.Longitude})
		data.Normal.Names = append(data.Normal.Names, vessel.VesselName)
		data.Normal.Radius = append(data.Normal.Radius, normalMarkerRadiusKm)
	}

	return data
}

func peakSeverity(incidentIDs []uint, incidents map[uint]*models.Incident) int {
	peak := 0
	for _, id := range incidentIDs {
		if incident, ok := incidents[id]; ok && incident.Severity > peak {
			peak = incident.Severity
		}
	}
	return peak
}

func addMarker(data *MapData, severity int, t Thresholds, coord [2]float64, name string) {
	group := &data.Caution
	if severity >= t.DangerSeverity {
		group = &data.Danger
	}
	group.Coordinates = append(group.Coordinates, coord)
	group.Names = append(group.Names, name)
	group.Radius = append(group.Radius, mapMarkerRadiusKm)
}
