package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// PortDelayEntry is one affected-port sub-entry of a Delay document. The
// delay estimate is a merged figure over all contributing incidents for that
// port, never a running sum.
type PortDelayEntry struct {
	PortCode  string    `json:"portCode"`
	DelayDays int       `json:"delayDays"`
	Incidents []uint    `json:"incidents"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SeaDelayEntry is one open-water sub-entry of a Delay document, keyed by the
// incident coordinate.
type SeaDelayEntry struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	DelayDays int       `json:"delayDays"`
	Incidents []uint    `json:"incidents"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PortDelayList []PortDelayEntry
type SeaDelayList []SeaDelayEntry

func (l PortDelayList) Value() (driver.Value, error) {
	if l == nil {
		l = PortDelayList{}
	}
	return json.Marshal(l)
}

func (l *PortDelayList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

func (l SeaDelayList) Value() (driver.Value, error) {
	if l == nil {
		l = SeaDelayList{}
	}
	return json.Marshal(l)
}

func (l *SeaDelayList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Delay is the per-shipment accumulator of incident-driven delay estimates.
// Exactly one document exists per shipment. Both sub-collections are always
// present; LocationType records the type of the first contributing incident
// for API compatibility with older clients.
type Delay struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	ShipmentID    uint           `json:"shipmentId" gorm:"not null;uniqueIndex"`
	LocationType  LocationType   `json:"locationType" gorm:"not null"`
	AffectedPorts PortDelayList  `json:"affectedPorts" gorm:"type:jsonb"`
	SeaDelays     SeaDelayList   `json:"seaDelays" gorm:"type:jsonb"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Delay) TableName() string {
	return "delays"
}

// IncidentIDs collects the distinct incident ids referenced anywhere in the
// document's port and sea sub-entries.
func (d *Delay) IncidentIDs() []uint {
	seen := make(map[uint]bool)
	var ids []uint
	for _, p := range d.AffectedPorts {
		for _, id := range p.Incidents {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	for _, s := range d.SeaDelays {
		for _, id := range s.Incidents {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// References reports whether any sub-entry references the given incident.
func (d *Delay) References(incidentID uint) bool {
	for _, id := range d.IncidentIDs() {
		if id == incidentID {
			return true
		}
	}
	return false
}
