package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type LocationType string
type IncidentStatus string

const (
	LocationPort LocationType = "port"
	LocationSea  LocationType = "sea"
)

const (
	IncidentOngoing  IncidentStatus = "ongoing"
	IncidentResolved IncidentStatus = "resolved"
)

// Incident is a geotagged disruption extracted from a news article.
// AffectedPorts holds port codes and is required for port incidents;
// Latitude/Longitude are required for sea incidents.
type Incident struct {
	ID                     uint           `json:"id" gorm:"primaryKey"`
	SourceNewsID           uint           `json:"sourceNewsId" gorm:"not null;index"`
	SourceNews             *News          `json:"sourceNews,omitempty" gorm:"foreignKey:SourceNewsID"`
	LocationType           LocationType   `json:"locationType" gorm:"not null"`
	AffectedPorts          pq.StringArray `json:"affectedPorts" gorm:"type:text[]"`
	Latitude               *float64       `json:"latitude"`
	Longitude              *float64       `json:"longitude"`
	StartTime              time.Time      `json:"startTime"`
	EstimatedDurationDays  int            `json:"estimatedDurationDays" gorm:"not null"`
	Severity               int            `json:"severity" gorm:"not null"`
	Status                 IncidentStatus `json:"status" gorm:"not null;default:'ongoing'"`
	DelayUpdated           bool           `json:"delayUpdated" gorm:"not null;default:false"`
	TotalShipmentsAffected int            `json:"totalShipmentsAffected" gorm:"not null;default:0"`
	TotalShipmentsResolved int            `json:"totalShipmentsResolved" gorm:"not null;default:0"`
	CreatedAt              time.Time      `json:"createdAt"`
	UpdatedAt              time.Time      `json:"updatedAt"`
	DeletedAt              gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Incident) TableName() string {
	return "incidents"
}

// HasCoordinate reports whether the incident carries a usable lat/lon pair.
func (i *Incident) HasCoordinate() bool {
	return i.Latitude != nil && i.Longitude != nil
}

// EstimatedEnd is the point estimate of when the disruption clears.
func (i *Incident) EstimatedEnd() time.Time {
	return i.StartTime.AddDate(0, 0, i.EstimatedDurationDays)
}

// AffectsPort reports whether code is one of the incident's affected port codes.
func (i *Incident) AffectsPort(code string) bool {
	for _, p := range i.AffectedPorts {
		if p == code {
			return true
		}
	}
	return false
}
