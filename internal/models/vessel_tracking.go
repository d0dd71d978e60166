package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type VesselStatus string

const (
	VesselInTransit VesselStatus = "intransit"
	VesselDelivered VesselStatus = "delivered"
)

// PortCall is one scheduled stop in a vessel's voyage. A set ActualArrival
// means the call already happened and the port is no longer a delay target.
type PortCall struct {
	PortCode        string     `json:"portCode"`
	ExpectedArrival time.Time  `json:"expectedArrival"`
	ActualArrival   *time.Time `json:"actualArrival,omitempty"`
}

type PortCallList []PortCall

func (l PortCallList) Value() (driver.Value, error) {
	if l == nil {
		l = PortCallList{}
	}
	return json.Marshal(l)
}

func (l *PortCallList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// VesselTracking is a vessel's voyage state: where it is, whether it is still
// moving, and its ordered schedule of port calls.
type VesselTracking struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	VesselName string         `json:"vesselName" gorm:"not null"`
	VesselCode string         `json:"vesselCode" gorm:"not null;uniqueIndex"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	Status     VesselStatus   `json:"status" gorm:"not null;default:'intransit'"`
	Events     PortCallList   `json:"events" gorm:"type:jsonb"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (VesselTracking) TableName() string {
	return "vessel_trackings"
}

// HasPendingCall reports whether the vessel still has an uncompleted
// scheduled call at the given port code.
func (v *VesselTracking) HasPendingCall(portCode string) bool {
	for _, e := range v.Events {
		if e.PortCode == portCode && e.ActualArrival == nil {
			return true
		}
	}
	return false
}
