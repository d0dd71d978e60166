package models

import (
	"time"

	"gorm.io/gorm"
)

type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "pending"
	ShipmentInTransit ShipmentStatus = "in_transit"
	ShipmentDelivered ShipmentStatus = "delivered"
)

// Shipment links a client to exactly one tracked vessel voyage. Origin and
// destination are UN/LOCODE-style port codes (POL / POD).
type Shipment struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	Reference       string          `json:"reference" gorm:"not null;uniqueIndex"`
	ClientID        uint            `json:"clientId" gorm:"not null;index"`
	Client          *User           `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	TrackingID      uint            `json:"trackingId" gorm:"not null;index"`
	Tracking        *VesselTracking `json:"tracking,omitempty" gorm:"foreignKey:TrackingID"`
	OriginPort      string          `json:"originPort" gorm:"not null"`
	DestinationPort string          `json:"destinationPort" gorm:"not null"`
	Status          ShipmentStatus  `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (Shipment) TableName() string {
	return "shipments"
}
