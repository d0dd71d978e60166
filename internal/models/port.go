package models

import (
	"time"

	"gorm.io/gorm"
)

// Port is a reference entity keyed by its business port code. Created on
// first reference by ingestion and effectively immutable afterward.
type Port struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	PortCode  string         `json:"portCode" gorm:"not null;uniqueIndex"`
	PortName  string         `json:"portName" gorm:"not null"`
	Latitude  *float64       `json:"latitude"`
	Longitude *float64       `json:"longitude"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Port) TableName() string {
	return "ports"
}
