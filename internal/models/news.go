package models

import (
	"time"

	"gorm.io/gorm"
)

// News is the source article an incident was extracted from. NewsHash
// deduplicates repeated scrapes of the same story.
type News struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	NewsHash      string         `json:"newsHash" gorm:"not null;uniqueIndex"`
	Title         string         `json:"title" gorm:"not null"`
	URL           string         `json:"url" gorm:"not null"`
	Details       string         `json:"details" gorm:"type:text"`
	PublishedDate time.Time      `json:"publishedDate"`
	Location      string         `json:"location"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

func (News) TableName() string {
	return "news"
}
