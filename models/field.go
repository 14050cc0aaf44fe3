package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Field is a bookable court. The booking engine only reads it.
type Field struct {
	ID          string `gorm:"primaryKey;size:64" json:"id"`
	Name        string `gorm:"size:255" json:"name"`
	Category    string `gorm:"size:64;index" json:"category"`
	HourlyPrice int64  `gorm:"column:hourly_price" json:"hourlyPrice"`
	Capacity    string `gorm:"size:64" json:"capacity,omitempty"`

	// Features is a JSON array of strings, e.g. ["AC","Lantai Parket"].
	Features datatypes.JSON `gorm:"column:features" json:"features,omitempty"`

	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
