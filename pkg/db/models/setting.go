package models

import "time"

// Setting is a key-value row for storefront configuration.
type Setting struct {
	Key       string    `gorm:"column:key;type:text;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	IsPublic  bool      `gorm:"column:is_public;not null;default:false"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
