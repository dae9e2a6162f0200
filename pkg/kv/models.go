package kv

import "time"

// EntryModel is the GORM row behind PostgresStore.
type EntryModel struct {
	Key       string    `gorm:"primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName pins the table name regardless of naming strategy.
func (EntryModel) TableName() string {
	return "kv_entries"
}
