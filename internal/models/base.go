package models

import (
	"time"

	"spendtrack/internal/uuid"

	"gorm.io/gorm"
)

// Base contains the server-managed columns. Both are written on insert only.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey;<-:create" json:"id"`
	CreatedAt time.Time `gorm:"not null;index;<-:create" json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
