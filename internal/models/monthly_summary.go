package models

import (
	"time"

	"urwallet/internal/uuid"

	"gorm.io/gorm"
)

// MonthlySummary caches the generated narrative for one user-month.
// Rows are written once and never updated or soft-deleted.
type MonthlySummary struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string    `gorm:"size:128;not null;uniqueIndex:idx_monthly_summaries_period,priority:1" json:"user_id"`
	Month         int       `gorm:"not null;uniqueIndex:idx_monthly_summaries_period,priority:2" json:"month"`
	Year          int       `gorm:"not null;uniqueIndex:idx_monthly_summaries_period,priority:3" json:"year"`
	AIInsights    string    `gorm:"type:text;not null" json:"ai_insights"`
	LastGenerated time.Time `gorm:"not null" json:"last_generated"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (m *MonthlySummary) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New()
	}
	return nil
}
