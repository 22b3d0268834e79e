package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog mirrors every registration disposition locally. The external sheet
// sink gets the same record best-effort; this table is the durable copy.
type AuditLog struct {
	ID           string         `gorm:"primaryKey;type:uuid" json:"id"`
	Name         string         `json:"name"`
	Email        string         `gorm:"index" json:"email"`
	Phone        string         `json:"phone"`
	Status       string         `gorm:"not null;index" json:"status"`
	ApprovalType string         `json:"approval_type"`
	ReferralCode string         `json:"referral_code"`
	Metadata     datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
