package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CodeStatus is the lifecycle state of a redemption code.
type CodeStatus string

const (
	CodeStatusUnused   CodeStatus = "unused"
	CodeStatusUsed     CodeStatus = "used"
	CodeStatusDisabled CodeStatus = "disabled"
)

// RedemptionCode gates access to a team seat. TeamID is optional: unbound
// codes are placed on any enabled team with a free seat at redemption time.
type RedemptionCode struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code         string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	TeamID       *uuid.UUID     `gorm:"type:uuid;index" json:"team_id,omitempty"`
	DurationDays int            `gorm:"not null;default:30" json:"duration_days"`
	Status       CodeStatus     `gorm:"type:varchar(16);not null;default:'unused';index" json:"status"`
	BatchID      string         `gorm:"type:varchar(64);index" json:"batch_id,omitempty"`
	RedeemedBy   string         `gorm:"type:varchar(256)" json:"redeemed_by,omitempty"`
	RedeemedAt   *time.Time     `json:"redeemed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (RedemptionCode) TableName() string { return "redemption_codes" }
