package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordStatus tracks whether a redeemed seat is still occupied.
type RecordStatus string

const (
	RecordStatusInvited   RecordStatus = "invited"
	RecordStatusWithdrawn RecordStatus = "withdrawn"
)

// RedemptionRecord is one redemption: which code placed which email on which
// team, and when the seat expires. MemberUserID is filled once the invite is
// accepted and the upstream user id becomes known.
type RedemptionRecord struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code         string         `gorm:"type:varchar(64);index;not null" json:"code"`
	Email        string         `gorm:"type:varchar(256);index;not null" json:"email"`
	TeamID       uuid.UUID      `gorm:"type:uuid;index;not null" json:"team_id"`
	MemberUserID string         `gorm:"type:varchar(64)" json:"member_user_id,omitempty"`
	Status       RecordStatus   `gorm:"type:varchar(16);not null;default:'invited';index" json:"status"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty"`
	WithdrawnAt  *time.Time     `json:"withdrawn_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (RedemptionRecord) TableName() string { return "redemption_records" }
