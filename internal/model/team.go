package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Team is one imported upstream Team account whose seats are resold.
// Credentials are the upstream tokens used by the API client; SessionToken
// and RefreshToken feed the two credential-refresh flows.
type Team struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name             string         `gorm:"type:varchar(128);not null" json:"name"`
	AccountID        string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"account_id"`
	AccessToken      string         `gorm:"type:text;not null" json:"-"`
	RefreshToken     string         `gorm:"type:text" json:"-"`
	SessionToken     string         `gorm:"type:text" json:"-"`
	OAuthClientID    string         `gorm:"type:varchar(128)" json:"-"`
	PlanType         string         `gorm:"type:varchar(32)" json:"plan_type"`
	SubscriptionPlan string         `gorm:"type:varchar(64)" json:"subscription_plan"`
	SeatsTotal       int            `gorm:"not null;default:0" json:"seats_total"`
	SeatsUsed        int            `gorm:"not null;default:0" json:"seats_used"`
	ExpiresAt        *time.Time     `json:"expires_at,omitempty"`
	Enabled          bool           `gorm:"not null;default:true" json:"enabled"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Team) TableName() string { return "teams" }
