package model

import "time"

// Setting is one operator-editable key-value pair (FlareSolverr config,
// log level). Read at call time, never cached by the services.
type Setting struct {
	Key       string    `gorm:"type:varchar(64);primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }
