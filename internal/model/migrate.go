package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Team{},
		&RedemptionCode{},
		&RedemptionRecord{},
		&Setting{},
	); err != nil {
		return err
	}

	// One live (non-withdrawn) record per email per team, soft deletes excluded.
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_records_team_email_active " +
			"ON redemption_records (team_id, lower(email)) WHERE deleted_at IS NULL AND status = 'invited'",
	).Error
}
