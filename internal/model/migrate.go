package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Account{},
		&Event{},
	); err != nil {
		return err
	}

	// Participant view filters on matches.giver.
	if err := db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_events_matches_gin " +
			"ON events USING gin (matches jsonb_path_ops)",
	).Error; err != nil {
		return err
	}

	return db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_accounts_created_by_role " +
			"ON accounts (created_by, role) WHERE created_by IS NOT NULL",
	).Error
}
