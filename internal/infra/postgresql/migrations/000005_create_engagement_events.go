package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"gorm.io/gorm"
)

func createEngagementEventsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000005_create_engagement_events",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.EngagementEventModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_engagement_contact_occurred ON engagement_events (contact_id, occurred_at)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.EngagementEventModel{})
		},
	}
}
