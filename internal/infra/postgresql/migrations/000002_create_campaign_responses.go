package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"gorm.io/gorm"
)

func createCampaignResponsesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_campaign_responses",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.ResponseModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_responses_campaign_received ON campaign_responses (campaign_id, received_at)`,
				`CREATE INDEX IF NOT EXISTS idx_responses_campaign_sentiment ON campaign_responses (campaign_id, sentiment)`,
				`CREATE INDEX IF NOT EXISTS idx_responses_contact ON campaign_responses (contact_id)`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.ResponseModel{})
		},
	}
}
