package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"gorm.io/gorm"
)

func createConversionsAndCostsTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_conversions_and_costs",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.ConversionModel{}, &repository.CostModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_conversions_contact_campaign_type_occurred ON conversion_events (contact_id, campaign_id, type, occurred_at)`,
				`CREATE INDEX IF NOT EXISTS idx_conversions_campaign_occurred ON conversion_events (campaign_id, occurred_at)`,
				`CREATE INDEX IF NOT EXISTS idx_costs_campaign ON campaign_costs (campaign_id)`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.ConversionModel{}, &repository.CostModel{})
		},
	}
}
