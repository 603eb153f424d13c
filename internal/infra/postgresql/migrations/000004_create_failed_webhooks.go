package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"gorm.io/gorm"
)

func createFailedWebhooksTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_failed_webhooks",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.FailedWebhookModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_failed_webhooks_event_id ON failed_webhooks (event_id)`,
				`CREATE INDEX IF NOT EXISTS idx_failed_webhooks_due ON failed_webhooks (next_retry_at) WHERE status = 'PENDING'`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.FailedWebhookModel{})
		},
	}
}
