package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"gorm.io/gorm"
)

func createCampaignMembershipsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_campaign_memberships",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.MembershipModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_memberships_contact_campaign ON campaign_memberships (contact_id, campaign_id)`,
				`CREATE INDEX IF NOT EXISTS idx_memberships_campaign_status ON campaign_memberships (campaign_id, status)`,
				`CREATE INDEX IF NOT EXISTS idx_memberships_campaign_variant ON campaign_memberships (campaign_id, variant) WHERE variant <> ''`,
				`CREATE INDEX IF NOT EXISTS idx_memberships_sent ON campaign_memberships (campaign_id) WHERE sent_at IS NOT NULL`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.MembershipModel{})
		},
	}
}
