package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"gorm.io/gorm"
)

func createSettingsTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000006_create_settings",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.SettingModel{}, &repository.QuickBooksAuthModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.SettingModel{}, &repository.QuickBooksAuthModel{})
		},
	}
}
