// Package migration stores all database migrations
package migration

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/narasux/vidvote/pkg/infras/database"
	"github.com/narasux/vidvote/pkg/model"
)

func init() {
	// Do Not Edit Migration ID!
	migrationID := "20250401_000001"

	database.RegisterMigration(&gormigrate.Migration{
		ID: migrationID,
		Migrate: func(tx *gorm.DB) error {
			logApplying(migrationID)

			return tx.AutoMigrate(&model.ItemTally{}, &model.Ballot{})
		},
		Rollback: func(tx *gorm.DB) error {
			logRollingBack(migrationID)

			return tx.Migrator().DropTable(&model.Ballot{}, &model.ItemTally{})
		},
	})
}
