package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/narasux/vidvote/pkg/envs"
	"github.com/narasux/vidvote/pkg/infras/database"
	"github.com/narasux/vidvote/pkg/infras/dynamo"
	"github.com/narasux/vidvote/pkg/logging"
	// load migration package to register migrations
	_ "github.com/narasux/vidvote/pkg/migration"
	"github.com/narasux/vidvote/pkg/storage"
	"github.com/narasux/vidvote/pkg/version"
)

// NewMigrateCmd ...
func NewMigrateCmd() *cobra.Command {
	var migrationID string

	migrateCmd := cobra.Command{
		Use:   "migrate",
		Short: "Apply migrations to the database tables.",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			logging.InitLogger()

			// DynamoDB 没有迁移版本的概念，只确保表存在
			if envs.StoreBackend == storage.BackendDynamoDB {
				dynamo.InitClient(ctx)
				store := storage.NewDynamoStore(dynamo.Client(), envs.DynamoDBTallyTable, envs.DynamoDBBallotTable)
				if err := store.EnsureTables(ctx); err != nil {
					log.Fatalf("failed to ensure dynamodb tables: %s", err)
				}
				logging.GetSystemLogger().Infof("migrate success %s\nDynamoDB tables: %s, %s",
					version.GetVersion(), envs.DynamoDBTallyTable, envs.DynamoDBBallotTable)
				return
			}

			database.InitDBClient(ctx)

			if err := database.RunMigrate(ctx, migrationID); err != nil {
				log.Fatalf("failed to run migrate: %s", err)
			}
			dbVersion, err := database.Version(ctx)
			if err != nil {
				log.Fatalf("failed to get database version: %s", err)
			}
			logging.GetSystemLogger().Infof("migrate success %s\nDatabaseVersion: %s", version.GetVersion(), dbVersion)
		},
	}

	migrateCmd.Flags().StringVar(&migrationID, "migration", "", "migration to apply, blank means latest version")

	return &migrateCmd
}

func init() {
	rootCmd.AddCommand(NewMigrateCmd())
}
