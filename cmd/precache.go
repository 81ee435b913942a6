package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/narasux/vidvote/pkg/envs"
	"github.com/narasux/vidvote/pkg/logging"
)

var precacheCmd = &cobra.Command{
	Use:   "precache",
	Short: "Install and activate the asset cache ahead of serving traffic.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		logging.InitLogger()
		logger := logging.GetSystemLogger()

		if envs.AssetCacheBackend != AssetCacheBackendRedis {
			logger.Warn("asset cache backend is not redis, precached entries will not outlive this command")
		}

		_, worker, err := newAssetWorker(ctx)
		if err != nil {
			logger.Fatalf("failed to init asset worker: %s", err)
		}
		if worker == nil {
			logger.Fatal("ASSET_ORIGIN is required to precache assets")
		}

		if err = worker.Install(ctx); err != nil {
			logger.Fatalf("failed to install asset cache: %s", err)
		}
		if err = worker.Activate(ctx); err != nil {
			logger.Fatalf("failed to activate asset cache: %s", err)
		}
		logger.Infof("asset cache %s precached %d paths", envs.AssetCacheName, len(envs.AssetPrecachePaths))
	},
}

func init() {
	rootCmd.AddCommand(precacheCmd)
}
