package cmd

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/narasux/vidvote/pkg/envs"
	"github.com/narasux/vidvote/pkg/logging"
	"github.com/narasux/vidvote/pkg/metrics"
	"github.com/narasux/vidvote/pkg/router"
	"github.com/narasux/vidvote/pkg/storage"
)

var webServerCmd = &cobra.Command{
	Use:   "webserver",
	Short: "webserver start http server.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		logging.InitLogger()
		metrics.Register()
		storage.InitVoteStore(ctx)

		origin, worker, err := newAssetWorker(ctx)
		if err != nil {
			logging.GetSystemLogger().Fatalf("failed to init asset worker: %s", err)
		}
		if worker != nil {
			// 安装失败时不激活，请求直接透传到源站
			if err = worker.Install(ctx); err != nil {
				logging.GetSystemLogger().Warnf("asset cache install failed, serving uncached: %s", err)
			} else if err = worker.Activate(ctx); err != nil {
				logging.GetSystemLogger().Warnf("asset cache activate failed, serving uncached: %s", err)
			}
			color.Cyan("Proxying static assets from %s", origin)
		}

		color.Green("Starting server at http://0.0.0.0:%s/", envs.ServerPort)
		router.InitRouter(origin, worker)
	},
}

func init() {
	rootCmd.AddCommand(webServerCmd)
}
