package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/tempshare/pkg/configs"
	ctxPkg "github.com/yeisme/tempshare/pkg/context"
	"github.com/yeisme/tempshare/pkg/internal/service"
	"github.com/yeisme/tempshare/pkg/internal/storage"
)

// 一次性执行过期清扫后退出，便于 cron 或容器 Job 场景下不常驻进程.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "run one round of expired session cleanup and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.InitConfig(configPath); err != nil {
			return err
		}

		ctx := cmd.Context()

		mgr, err := storage.Init(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = mgr.Close() }()

		ctx = ctxPkg.WithStorageManager(ctx, mgr)

		result := service.NewSessionService(ctx).SweepExpired(ctx)

		fmt.Fprintf(cmd.OutOrStdout(), "swept %d sessions (%d assets removed, %d failures)\n",
			result.Sessions, result.Assets, result.Failures)

		return nil
	},
}

// registerSweepCommands 注册 sweep 命令.
func registerSweepCommands() {
	rootCmd.AddCommand(sweepCmd)
}
