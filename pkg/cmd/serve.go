package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yeisme/tempshare/pkg/app"
	"github.com/yeisme/tempshare/pkg/configs"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "start the HTTP server",
	Aliases: []string{"server", "run"},
	RunE: func(cmd *cobra.Command, args []string) error {
		application := app.NewApp(configPath)

		applyServerOverrides(cmd.Flags(), configs.GetConfig())

		return application.Run()
	},
}

// bindServerFlags 定义 serve 命令的监听覆盖项.
func bindServerFlags(fs *pflag.FlagSet) {
	fs.String("host", "", "listen address override")
	fs.Int("port", 0, "listen port override")
}

// applyServerOverrides 将命令行覆盖项写回配置，仅覆盖显式传入的标志.
func applyServerOverrides(fs *pflag.FlagSet, cfg *configs.AppConfig) {
	if fs.Changed("host") {
		if host, err := fs.GetString("host"); err == nil {
			cfg.Server.Host = host
		}
	}

	if fs.Changed("port") {
		if port, err := fs.GetInt("port"); err == nil {
			cfg.Server.Port = port
		}
	}
}

// registerServeCommands 注册 serve 命令.
func registerServeCommands() {
	bindServerFlags(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
}
