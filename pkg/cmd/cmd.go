// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "tempshare",
		Short: "Ephemeral file sharing with short-lived access codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")

	registerConfigsCommands()
	registerServeCommands()
	registerSweepCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
