// Package cmd holds the adminConsole command line.
package cmd

import (
	"github.com/dwnGnL/adminConsole/pkg/logging"
	"github.com/dwnGnL/adminConsole/pkg/setting"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "adminConsole",
	Short: "Admin console backend for payments, user credits and support chat",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setting.Setup(configPath)
		logging.Setup(setting.Config.AppConf.Debug)
	},
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.json", "path to the JSON config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(auditCmd)
}
