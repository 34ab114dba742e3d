package cmd

import (
	"github.com/dwnGnL/adminConsole/db"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables and seed the admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		db.Setup()
		defer db.CloseDB()

		color.Green("migrations applied")
		return nil
	},
}
