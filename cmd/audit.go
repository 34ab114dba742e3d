package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dwnGnL/adminConsole/db"
	"github.com/dwnGnL/adminConsole/ledger"
	"github.com/dwnGnL/adminConsole/pkg/setting"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var auditUserID int64

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Compare user credit counters with the sum of their payments",
	Long: `Audit recomputes every user's credits from the payments table and prints
the users whose stored counters differ. It exits with an error when any drift is found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.Open(setting.Config.DBDriver, setting.Config.DB, setting.Config.MaxConns, setting.Config.AppConf.Debug)
		if err != nil {
			return err
		}
		if sqlDB, err := conn.DB(); err == nil {
			defer sqlDB.Close()
		}

		report, err := ledger.NewReconciler(ledger.NewGormStore(conn)).Audit(context.Background(), auditUserID)
		if err != nil {
			return err
		}
		if drifted := printDrift(os.Stdout, report); drifted > 0 {
			return fmt.Errorf("%d of %d users out of sync", drifted, len(report))
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().Int64Var(&auditUserID, "user", 0, "audit a single user id")
}

// printDrift writes one line per drifting user and a summary, and returns
// how many users drift.
func printDrift(w io.Writer, report []ledger.Drift) int {
	red := color.New(color.FgRed)
	drifted := 0
	for _, d := range report {
		if d.InSync() {
			continue
		}
		drifted++
		if d.Orphaned {
			red.Fprintf(w, "user %d (no user row): ", d.UserID)
		} else {
			red.Fprintf(w, "user %d: ", d.UserID)
		}
		fmt.Fprintf(w, "contactLimit %+d, emailLimit %+d, smsCredits %+d, whatsappCredits %+d\n",
			d.Diff.EmailVerification, d.Diff.EmailSend, d.Diff.SMS, d.Diff.WhatsApp)
	}
	if drifted == 0 {
		color.New(color.FgGreen).Fprintf(w, "%d users in sync\n", len(report))
		return 0
	}
	color.New(color.FgYellow).Fprintf(w, "%d of %d users out of sync\n", drifted, len(report))
	return drifted
}
