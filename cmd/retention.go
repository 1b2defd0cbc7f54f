package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"prpulse/internal/bootstrap"
	"prpulse/internal/bootstrap/logging"
	"prpulse/internal/errs"
)

var retentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Delete events and notifications past the retention window",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, services *bootstrap.Services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		days, _ := cmd.Flags().GetInt("days")
		if days <= 0 {
			days = app.Config.Scheduler.RetentionDays
		}

		result, err := services.Retention.Sweep(ctx, time.Now(), days)
		if err != nil {
			return errs.Wrap(err, "run retention sweep")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "retention sweep: events=%d notifications=%d cutoff=%s\n",
			result.EventsRemoved, result.NotificationsRemoved, result.Cutoff.Format(time.RFC3339)); err != nil {
			return errs.Wrap(err, "write retention output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(retentionCmd)

	retentionCmd.Flags().Int("days", 0, "Retention window in days (default from config)")
}
