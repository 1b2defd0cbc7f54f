package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"prpulse/internal/bootstrap"
	"prpulse/internal/bootstrap/logging"
	"prpulse/internal/errs"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the digest scheduler daemon",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, services *bootstrap.Services) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.WithAttrs(ctx, slog.String("command", cmd.CommandPath()))

		runner, err := services.Scheduler.Start(ctx)
		if err != nil {
			return errs.Wrap(err, "start digest scheduler")
		}

		<-ctx.Done()

		stopCtx := runner.Stop()
		<-stopCtx.Done()
		logging.Info(ctx, "digest scheduler stopped")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}
