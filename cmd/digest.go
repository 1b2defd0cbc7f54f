package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"prpulse/internal/bootstrap"
	"prpulse/internal/bootstrap/logging"
	"prpulse/internal/errs"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Digest commands",
}

// digestRunCmd runs one digest config immediately, bypassing the
// schedule match. Operator tooling for debugging a config.
var digestRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one digest config now",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, services *bootstrap.Services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		configID, _ := cmd.Flags().GetUint64("config-id")
		if configID == 0 {
			return errors.New("config-id is required")
		}

		outcome, err := services.Digest.RunConfigByID(ctx, configID, time.Now())
		if err != nil {
			return errs.Wrap(err, "run digest config")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "digest run: config=%d prs=%d sent=%t\n",
			configID, outcome.PRCount, outcome.Sent); err != nil {
			return errs.Wrap(err, "write digest output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(digestCmd)
	digestCmd.AddCommand(digestRunCmd)

	digestRunCmd.Flags().Uint64("config-id", 0, "Digest config id to run")
	_ = digestRunCmd.MarkFlagRequired("config-id")
}
