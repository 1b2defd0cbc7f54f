// Package membership receives team membership and installation side
// effects. The real sync runs in a separate collaborator; this adapter
// only records that a resync is needed.
package membership

import (
	"context"
	"errors"
	"log/slog"

	"prpulse/internal/bootstrap/logging"
)

type LogSyncTrigger struct{}

func NewLogSyncTrigger() *LogSyncTrigger {
	return &LogSyncTrigger{}
}

func (t *LogSyncTrigger) MemberAdded(ctx context.Context, teamSlug string, login string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	logging.Info(ctx, "team member added, membership resync requested",
		slog.String("team", teamSlug), slog.String("login", login))
	return nil
}

func (t *LogSyncTrigger) MemberRemoved(ctx context.Context, teamSlug string, login string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	logging.Info(ctx, "team member removed, membership resync requested",
		slog.String("team", teamSlug), slog.String("login", login))
	return nil
}

func (t *LogSyncTrigger) InstallationChanged(ctx context.Context, action string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	logging.Info(ctx, "app installation changed, repository resync requested",
		slog.String("action", action))
	return nil
}
