// Package retention deletes aged Event and Notification rows. It is
// the only code path that removes them.
package retention

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"prpulse/internal/bootstrap/logging"
	"prpulse/internal/errs"
	"prpulse/internal/ports"
)

type Service struct {
	uow           ports.UnitOfWork
	events        ports.EventRepository
	notifications ports.NotificationRepository
}

func NewService(uow ports.UnitOfWork, events ports.EventRepository, notifications ports.NotificationRepository) *Service {
	return &Service{
		uow:           uow,
		events:        events,
		notifications: notifications,
	}
}

type SweepResult struct {
	Cutoff               time.Time
	EventsRemoved        int64
	NotificationsRemoved int64
}

// Sweep removes events and notifications created before now minus the
// retention window.
func (s *Service) Sweep(ctx context.Context, now time.Time, retentionDays int) (SweepResult, error) {
	if ctx == nil {
		return SweepResult{}, errors.New("context is required")
	}
	if retentionDays <= 0 {
		return SweepResult{}, errors.New("retention days must be positive")
	}

	cutoff := now.AddDate(0, 0, -retentionDays)
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "retention.service"),
		slog.Time("cutoff", cutoff),
	)

	// Both deletes commit or roll back together so a notification never
	// outlives its event.
	var eventsRemoved, notificationsRemoved int64
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if notificationsRemoved, err = s.notifications.DeleteNotificationsBefore(ctx, cutoff); err != nil {
			return errs.Wrap(err, "delete aged notifications")
		}
		if eventsRemoved, err = s.events.DeleteEventsBefore(ctx, cutoff); err != nil {
			return errs.Wrap(err, "delete aged events")
		}
		return nil
	})
	if err != nil {
		return SweepResult{}, err
	}

	logging.Info(logCtx, "retention sweep completed",
		slog.Int64("events_removed", eventsRemoved),
		slog.Int64("notifications_removed", notificationsRemoved),
	)
	return SweepResult{
		Cutoff:               cutoff,
		EventsRemoved:        eventsRemoved,
		NotificationsRemoved: notificationsRemoved,
	}, nil
}
