package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"prpulse/internal/blockkit"
	"prpulse/internal/bootstrap/logging"
	"prpulse/internal/domain/event"
	"prpulse/internal/errs"
	"prpulse/internal/ports"
)

// ProcessEvent evaluates every user tracking the event's repository and
// finally flips the event's processed flag. Re-processing an already
// processed event is a no-op, so a re-delivered webhook never creates
// duplicate notifications. Per-user failures are logged and counted;
// they never abort the fan-out.
func (s *Service) ProcessEvent(ctx context.Context, record ports.EventRecord, env event.Envelope) (ProcessResult, error) {
	if ctx == nil {
		return ProcessResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ProcessResult{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "notify.service"),
		slog.Uint64("event_id", record.EventID),
		slog.String("event_type", record.EventType),
	)

	if record.Processed {
		logging.Info(logCtx, "event already processed, skipping fan-out")
		return ProcessResult{AlreadyProcessed: true}, nil
	}

	users, err := s.users.ListUsersTrackingRepo(ctx, record.RepositoryID)
	if err != nil {
		return ProcessResult{}, errs.Wrap(err, "list users tracking repository")
	}

	result := ProcessResult{Users: len(users)}
	for _, user := range users {
		notified, err := s.notifyUser(logCtx, user, record, env)
		if err != nil {
			result.Errors++
			logging.Error(logCtx, "user notification failed",
				slog.Uint64("user_id", user.UserID),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		if notified {
			result.Notified++
		} else {
			result.Skipped++
		}
	}

	if err := s.events.MarkEventProcessed(ctx, record.EventID); err != nil {
		return result, errs.Wrap(err, "mark event processed")
	}

	logging.Info(logCtx, "event fan-out complete",
		slog.Int("users", result.Users),
		slog.Int("notified", result.Notified),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", result.Errors),
	)
	return result, nil
}

func (s *Service) notifyUser(ctx context.Context, user ports.UserRecord, record ports.EventRecord, env event.Envelope) (bool, error) {
	decision, err := s.Decide(ctx, user, env)
	if err != nil {
		return false, err
	}
	if !decision.ShouldNotify {
		logging.Info(ctx, "notification suppressed",
			slog.Uint64("user_id", user.UserID),
			slog.String("reason", decision.Reason),
		)
		return false, nil
	}

	msg := blockkit.RenderEvent(env)
	payload, err := json.Marshal(msg)
	if err != nil {
		return false, errs.Wrap(err, "snapshot rendered message")
	}

	notification, err := s.notifications.CreateNotification(ctx, ports.NotificationCreate{
		UserID:      user.UserID,
		EventID:     record.EventID,
		MessageType: env.Kind.String(),
		Payload:     payload,
		Reason:      decision.Reason,
		Context:     decision.Context,
	})
	if err != nil {
		return false, errs.Wrap(err, "create notification")
	}

	messageID, err := s.dispatch(ctx, user, decision, msg)
	if err != nil {
		// Undelivered notifications keep their row without a message id
		// and are not retried.
		logging.Error(ctx, "dispatch failed, notification left undelivered",
			slog.Uint64("user_id", user.UserID),
			slog.Uint64("notification_id", notification.NotificationID),
			slog.Any("err", errs.Loggable(err)),
		)
		return true, nil
	}
	if messageID == "" {
		logging.Warn(ctx, "chat platform declined message, notification left undelivered",
			slog.Uint64("user_id", user.UserID),
			slog.Uint64("notification_id", notification.NotificationID),
		)
		return true, nil
	}

	if err := s.notifications.SetNotificationMessageID(ctx, notification.NotificationID, messageID); err != nil {
		return true, errs.Wrap(err, "record message id")
	}
	return true, nil
}

func (s *Service) dispatch(ctx context.Context, user ports.UserRecord, decision Decision, msg blockkit.Message) (string, error) {
	if user.SlackAccessToken == "" {
		return "", errors.New("user has no chat credential")
	}
	if decision.ChannelID != "" {
		return s.dispatcher.SendToChannel(ctx, user.SlackAccessToken, decision.ChannelID, msg)
	}
	if user.SlackUserID == "" {
		return "", errors.New("user has no chat account linked")
	}
	return s.dispatcher.SendDirect(ctx, user.SlackAccessToken, user.SlackUserID, msg)
}
