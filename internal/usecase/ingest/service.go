// Package ingest verifies inbound webhook deliveries and persists the
// relevant ones as Events.
package ingest

import (
	"context"
	"errors"
	"log/slog"

	"prpulse/internal/bootstrap/config"
	"prpulse/internal/bootstrap/logging"
	"prpulse/internal/domain/event"
	"prpulse/internal/errs"
	"prpulse/internal/ports"
)

type Service struct {
	events ports.EventRepository
	sync   ports.SyncTrigger
	secret string
}

func NewService(cfg config.Config, events ports.EventRepository, sync ports.SyncTrigger) *Service {
	return &Service{
		events: events,
		sync:   sync,
		secret: cfg.Server.WebhookSecret,
	}
}

type IngestInput struct {
	EventType  string
	DeliveryID string
	Signature  string
	Payload    []byte
}

type IngestResult struct {
	Stored   bool
	Reason   string
	Event    ports.EventRecord
	Envelope event.Envelope
}

// Ingest verifies the delivery, filters it, and stores an Event row when
// relevant. Membership and installation events are routed to the sync
// trigger instead of being stored.
func (s *Service) Ingest(ctx context.Context, input IngestInput) (IngestResult, error) {
	if ctx == nil {
		return IngestResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return IngestResult{}, errs.Wrap(err, "check context")
	}
	if s.events == nil {
		return IngestResult{}, errors.New("event repository is required")
	}

	if err := VerifySignature(s.secret, input.Signature, input.Payload); err != nil {
		return IngestResult{}, err
	}

	env, err := event.Parse(input.EventType, input.DeliveryID, input.Payload)
	if err != nil {
		return IngestResult{}, errs.Wrap(err, "parse event payload")
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "ingest.service"),
		slog.String("event_type", env.Type),
		slog.String("action", env.Action),
		slog.String("delivery_id", env.DeliveryID),
	)

	decision := event.Relevant(env.Kind, env.Action, env.Sender.Type)
	if !decision.Relevant {
		logging.Info(logCtx, "event skipped", slog.String("reason", decision.Reason))
		return IngestResult{Reason: decision.Reason, Envelope: env}, nil
	}

	if env.Kind.IsSideEffect() {
		if err := s.handleSideEffect(logCtx, env); err != nil {
			return IngestResult{}, err
		}
		return IngestResult{Reason: "routed to side-effect handler", Envelope: env}, nil
	}

	record, err := s.events.CreateEvent(ctx, ports.EventCreate{
		EventType:      env.Type,
		Action:         env.Action,
		RepositoryID:   env.Repo.ID,
		RepositoryName: env.Repo.FullName,
		SenderID:       env.Sender.ID,
		SenderLogin:    env.Sender.Login,
		Payload:        input.Payload,
		// Audit kinds carry no notification fan-out, so they are stored
		// already marked processed.
		Processed: env.Kind.IsAudit(),
	})
	if err != nil {
		return IngestResult{}, errs.Wrap(err, "store event")
	}

	logging.Info(logCtx, "event stored", slog.Uint64("event_id", record.EventID))
	return IngestResult{Stored: true, Reason: decision.Reason, Event: record, Envelope: env}, nil
}

func (s *Service) handleSideEffect(ctx context.Context, env event.Envelope) error {
	if s.sync == nil {
		return errors.New("sync trigger is required")
	}

	switch env.Kind {
	case event.KindMembership:
		if env.Membership == nil {
			logging.Warn(ctx, "membership event without member payload")
			return nil
		}
		switch env.Action {
		case "added":
			return s.sync.MemberAdded(ctx, env.Membership.TeamSlug, env.Membership.MemberLogin)
		case "removed":
			return s.sync.MemberRemoved(ctx, env.Membership.TeamSlug, env.Membership.MemberLogin)
		default:
			logging.Warn(ctx, "membership action not handled", slog.String("action", env.Action))
			return nil
		}
	case event.KindInstallation:
		return s.sync.InstallationChanged(ctx, env.Action)
	default:
		return errors.New("not a side-effect kind")
	}
}
