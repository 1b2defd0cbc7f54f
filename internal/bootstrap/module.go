package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"prpulse/internal/bootstrap/config"
	"prpulse/internal/bootstrap/database"
	"prpulse/internal/bootstrap/logging"
	githubinfra "prpulse/internal/infrastructure/github"
	"prpulse/internal/infrastructure/identity"
	"prpulse/internal/infrastructure/mail"
	"prpulse/internal/infrastructure/membership"
	sqliterepo "prpulse/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "prpulse/internal/infrastructure/persistence/sqlite/uow"
	"prpulse/internal/infrastructure/profile"
	slackinfra "prpulse/internal/infrastructure/slack"
	"prpulse/internal/ports"
	"prpulse/internal/usecase/auth"
	digestuc "prpulse/internal/usecase/digest"
	"prpulse/internal/usecase/ingest"
	"prpulse/internal/usecase/notify"
	"prpulse/internal/usecase/retention"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewEventRepository,
			fx.As(new(ports.EventRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewNotificationRepository,
			fx.As(new(ports.NotificationRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewDigestRepository,
			fx.As(new(ports.DigestRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewUserRepository,
			fx.As(new(ports.UserRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewPullRequestRepository,
			fx.As(new(ports.PullRequestRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			githubinfra.NewClient,
			fx.As(new(ports.GitHubClient)),
		),
	),
	fx.Provide(
		fx.Annotate(
			identity.NewGitHubTokenService,
			fx.As(new(ports.TokenService)),
		),
	),
	fx.Provide(
		fx.Annotate(
			slackinfra.NewClient,
			fx.As(new(ports.ChatClient)),
		),
	),
	fx.Provide(
		fx.Annotate(
			mail.NewSMTPMailer,
			fx.As(new(ports.Mailer)),
		),
	),
	fx.Provide(
		fx.Annotate(
			membership.NewLogSyncTrigger,
			fx.As(new(ports.SyncTrigger)),
		),
	),
	fx.Provide(
		fx.Annotate(
			profile.NewInvolvementMatcher,
			fx.As(new(ports.ProfileMatcher)),
		),
	),
	fx.Provide(auth.NewTokenRefresher),
	fx.Provide(notify.NewDispatcher),
	fx.Provide(ingest.NewService),
	fx.Provide(notify.NewService),
	fx.Provide(digestuc.NewCategorizer),
	fx.Provide(digestuc.NewService),
	fx.Provide(retention.NewService),
	fx.Provide(provideScheduler),
	fx.Provide(provideServices),
)

// Services bundles the use-case entry points commands consume.
type Services struct {
	Ingest    *ingest.Service
	Notify    *notify.Service
	Digest    *digestuc.Service
	Scheduler *digestuc.Scheduler
	Retention *retention.Service
}

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideScheduler(service *digestuc.Service, digests ports.DigestRepository, cfg config.Config) *digestuc.Scheduler {
	interval, err := time.ParseDuration(cfg.Scheduler.Interval)
	if err != nil || interval <= 0 {
		interval = 15 * time.Minute
	}
	return digestuc.NewScheduler(service, digests, interval)
}

func provideServices(ingestSvc *ingest.Service, notifySvc *notify.Service, digestSvc *digestuc.Service, scheduler *digestuc.Scheduler, retentionSvc *retention.Service) *Services {
	return &Services{
		Ingest:    ingestSvc,
		Notify:    notifySvc,
		Digest:    digestSvc,
		Scheduler: scheduler,
		Retention: retentionSvc,
	}
}
