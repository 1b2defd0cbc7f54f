package digest

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"prpulse/internal/blockkit"
	"prpulse/internal/bootstrap/logging"
	"prpulse/internal/domain/digest"
	"prpulse/internal/errs"
	"prpulse/internal/ports"
	"prpulse/internal/usecase/auth"
	"prpulse/internal/usecase/notify"
)

// Service builds and delivers digests for enabled configs.
type Service struct {
	digests     ports.DigestRepository
	users       ports.UserRepository
	github      ports.GitHubClient
	categorizer *Categorizer
	refresher   *auth.TokenRefresher
	dispatcher  *notify.Dispatcher
	mailer      ports.Mailer
}

func NewService(
	digests ports.DigestRepository,
	users ports.UserRepository,
	github ports.GitHubClient,
	categorizer *Categorizer,
	refresher *auth.TokenRefresher,
	dispatcher *notify.Dispatcher,
	mailer ports.Mailer,
) *Service {
	return &Service{
		digests:     digests,
		users:       users,
		github:      github,
		categorizer: categorizer,
		refresher:   refresher,
		dispatcher:  dispatcher,
		mailer:      mailer,
	}
}

// ConfigOutcome reports what one digest config's run did.
type ConfigOutcome struct {
	Sent      bool
	Empty     bool
	PRCount   int
	MessageID string
}

// RunConfig builds the digest for one config and delivers it when there
// is anything to send. A UserDigest audit row is appended for every run,
// including empty ones.
func (s *Service) RunConfig(ctx context.Context, cfg ports.DigestConfigRecord, now time.Time) (ConfigOutcome, error) {
	if ctx == nil {
		return ConfigOutcome{}, errors.New("context is required")
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "digest.service"),
		slog.Uint64("config_id", cfg.ConfigID),
		slog.Uint64("user_id", cfg.UserID),
	)

	user, err := s.users.GetUser(ctx, cfg.UserID)
	if err != nil {
		return ConfigOutcome{}, errs.Wrap(err, "load digest user")
	}

	repos, err := s.trackedRepos(ctx, user.UserID, cfg.RepoFilter)
	if err != nil {
		return ConfigOutcome{}, err
	}

	scope := digest.Scope(cfg.Scope)
	var teamMembers []string
	if scope == digest.ScopeTeam {
		teamMembers, err = s.teamMembers(ctx, user, cfg.ScopeValue)
		if err != nil {
			return ConfigOutcome{}, err
		}
	}

	result, err := s.categorizer.Categorize(ctx, CategorizeInput{
		UserID:      user.UserID,
		Login:       user.GitHubLogin,
		Repos:       repos,
		Scope:       scope,
		TeamMembers: teamMembers,
	})
	if err != nil {
		return ConfigOutcome{}, errs.Wrap(err, "categorize pull requests")
	}

	outcome := ConfigOutcome{PRCount: result.Buckets.Total()}
	if outcome.PRCount > 0 {
		messageID, err := s.deliver(logCtx, user, cfg, result.Buckets)
		if err != nil {
			// The audit row below records the attempt as undelivered.
			logging.Error(logCtx, "digest delivery failed",
				slog.Any("err", errs.Loggable(err)),
			)
		} else {
			outcome.MessageID = messageID
			outcome.Sent = true
		}
	} else {
		outcome.Empty = true
		logging.Info(logCtx, "digest empty, nothing to send")
	}

	if _, err := s.digests.CreateUserDigest(ctx, ports.UserDigestCreate{
		ConfigID: cfg.ConfigID,
		UserID:   cfg.UserID,
		SentAt:   now,
		PRCount:  outcome.PRCount,
		// Issue digests are assembled by the issue-tracking collaborator;
		// this run only counts pull requests.
		IssueCount:     0,
		DeliveryType:   cfg.DeliveryType,
		DeliveryTarget: cfg.DeliveryTarget,
		MessageID:      outcome.MessageID,
	}); err != nil {
		return outcome, errs.Wrap(err, "record user digest")
	}

	logging.Info(logCtx, "digest run recorded",
		slog.Int("pr_count", outcome.PRCount),
		slog.Bool("sent", outcome.Sent),
	)
	return outcome, nil
}

// RunConfigByID runs one config immediately, bypassing the schedule
// match. Used by the one-off operator command.
func (s *Service) RunConfigByID(ctx context.Context, configID uint64, now time.Time) (ConfigOutcome, error) {
	cfg, err := s.digests.GetDigestConfig(ctx, configID)
	if err != nil {
		return ConfigOutcome{}, errs.Wrap(err, "load digest config")
	}
	return s.RunConfig(ctx, cfg, now)
}

func (s *Service) deliver(ctx context.Context, user ports.UserRecord, cfg ports.DigestConfigRecord, buckets digest.Buckets) (string, error) {
	teamName := ""
	if digest.Scope(cfg.Scope) == digest.ScopeTeam {
		teamName = cfg.ScopeValue
	}

	switch digest.DeliveryType(cfg.DeliveryType) {
	case digest.DeliveryDM:
		msg := blockkit.RenderDigest(buckets, cfg.Name, digest.Scope(cfg.Scope), teamName)
		return s.dispatcher.SendDirect(ctx, user.SlackAccessToken, user.SlackUserID, msg)
	case digest.DeliveryChannel:
		msg := blockkit.RenderDigest(buckets, cfg.Name, digest.Scope(cfg.Scope), teamName)
		return s.dispatcher.SendToChannel(ctx, user.SlackAccessToken, cfg.DeliveryTarget, msg)
	case digest.DeliveryEmail:
		to := cfg.DeliveryTarget
		if to == "" {
			to = user.Email
		}
		if to == "" {
			return "", errors.New("digest has no email recipient")
		}
		subject, body := blockkit.RenderDigestEmail(buckets, cfg.Name, digest.Scope(cfg.Scope), teamName)
		if err := s.mailer.Send(ctx, to, subject, body); err != nil {
			return "", errs.Wrap(err, "send digest email")
		}
		return "email:" + to, nil
	default:
		return "", errors.New("unknown delivery type " + cfg.DeliveryType)
	}
}

// trackedRepos loads the user's repositories, narrowed by the config's
// repo filter ("all" or a CSV of repository ids).
func (s *Service) trackedRepos(ctx context.Context, userID uint64, filter string) ([]ports.TrackedRepo, error) {
	repos, err := s.users.ListTrackedRepos(ctx, userID)
	if err != nil {
		return nil, errs.Wrap(err, "list tracked repositories")
	}

	trimmed := strings.TrimSpace(filter)
	if trimmed == "" || strings.EqualFold(trimmed, "all") {
		return repos, nil
	}

	wanted := make(map[int64]struct{})
	for _, part := range strings.Split(trimmed, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, errs.Wrapf(err, "invalid repo filter entry %q", part)
		}
		wanted[id] = struct{}{}
	}

	filtered := make([]ports.TrackedRepo, 0, len(repos))
	for _, repo := range repos {
		if _, ok := wanted[repo.RepositoryID]; ok {
			filtered = append(filtered, repo)
		}
	}
	return filtered, nil
}

func (s *Service) teamMembers(ctx context.Context, user ports.UserRecord, teamSlug string) ([]string, error) {
	if user.GitHubOrg == "" {
		return nil, errors.New("team scope requires the user's organization")
	}
	if teamSlug == "" {
		return nil, errors.New("team scope requires a team slug")
	}

	var members []string
	err := s.refresher.WithTokenRefresh(ctx, user.UserID, func(ctx context.Context, token string) error {
		listed, err := s.github.ListTeamMembers(ctx, token, user.GitHubOrg, teamSlug)
		if err != nil {
			return err
		}
		members = listed
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(err, "list team members")
	}
	return members, nil
}
