// Package identity implements the token service collaborator on top of
// the stored per-user credentials, refreshing GitHub tokens through the
// OAuth refresh grant. The authorization-code exchange itself lives in
// the account layer, not here.
package identity

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"prpulse/internal/bootstrap/config"
	"prpulse/internal/bootstrap/logging"
	"prpulse/internal/errs"
	"prpulse/internal/ports"
)

type GitHubTokenService struct {
	users ports.UserRepository
	conf  *oauth2.Config
}

func NewGitHubTokenService(cfg config.Config, users ports.UserRepository) *GitHubTokenService {
	return &GitHubTokenService{
		users: users,
		conf: &oauth2.Config{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			Endpoint:     oauthgithub.Endpoint,
		},
	}
}

// GetValidToken returns the stored access token, or an empty string when
// the user has none.
func (s *GitHubTokenService) GetValidToken(ctx context.Context, userID uint64) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return "", nil
		}
		return "", errs.Wrap(err, "load user for token")
	}
	return user.GitHubAccessToken, nil
}

// RefreshToken exchanges the stored refresh token for a new access token
// and persists both. Returns an empty token when no refresh token exists
// or the grant is rejected.
func (s *GitHubTokenService) RefreshToken(ctx context.Context, userID uint64) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "identity.token_service"), slog.Uint64("user_id", userID))

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return "", nil
		}
		return "", errs.Wrap(err, "load user for refresh")
	}
	if user.GitHubRefreshToken == "" {
		return "", nil
	}

	refreshed, err := s.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: user.GitHubRefreshToken}).Token()
	if err != nil {
		logging.Warn(logCtx, "token refresh rejected", slog.Any("err", errs.Loggable(err)))
		return "", nil
	}

	newRefresh := refreshed.RefreshToken
	if newRefresh == "" {
		newRefresh = user.GitHubRefreshToken
	}
	if err := s.users.UpdateGitHubTokens(ctx, userID, refreshed.AccessToken, newRefresh); err != nil {
		return "", errs.Wrap(err, "persist refreshed tokens")
	}

	logging.Info(logCtx, "github token refreshed")
	return refreshed.AccessToken, nil
}
