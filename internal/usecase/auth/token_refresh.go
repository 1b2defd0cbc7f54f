// Package auth wraps external-API calls with single-shot token refresh.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"prpulse/internal/bootstrap/logging"
	"prpulse/internal/errs"
	"prpulse/internal/ports"
)

// ErrReauthRequired is terminal: the user must reconnect their account.
// It is never retried.
var ErrReauthRequired = errors.New("reauthorization required")

type TokenRefresher struct {
	tokens ports.TokenService
}

func NewTokenRefresher(tokens ports.TokenService) *TokenRefresher {
	return &TokenRefresher{tokens: tokens}
}

// WithTokenRefresh loads the user's access token and runs fn with it.
// On ports.ErrUnauthorized it requests exactly one refreshed token and
// retries fn once. At most one retry per call; never loops.
func (r *TokenRefresher) WithTokenRefresh(ctx context.Context, userID uint64, fn func(ctx context.Context, token string) error) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if fn == nil {
		return errors.New("api call is required")
	}

	token, err := r.tokens.GetValidToken(ctx, userID)
	if err != nil {
		return errs.Wrap(err, "load access token")
	}
	if token == "" {
		return ErrReauthRequired
	}

	err = fn(ctx, token)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ports.ErrUnauthorized) {
		return err
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "auth.token_refresh")),
		"access token rejected, refreshing once",
		slog.Uint64("user_id", userID),
	)

	refreshed, refreshErr := r.tokens.RefreshToken(ctx, userID)
	if refreshErr != nil || refreshed == "" {
		return ErrReauthRequired
	}

	if err := fn(ctx, refreshed); err != nil {
		if errors.Is(err, ports.ErrUnauthorized) {
			return ErrReauthRequired
		}
		return err
	}
	return nil
}
