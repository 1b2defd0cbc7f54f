package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"prpulse/internal/errs"
	"prpulse/internal/infrastructure/persistence/sqlite/model"
	"prpulse/internal/ports"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetUser(ctx context.Context, userID uint64) (ports.UserRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.UserRecord{}, err
	}

	var row model.User
	if err := db.First(&row, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.UserRecord{}, ports.ErrUserNotFound
		}
		return ports.UserRecord{}, errs.Wrap(err, "query user")
	}
	return mapUser(row), nil
}

func (r *UserRepository) ListUsersTrackingRepo(ctx context.Context, repositoryID int64) ([]ports.UserRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	sub := db.Model(&model.TrackedRepo{}).
		Select("user_id").
		Where("repository_id = ?", repositoryID)

	var rows []model.User
	if err := db.Where("user_id IN (?)", sub).Order("user_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query users tracking repo")
	}

	items := make([]ports.UserRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapUser(row))
	}
	return items, nil
}

func (r *UserRepository) ListTrackedRepos(ctx context.Context, userID uint64) ([]ports.TrackedRepo, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.TrackedRepo
	if err := db.Where("user_id = ?", userID).Order("repository_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query tracked repos")
	}

	items := make([]ports.TrackedRepo, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.TrackedRepo{
			UserID:       row.UserID,
			RepositoryID: row.RepositoryID,
			FullName:     row.FullName,
		})
	}
	return items, nil
}

func (r *UserRepository) UpdateGitHubTokens(ctx context.Context, userID uint64, accessToken string, refreshToken string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"github_access_token":  accessToken,
			"github_refresh_token": refreshToken,
			"updated_at":           time.Now().UTC(),
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update github tokens")
	}
	if result.RowsAffected == 0 {
		return ports.ErrUserNotFound
	}
	return nil
}

func mapUser(row model.User) ports.UserRecord {
	return ports.UserRecord{
		UserID:             row.UserID,
		GitHubLogin:        row.GitHubLogin,
		GitHubOrg:          row.GitHubOrg,
		SlackUserID:        row.SlackUserID,
		SlackTeamID:        row.SlackTeamID,
		Email:              row.Email,
		GitHubAccessToken:  row.GitHubAccessToken,
		GitHubRefreshToken: row.GitHubRefreshToken,
		SlackAccessToken:   row.SlackAccessToken,
		NotifyPullRequests: row.NotifyPullRequests,
		NotifyIssues:       row.NotifyIssues,
		NotifyReviews:      row.NotifyReviews,
		NotifyComments:     row.NotifyComments,
	}
}
