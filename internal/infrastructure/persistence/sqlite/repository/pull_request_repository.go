package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"prpulse/internal/errs"
	"prpulse/internal/infrastructure/persistence/sqlite/model"
	"prpulse/internal/ports"
)

type PullRequestRepository struct {
	db *gorm.DB
}

func NewPullRequestRepository(db *gorm.DB) *PullRequestRepository {
	return &PullRequestRepository{db: db}
}

// UpsertPullRequest replaces the mirror row and its child rows. The sync
// collaborator calls this on every refresh, so child lists are deleted
// and recreated rather than diffed.
func (r *PullRequestRepository) UpsertPullRequest(ctx context.Context, input ports.PullRequestMirror) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		row := model.PullRequest{
			UpstreamID:   input.UpstreamID,
			RepositoryID: input.RepositoryID,
			Number:       input.Number,
			Title:        input.Title,
			HTMLURL:      input.HTMLURL,
			AuthorLogin:  input.AuthorLogin,
			State:        input.State,
			Draft:        input.Draft,
			Mergeable:    input.Mergeable,
			UpdatedAt:    input.UpdatedAt.UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "upstream_id"}},
			UpdateAll: true,
		}).Create(&row).Error; err != nil {
			return errs.Wrap(err, "upsert pull request")
		}

		for _, child := range []any{
			&model.PullRequestReviewer{},
			&model.PullRequestAssignee{},
			&model.PullRequestLabel{},
			&model.PullRequestCheck{},
		} {
			if err := tx.Where("pull_request_id = ?", input.UpstreamID).Delete(child).Error; err != nil {
				return errs.Wrap(err, "clear pull request children")
			}
		}

		for _, login := range input.RequestedReviewers {
			if err := tx.Create(&model.PullRequestReviewer{PullRequestID: input.UpstreamID, Login: login}).Error; err != nil {
				return errs.Wrap(err, "insert reviewer")
			}
		}
		for _, login := range input.Assignees {
			if err := tx.Create(&model.PullRequestAssignee{PullRequestID: input.UpstreamID, Login: login}).Error; err != nil {
				return errs.Wrap(err, "insert assignee")
			}
		}
		for _, name := range input.Labels {
			if err := tx.Create(&model.PullRequestLabel{PullRequestID: input.UpstreamID, Name: name}).Error; err != nil {
				return errs.Wrap(err, "insert label")
			}
		}
		for _, state := range input.CheckStates {
			if err := tx.Create(&model.PullRequestCheck{PullRequestID: input.UpstreamID, State: state}).Error; err != nil {
				return errs.Wrap(err, "insert check")
			}
		}
		return nil
	})
}

func (r *PullRequestRepository) ListOpenPullRequests(ctx context.Context, repositoryID int64) ([]ports.PullRequestMirror, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.PullRequest
	if err := db.
		Where("repository_id = ? AND state = ?", repositoryID, "open").
		Order("number asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query open pull requests")
	}

	items := make([]ports.PullRequestMirror, 0, len(rows))
	for _, row := range rows {
		item := ports.PullRequestMirror{
			UpstreamID:   row.UpstreamID,
			RepositoryID: row.RepositoryID,
			Number:       row.Number,
			Title:        row.Title,
			HTMLURL:      row.HTMLURL,
			AuthorLogin:  row.AuthorLogin,
			State:        row.State,
			Draft:        row.Draft,
			Mergeable:    row.Mergeable,
			UpdatedAt:    row.UpdatedAt,
		}

		var reviewers []model.PullRequestReviewer
		if err := db.Where("pull_request_id = ?", row.UpstreamID).Order("login asc").Find(&reviewers).Error; err != nil {
			return nil, errs.Wrap(err, "query reviewers")
		}
		for _, reviewer := range reviewers {
			item.RequestedReviewers = append(item.RequestedReviewers, reviewer.Login)
		}

		var assignees []model.PullRequestAssignee
		if err := db.Where("pull_request_id = ?", row.UpstreamID).Order("login asc").Find(&assignees).Error; err != nil {
			return nil, errs.Wrap(err, "query assignees")
		}
		for _, assignee := range assignees {
			item.Assignees = append(item.Assignees, assignee.Login)
		}

		var labels []model.PullRequestLabel
		if err := db.Where("pull_request_id = ?", row.UpstreamID).Order("name asc").Find(&labels).Error; err != nil {
			return nil, errs.Wrap(err, "query labels")
		}
		for _, label := range labels {
			item.Labels = append(item.Labels, label.Name)
		}

		var checks []model.PullRequestCheck
		if err := db.Where("pull_request_id = ?", row.UpstreamID).Find(&checks).Error; err != nil {
			return nil, errs.Wrap(err, "query checks")
		}
		for _, check := range checks {
			item.CheckStates = append(item.CheckStates, check.State)
		}

		items = append(items, item)
	}
	return items, nil
}
