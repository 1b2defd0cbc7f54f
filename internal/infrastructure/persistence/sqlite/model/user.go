package model

import "time"

// User carries the credentials subset and legacy preference flags this
// core reads. Account CRUD and OAuth exchange live elsewhere.
type User struct {
	UserID             uint64    `gorm:"column:user_id;primaryKey;autoIncrement"`
	GitHubLogin        string    `gorm:"column:github_login;type:text;not null;uniqueIndex"`
	GitHubOrg          string    `gorm:"column:github_org;type:text"`
	SlackUserID        string    `gorm:"column:slack_user_id;type:text"`
	SlackTeamID        string    `gorm:"column:slack_team_id;type:text"`
	Email              string    `gorm:"column:email;type:text"`
	GitHubAccessToken  string    `gorm:"column:github_access_token;type:text"`
	GitHubRefreshToken string    `gorm:"column:github_refresh_token;type:text"`
	SlackAccessToken   string    `gorm:"column:slack_access_token;type:text"`
	NotifyPullRequests bool      `gorm:"column:notify_pull_requests;not null;default:1"`
	NotifyIssues       bool      `gorm:"column:notify_issues;not null;default:1"`
	NotifyReviews      bool      `gorm:"column:notify_reviews;not null;default:1"`
	NotifyComments     bool      `gorm:"column:notify_comments;not null;default:1"`
	CreatedAt          time.Time `gorm:"column:created_at;not null"`
	UpdatedAt          time.Time `gorm:"column:updated_at;not null"`
}

func (User) TableName() string {
	return "users"
}

// TrackedRepo links a user to a repository they watch. Maintained by the
// external membership sync; read-only here.
type TrackedRepo struct {
	ID           uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       uint64 `gorm:"column:user_id;not null;uniqueIndex:idx_tracked_repos_user_repo"`
	RepositoryID int64  `gorm:"column:repository_id;not null;uniqueIndex:idx_tracked_repos_user_repo;index"`
	FullName     string `gorm:"column:full_name;type:text;not null"`
}

func (TrackedRepo) TableName() string {
	return "tracked_repos"
}
