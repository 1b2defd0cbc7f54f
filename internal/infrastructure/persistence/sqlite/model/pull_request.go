package model

import "time"

// PullRequest mirrors one upstream pull request. The mirror is refreshed
// by the sync collaborator; child rows are deleted and recreated on each
// sync.
type PullRequest struct {
	UpstreamID   int64     `gorm:"column:upstream_id;primaryKey"`
	RepositoryID int64     `gorm:"column:repository_id;not null;uniqueIndex:idx_pull_requests_repo_number"`
	Number       int       `gorm:"column:number;not null;uniqueIndex:idx_pull_requests_repo_number"`
	Title        string    `gorm:"column:title;type:text;not null"`
	HTMLURL      string    `gorm:"column:html_url;type:text;not null"`
	AuthorLogin  string    `gorm:"column:author_login;type:text;not null;index"`
	State        string    `gorm:"column:state;type:text;not null;index"`
	Draft        bool      `gorm:"column:draft;not null;default:0"`
	Mergeable    *bool     `gorm:"column:mergeable"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (PullRequest) TableName() string {
	return "pull_requests"
}

type PullRequestReviewer struct {
	ID            uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	PullRequestID int64  `gorm:"column:pull_request_id;not null;index"`
	Login         string `gorm:"column:login;type:text;not null"`
}

func (PullRequestReviewer) TableName() string {
	return "pull_request_reviewers"
}

type PullRequestAssignee struct {
	ID            uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	PullRequestID int64  `gorm:"column:pull_request_id;not null;index"`
	Login         string `gorm:"column:login;type:text;not null"`
}

func (PullRequestAssignee) TableName() string {
	return "pull_request_assignees"
}

type PullRequestLabel struct {
	ID            uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	PullRequestID int64  `gorm:"column:pull_request_id;not null;index"`
	Name          string `gorm:"column:name;type:text;not null"`
}

func (PullRequestLabel) TableName() string {
	return "pull_request_labels"
}

type PullRequestCheck struct {
	ID            uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	PullRequestID int64  `gorm:"column:pull_request_id;not null;index"`
	State         string `gorm:"column:state;type:text;not null"`
}

func (PullRequestCheck) TableName() string {
	return "pull_request_checks"
}
