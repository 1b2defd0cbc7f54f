package ports

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrDigestConfigNotFound = errors.New("digest config not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

type EventRecord struct {
	EventID        uint64
	EventType      string
	Action         string
	RepositoryID   int64
	RepositoryName string
	SenderID       int64
	SenderLogin    string
	Payload        []byte
	Processed      bool
	CreatedAt      time.Time
}

type EventCreate struct {
	EventType      string
	Action         string
	RepositoryID   int64
	RepositoryName string
	SenderID       int64
	SenderLogin    string
	Payload        []byte
	Processed      bool
}

type EventRepository interface {
	CreateEvent(ctx context.Context, input EventCreate) (EventRecord, error)
	GetEvent(ctx context.Context, eventID uint64) (EventRecord, error)
	MarkEventProcessed(ctx context.Context, eventID uint64) error
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type NotificationRecord struct {
	NotificationID uint64
	UserID         uint64
	EventID        uint64
	MessageType    string
	Payload        []byte
	Reason         string
	Context        string
	MessageID      string
	CreatedAt      time.Time
}

type NotificationCreate struct {
	UserID      uint64
	EventID     uint64
	MessageType string
	Payload     []byte
	Reason      string
	Context     string
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, input NotificationCreate) (NotificationRecord, error)
	SetNotificationMessageID(ctx context.Context, notificationID uint64, messageID string) error
	CountNotificationsForEvent(ctx context.Context, eventID uint64) (int64, error)
	ListNotificationsForUser(ctx context.Context, userID uint64, limit int) ([]NotificationRecord, error)
	DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type DigestConfigRecord struct {
	ConfigID       uint64
	UserID         uint64
	Name           string
	Enabled        bool
	DeliveryTime   string
	Timezone       string
	Weekdays       string
	Scope          string
	ScopeValue     string
	RepoFilter     string
	DeliveryType   string
	DeliveryTarget string
}

type UserDigestRecord struct {
	UserDigestID   uint64
	ConfigID       uint64
	UserID         uint64
	SentAt         time.Time
	PRCount        int
	IssueCount     int
	DeliveryType   string
	DeliveryTarget string
	MessageID      string
}

type UserDigestCreate struct {
	ConfigID       uint64
	UserID         uint64
	SentAt         time.Time
	PRCount        int
	IssueCount     int
	DeliveryType   string
	DeliveryTarget string
	MessageID      string
}

// DigestRepository reads digest configs (owned by the CRUD layer) and
// appends to the user digest audit log.
type DigestRepository interface {
	ListEnabledDigestConfigs(ctx context.Context) ([]DigestConfigRecord, error)
	GetDigestConfig(ctx context.Context, configID uint64) (DigestConfigRecord, error)
	CreateUserDigest(ctx context.Context, input UserDigestCreate) (UserDigestRecord, error)
	CountUserDigestsInWindow(ctx context.Context, configID uint64, start time.Time, end time.Time) (int64, error)
}

type UserRecord struct {
	UserID             uint64
	GitHubLogin        string
	GitHubOrg          string
	SlackUserID        string
	SlackTeamID        string
	Email              string
	GitHubAccessToken  string
	GitHubRefreshToken string
	SlackAccessToken   string

	// Legacy per-event-type preference flags, consulted only for kinds
	// without a mapped notification category.
	NotifyPullRequests bool
	NotifyIssues       bool
	NotifyReviews      bool
	NotifyComments     bool
}

type TrackedRepo struct {
	UserID       uint64
	RepositoryID int64
	FullName     string
}

type UserRepository interface {
	GetUser(ctx context.Context, userID uint64) (UserRecord, error)
	ListUsersTrackingRepo(ctx context.Context, repositoryID int64) ([]UserRecord, error)
	ListTrackedRepos(ctx context.Context, userID uint64) ([]TrackedRepo, error)
	UpdateGitHubTokens(ctx context.Context, userID uint64, accessToken string, refreshToken string) error
}

type PullRequestMirror struct {
	UpstreamID         int64
	RepositoryID       int64
	Number             int
	Title              string
	HTMLURL            string
	AuthorLogin        string
	State              string
	Draft              bool
	Mergeable          *bool
	RequestedReviewers []string
	Assignees          []string
	Labels             []string
	CheckStates        []string
	UpdatedAt          time.Time
}

// PullRequestRepository reads the locally mirrored pull request
// projection. The mirror is refreshed by an external sync collaborator;
// this core only reads it and the upsert exists for that collaborator
// and for tests.
type PullRequestRepository interface {
	UpsertPullRequest(ctx context.Context, input PullRequestMirror) error
	ListOpenPullRequests(ctx context.Context, repositoryID int64) ([]PullRequestMirror, error)
}
