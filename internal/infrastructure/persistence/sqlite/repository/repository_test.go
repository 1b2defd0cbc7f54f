package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"prpulse/internal/infrastructure/persistence/sqlite/model"
	"prpulse/internal/ports"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Event{},
		&model.Notification{},
		&model.DigestConfig{},
		&model.UserDigest{},
		&model.PullRequest{},
		&model.PullRequestReviewer{},
		&model.PullRequestAssignee{},
		&model.PullRequestLabel{},
		&model.PullRequestCheck{},
		&model.User{},
		&model.TrackedRepo{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestEventRepositoryLifecycle(t *testing.T) {
	db := setupDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	created, err := repo.CreateEvent(ctx, ports.EventCreate{
		EventType:      "pull_request",
		Action:         "opened",
		RepositoryID:   1001,
		RepositoryName: "acme/api",
		SenderID:       7,
		SenderLogin:    "alice",
		Payload:        []byte(`{"action":"opened"}`),
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if created.EventID == 0 {
		t.Fatalf("event id not assigned")
	}
	if created.Processed {
		t.Fatalf("new event should not be processed")
	}

	got, err := repo.GetEvent(ctx, created.EventID)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if got.EventType != "pull_request" || got.SenderLogin != "alice" {
		t.Fatalf("GetEvent() = %+v", got)
	}

	if err := repo.MarkEventProcessed(ctx, created.EventID); err != nil {
		t.Fatalf("MarkEventProcessed() error = %v", err)
	}
	got, err = repo.GetEvent(ctx, created.EventID)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if !got.Processed {
		t.Fatalf("event should be processed")
	}

	if err := repo.MarkEventProcessed(ctx, 9999); !errors.Is(err, ports.ErrEventNotFound) {
		t.Fatalf("MarkEventProcessed(missing) error = %v, want ErrEventNotFound", err)
	}

	deleted, err := repo.DeleteEventsBefore(ctx, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteEventsBefore() error = %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
}

func TestNotificationRepositoryUniquePerUserEvent(t *testing.T) {
	db := setupDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	first, err := repo.CreateNotification(ctx, ports.NotificationCreate{
		UserID:      1,
		EventID:     10,
		MessageType: "pull_request",
		Reason:      "review_requested",
	})
	if err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	if _, err := repo.CreateNotification(ctx, ports.NotificationCreate{
		UserID:      1,
		EventID:     10,
		MessageType: "pull_request",
		Reason:      "review_requested",
	}); err == nil {
		t.Fatalf("duplicate (user, event) notification should fail")
	}

	if err := repo.SetNotificationMessageID(ctx, first.NotificationID, "167.89"); err != nil {
		t.Fatalf("SetNotificationMessageID() error = %v", err)
	}

	rows, err := repo.ListNotificationsForUser(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListNotificationsForUser() error = %v", err)
	}
	if len(rows) != 1 || rows[0].MessageID != "167.89" {
		t.Fatalf("rows = %+v", rows)
	}

	count, err := repo.CountNotificationsForEvent(ctx, 10)
	if err != nil {
		t.Fatalf("CountNotificationsForEvent() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestDigestRepositoryWindowCount(t *testing.T) {
	db := setupDB(t)
	repo := NewDigestRepository(db)
	ctx := context.Background()

	if err := db.Create(&model.DigestConfig{
		UserID:       1,
		Name:         "morning",
		Enabled:      true,
		DeliveryTime: "09:00",
		Timezone:     "UTC",
		Weekdays:     "1,2,3,4,5",
		Scope:        "user",
		RepoFilter:   "all",
		DeliveryType: "dm",
	}).Error; err != nil {
		t.Fatalf("seed config: %v", err)
	}

	configs, err := repo.ListEnabledDigestConfigs(ctx)
	if err != nil {
		t.Fatalf("ListEnabledDigestConfigs() error = %v", err)
	}
	if len(configs) != 1 {
		t.Fatalf("configs = %d, want 1", len(configs))
	}
	configID := configs[0].ConfigID

	dayStart := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	lateYesterday := dayStart.Add(-time.Minute) // 23:59 previous day
	earlyToday := dayStart.Add(time.Minute)     // 00:01 today
	for _, sentAt := range []time.Time{lateYesterday, earlyToday} {
		if _, err := repo.CreateUserDigest(ctx, ports.UserDigestCreate{
			ConfigID:     configID,
			UserID:       1,
			SentAt:       sentAt,
			PRCount:      3,
			DeliveryType: "dm",
		}); err != nil {
			t.Fatalf("CreateUserDigest() error = %v", err)
		}
	}

	count, err := repo.CountUserDigestsInWindow(ctx, configID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("CountUserDigestsInWindow() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want only the 00:01 row inside today", count)
	}
}

func TestPullRequestRepositoryUpsertReplacesChildren(t *testing.T) {
	db := setupDB(t)
	repo := NewPullRequestRepository(db)
	ctx := context.Background()

	pr := ports.PullRequestMirror{
		UpstreamID:         555,
		RepositoryID:       1001,
		Number:             42,
		Title:              "Add retry",
		HTMLURL:            "https://github.com/acme/api/pull/42",
		AuthorLogin:        "alice",
		State:              "open",
		RequestedReviewers: []string{"bob", "carol"},
		Assignees:          []string{"alice"},
		Labels:             []string{"bug"},
		UpdatedAt:          time.Now(),
	}
	if err := repo.UpsertPullRequest(ctx, pr); err != nil {
		t.Fatalf("UpsertPullRequest() error = %v", err)
	}

	pr.RequestedReviewers = []string{"bob"}
	pr.Title = "Add retry with backoff"
	if err := repo.UpsertPullRequest(ctx, pr); err != nil {
		t.Fatalf("UpsertPullRequest() second error = %v", err)
	}

	rows, err := repo.ListOpenPullRequests(ctx, 1001)
	if err != nil {
		t.Fatalf("ListOpenPullRequests() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Title != "Add retry with backoff" {
		t.Fatalf("title = %q", rows[0].Title)
	}
	if len(rows[0].RequestedReviewers) != 1 || rows[0].RequestedReviewers[0] != "bob" {
		t.Fatalf("reviewers = %v, want replaced with [bob]", rows[0].RequestedReviewers)
	}
}

func TestUserRepositoryTrackingAndTokens(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := db.Create(&model.User{
		GitHubLogin:       "alice",
		GitHubAccessToken: "tok-1",
		CreatedAt:         now,
		UpdatedAt:         now,
	}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := db.Create(&model.TrackedRepo{UserID: 1, RepositoryID: 1001, FullName: "acme/api"}).Error; err != nil {
		t.Fatalf("seed tracked repo: %v", err)
	}

	users, err := repo.ListUsersTrackingRepo(ctx, 1001)
	if err != nil {
		t.Fatalf("ListUsersTrackingRepo() error = %v", err)
	}
	if len(users) != 1 || users[0].GitHubLogin != "alice" {
		t.Fatalf("users = %+v", users)
	}

	if users, err = repo.ListUsersTrackingRepo(ctx, 2002); err != nil || len(users) != 0 {
		t.Fatalf("untracked repo: users=%v err=%v", users, err)
	}

	repos, err := repo.ListTrackedRepos(ctx, 1)
	if err != nil || len(repos) != 1 || repos[0].FullName != "acme/api" {
		t.Fatalf("ListTrackedRepos() = %+v, %v", repos, err)
	}

	if err := repo.UpdateGitHubTokens(ctx, 1, "tok-2", "refresh-2"); err != nil {
		t.Fatalf("UpdateGitHubTokens() error = %v", err)
	}
	user, err := repo.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.GitHubAccessToken != "tok-2" || user.GitHubRefreshToken != "refresh-2" {
		t.Fatalf("tokens = %q/%q", user.GitHubAccessToken, user.GitHubRefreshToken)
	}

	if _, err := repo.GetUser(ctx, 99); !errors.Is(err, ports.ErrUserNotFound) {
		t.Fatalf("GetUser(missing) error = %v, want ErrUserNotFound", err)
	}
}
