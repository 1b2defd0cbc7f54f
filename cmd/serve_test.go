package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"prpulse/internal/blockkit"
	"prpulse/internal/bootstrap/config"
	"prpulse/internal/infrastructure/persistence/sqlite/model"
	"prpulse/internal/infrastructure/persistence/sqlite/repository"
	"prpulse/internal/infrastructure/profile"
	"prpulse/internal/usecase/ingest"
	"prpulse/internal/usecase/notify"
)

const webhookTestSecret = "hook-secret"

type nopSync struct{}

func (nopSync) MemberAdded(context.Context, string, string) error   { return nil }
func (nopSync) MemberRemoved(context.Context, string, string) error { return nil }
func (nopSync) InstallationChanged(context.Context, string) error   { return nil }

type nopChat struct{}

func (nopChat) OpenDM(_ context.Context, _ string, userID string) (string, error) {
	return "D" + userID, nil
}

func (nopChat) PostMessage(context.Context, string, string, blockkit.Message) (string, error) {
	return "1727000000.0003", nil
}

func newTestRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Event{},
		&model.Notification{},
		&model.User{},
		&model.TrackedRepo{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := config.Config{}
	cfg.Server.WebhookSecret = webhookTestSecret

	events := repository.NewEventRepository(db)
	ingestSvc := ingest.NewService(cfg, events, nopSync{})
	notifySvc := notify.NewService(
		repository.NewUserRepository(db),
		repository.NewNotificationRepository(db),
		events,
		profile.NewInvolvementMatcher(),
		notify.NewDispatcher(nopChat{}),
	)

	return newWebhookRouter(context.Background(), ingestSvc, notifySvc), db
}

func postWebhook(t *testing.T, router http.Handler, eventType string, payload []byte, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/github", bytes.NewReader(payload))
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-GitHub-Delivery", "d-1")
	req.Header.Set("X-Hub-Signature-256", ingest.SignPayload(webhookTestSecret, payload))
	if mutate != nil {
		mutate(req)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) webhookResponse {
	t.Helper()
	var resp webhookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestWebhookMissingHeadersRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postWebhook(t, router, "pull_request", []byte(`{}`), func(r *http.Request) {
		r.Header.Del("X-GitHub-Delivery")
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestWebhookInvalidSignatureRejected(t *testing.T) {
	router, db := newTestRouter(t)

	rec := postWebhook(t, router, "pull_request", []byte(`{}`), func(r *http.Request) {
		r.Header.Set("X-Hub-Signature-256", "sha256=00000000")
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var count int64
	if err := db.Model(&model.Event{}).Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected delivery must not store events")
	}
}

func TestWebhookIrrelevantEventSkipped(t *testing.T) {
	router, db := newTestRouter(t)

	payload := []byte(`{
		"action": "edited",
		"pull_request": {"number": 1, "title": "t", "html_url": "u", "user": {"id": 1, "login": "alice", "type": "User"}},
		"repository": {"id": 1001, "full_name": "acme/api"},
		"sender": {"id": 1, "login": "alice", "type": "User"}
	}`)
	rec := postWebhook(t, router, "pull_request", payload, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	resp := decodeResponse(t, rec)
	if resp.Message != "skipped" || resp.DeliveryID != "d-1" || resp.EventType != "pull_request" {
		t.Fatalf("response = %+v", resp)
	}

	var count int64
	if err := db.Model(&model.Event{}).Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 0 {
		t.Fatalf("skipped delivery must not store events")
	}
}

func TestWebhookRelevantEventProcessed(t *testing.T) {
	router, db := newTestRouter(t)

	bob := model.User{
		GitHubLogin:      "bob",
		SlackUserID:      "U_bob",
		SlackAccessToken: "xoxp-bob",
	}
	if err := db.Create(&bob).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := db.Create(&model.TrackedRepo{UserID: bob.UserID, RepositoryID: 1001, FullName: "acme/api"}).Error; err != nil {
		t.Fatalf("seed tracked repo: %v", err)
	}

	payload := []byte(`{
		"action": "opened",
		"pull_request": {
			"number": 42, "title": "Add retry", "html_url": "https://github.com/acme/api/pull/42",
			"user": {"id": 1, "login": "alice", "type": "User"},
			"requested_reviewers": [{"id": 2, "login": "bob", "type": "User"}]
		},
		"repository": {"id": 1001, "full_name": "acme/api"},
		"sender": {"id": 1, "login": "alice", "type": "User"}
	}`)
	rec := postWebhook(t, router, "pull_request", payload, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", rec.Code, rec.Body.String())
	}
	if resp := decodeResponse(t, rec); resp.Message != "processed" {
		t.Fatalf("response = %+v", resp)
	}

	var notifications int64
	if err := db.Model(&model.Notification{}).Count(&notifications).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if notifications != 1 {
		t.Fatalf("notifications = %d, want 1", notifications)
	}

	var stored model.Event
	if err := db.First(&stored).Error; err != nil {
		t.Fatalf("load event: %v", err)
	}
	if !stored.Processed {
		t.Fatalf("event should be processed after fan-out")
	}
}
