package event

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const prOpenedPayload = `{
	"action": "opened",
	"pull_request": {
		"number": 42,
		"title": "Add retry to sync",
		"html_url": "https://github.com/acme/api/pull/42",
		"draft": false,
		"merged": false,
		"user": {"id": 7, "login": "alice", "type": "User"},
		"requested_reviewers": [{"id": 8, "login": "bob", "type": "User"}],
		"assignees": [{"id": 9, "login": "carol", "type": "User"}]
	},
	"repository": {"id": 1001, "full_name": "acme/api"},
	"sender": {"id": 7, "login": "alice", "type": "User"}
}`

func TestParsePullRequestOpened(t *testing.T) {
	env, err := Parse("pull_request", "delivery-1", []byte(prOpenedPayload))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if env.Kind != KindPullRequest {
		t.Fatalf("kind = %s, want pull_request", env.Kind)
	}
	if env.Action != "opened" {
		t.Fatalf("action = %q, want opened", env.Action)
	}
	if env.Repo.ID != 1001 || env.Repo.FullName != "acme/api" {
		t.Fatalf("repo = %+v, want id=1001 full_name=acme/api", env.Repo)
	}
	if env.Sender.Login != "alice" || env.Sender.Type != "User" {
		t.Fatalf("sender = %+v, want alice/User", env.Sender)
	}

	if env.PullRequest == nil {
		t.Fatalf("pull request info missing")
	}
	want := &PullRequestInfo{
		Number:             42,
		Title:              "Add retry to sync",
		HTMLURL:            "https://github.com/acme/api/pull/42",
		Author:             Actor{ID: 7, Login: "alice", Type: "User"},
		RequestedReviewers: []string{"bob"},
		Assignees:          []string{"carol"},
	}
	if diff := cmp.Diff(want, env.PullRequest); diff != "" {
		t.Fatalf("pull request mismatch (-want +got):\n%s", diff)
	}

	if env.Subject() != "alice" {
		t.Fatalf("Subject() = %q, want alice", env.Subject())
	}
	if env.Title() != "Add retry to sync" {
		t.Fatalf("Title() = %q", env.Title())
	}
}

func TestParseReviewSubmitted(t *testing.T) {
	payload := `{
		"action": "submitted",
		"review": {"state": "approved", "body": "lgtm", "html_url": "https://github.com/acme/api/pull/42#r1", "user": {"id": 8, "login": "bob", "type": "User"}},
		"pull_request": {"number": 42, "title": "Add retry to sync", "html_url": "https://github.com/acme/api/pull/42", "user": {"id": 7, "login": "alice", "type": "User"}},
		"repository": {"id": 1001, "full_name": "acme/api"},
		"sender": {"id": 8, "login": "bob", "type": "User"}
	}`

	env, err := Parse("pull_request_review", "delivery-2", []byte(payload))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if env.Kind != KindPullRequestReview {
		t.Fatalf("kind = %s", env.Kind)
	}
	if env.Review == nil || env.Review.State != "approved" {
		t.Fatalf("review = %+v, want approved", env.Review)
	}
	if env.Subject() != "bob" {
		t.Fatalf("Subject() = %q, want reviewer bob", env.Subject())
	}
}

func TestParseMembershipAdded(t *testing.T) {
	payload := `{
		"action": "added",
		"member": {"id": 11, "login": "dave", "type": "User"},
		"team": {"name": "Backend", "slug": "backend"},
		"sender": {"id": 99, "login": "svc-bot", "type": "Bot"}
	}`

	env, err := Parse("membership", "delivery-3", []byte(payload))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if env.Membership == nil {
		t.Fatalf("membership info missing")
	}
	if env.Membership.MemberLogin != "dave" || env.Membership.TeamSlug != "backend" {
		t.Fatalf("membership = %+v", env.Membership)
	}
}

func TestParseRejectsEmptyPayload(t *testing.T) {
	if _, err := Parse("pull_request", "d", nil); err == nil {
		t.Fatalf("Parse(empty) expected error")
	}
}

func TestParseKindRoundTrip(t *testing.T) {
	names := []string{
		"pull_request", "pull_request_review", "pull_request_review_comment",
		"issues", "issue_comment", "push", "create", "delete", "release",
		"star", "fork", "membership", "installation",
	}
	for _, name := range names {
		kind := ParseKind(name)
		if kind == KindUnknown {
			t.Fatalf("ParseKind(%q) = unknown", name)
		}
		if kind.String() != name {
			t.Fatalf("String() = %q, want %q", kind.String(), name)
		}
	}
	if ParseKind("deployment_status") != KindUnknown {
		t.Fatalf("ParseKind(deployment_status) should be unknown")
	}
}
