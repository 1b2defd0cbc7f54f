package blockkit

import (
	"fmt"
	"strings"
	"testing"

	"prpulse/internal/domain/digest"
	"prpulse/internal/domain/event"
)

func TestToMrkdwnSubstitutions(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "bold", in: "a **bold** word", want: "a *bold* word"},
		{name: "strike", in: "~~gone~~", want: "~gone~"},
		{name: "link", in: "see [docs](https://example.com/d)", want: "see <https://example.com/d|docs>"},
		{name: "italic", in: "an _aside_ here", want: "an _aside_ here"},
		{name: "code untouched", in: "run `go vet`", want: "run `go vet`"},
		{name: "mixed", in: "**hi** [x](https://x.dev)", want: "*hi* <https://x.dev|x>"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToMrkdwn(tc.in); got != tc.want {
				t.Fatalf("ToMrkdwn(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 4000)
	got := Truncate(long, 3000)
	if len([]rune(got)) > 3000 {
		t.Fatalf("Truncate() length = %d, want <= 3000", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("Truncate() should end with marker")
	}
	if Truncate("short", 3000) != "short" {
		t.Fatalf("Truncate() should leave short strings alone")
	}
}

func TestColorIconFallbacks(t *testing.T) {
	if ColorForAction("no_such_action") != defaultColor {
		t.Fatalf("ColorForAction() want default fallback")
	}
	if IconForAction("no_such_action") != defaultIcon {
		t.Fatalf("IconForAction() want default fallback")
	}
	if IconForReviewState("approved") != "✅" {
		t.Fatalf("IconForReviewState(approved) = %q", IconForReviewState("approved"))
	}
	if ColorForReviewState("changes_requested") == defaultColor {
		t.Fatalf("ColorForReviewState(changes_requested) should be mapped")
	}
}

func TestRenderEventPullRequestOpened(t *testing.T) {
	env := event.Envelope{
		Kind:   event.KindPullRequest,
		Type:   "pull_request",
		Action: "opened",
		Repo:   event.Repository{ID: 1, FullName: "acme/api"},
		Sender: event.Actor{Login: "alice"},
		PullRequest: &event.PullRequestInfo{
			Number:  42,
			Title:   "Add retry",
			HTMLURL: "https://github.com/acme/api/pull/42",
			Author:  event.Actor{Login: "alice"},
		},
	}

	msg := RenderEvent(env)
	if msg.Text == "" {
		t.Fatalf("fallback text is empty")
	}
	if len(msg.Blocks) == 0 || msg.Blocks[0].Type != "header" {
		t.Fatalf("first block should be header, got %+v", msg.Blocks)
	}
	if len(msg.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(msg.Attachments))
	}
	if msg.Attachments[0].Color != ColorForAction("opened") {
		t.Fatalf("attachment color = %q", msg.Attachments[0].Color)
	}
	body := msg.Attachments[0].Blocks[0].Text.Text
	if !strings.Contains(body, "#42") || !strings.Contains(body, "alice") {
		t.Fatalf("section body = %q", body)
	}
}

func TestRenderEventReviewUsesReviewStateColor(t *testing.T) {
	env := event.Envelope{
		Kind:   event.KindPullRequestReview,
		Type:   "pull_request_review",
		Action: "submitted",
		Repo:   event.Repository{FullName: "acme/api"},
		Sender: event.Actor{Login: "bob"},
		Review: &event.ReviewInfo{State: "approved", Author: event.Actor{Login: "bob"}},
		PullRequest: &event.PullRequestInfo{
			Number: 42, Title: "Add retry", HTMLURL: "https://github.com/acme/api/pull/42",
			Author: event.Actor{Login: "alice"},
		},
	}

	msg := RenderEvent(env)
	if msg.Attachments[0].Color != ColorForReviewState("approved") {
		t.Fatalf("color = %q, want review state color", msg.Attachments[0].Color)
	}
}

func makePRs(n int) []digest.PRSummary {
	out := make([]digest.PRSummary, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, digest.PRSummary{
			RepoFullName: "acme/api",
			Number:       i + 1,
			Title:        fmt.Sprintf("change %d", i+1),
			HTMLURL:      fmt.Sprintf("https://github.com/acme/api/pull/%d", i+1),
			Author:       "alice",
		})
	}
	return out
}

func TestRenderDigestTruncatesLongLists(t *testing.T) {
	buckets := digest.Buckets{WaitingOnUser: makePRs(8)}
	msg := RenderDigest(buckets, "morning", digest.ScopeUser, "")

	var listBody string
	for _, block := range msg.Blocks {
		if block.Type == "section" && block.Text != nil && strings.Contains(block.Text.Text, "•") {
			listBody = block.Text.Text
		}
	}
	if listBody == "" {
		t.Fatalf("no PR list section rendered")
	}
	if got := strings.Count(listBody, "•"); got != 5 {
		t.Fatalf("rendered items = %d, want 5", got)
	}
	if !strings.Contains(listBody, "...and 3 more") {
		t.Fatalf("missing truncation marker in %q", listBody)
	}
}

func TestRenderDigestSkipsEmptySections(t *testing.T) {
	buckets := digest.Buckets{UserDraftPRs: makePRs(1)}
	msg := RenderDigest(buckets, "morning", digest.ScopeUser, "")

	joined := blocksText(msg.Blocks)
	if strings.Contains(joined, "Waiting on your review") {
		t.Fatalf("empty bucket rendered: %q", joined)
	}
	if !strings.Contains(joined, "Your drafts") {
		t.Fatalf("draft bucket missing: %q", joined)
	}
}

func TestRenderDigestTeamScopeTitle(t *testing.T) {
	msg := RenderDigest(digest.Buckets{UserOpenPRs: makePRs(1)}, "standup", digest.ScopeTeam, "backend")
	if !strings.Contains(msg.Text, "team backend") {
		t.Fatalf("title = %q, want team name", msg.Text)
	}
}

func TestRenderDigestEmail(t *testing.T) {
	subject, body := RenderDigestEmail(digest.Buckets{ApprovedReadyToMerge: makePRs(7)}, "morning", digest.ScopeUser, "")
	if !strings.Contains(subject, "morning") {
		t.Fatalf("subject = %q", subject)
	}
	if !strings.Contains(body, "...and 2 more") {
		t.Fatalf("email body missing truncation: %q", body)
	}
}

func blocksText(blocks []Block) string {
	var sb strings.Builder
	for _, block := range blocks {
		if block.Text != nil {
			sb.WriteString(block.Text.Text)
			sb.WriteString("\n")
		}
		for _, element := range block.Elements {
			sb.WriteString(element.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
