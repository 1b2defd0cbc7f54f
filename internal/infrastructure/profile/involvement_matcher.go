// Package profile provides the default delivery-profile matcher. The
// keyword/LLM analysis collaborator can replace it behind the same port;
// this implementation notifies when the user is personally involved in
// the event.
package profile

import (
	"context"
	"errors"
	"strings"

	"prpulse/internal/domain/event"
	"prpulse/internal/ports"
)

type InvolvementMatcher struct{}

func NewInvolvementMatcher() *InvolvementMatcher {
	return &InvolvementMatcher{}
}

func (m *InvolvementMatcher) Match(ctx context.Context, user ports.UserRecord, env event.Envelope) (ports.ProfileMatch, error) {
	if ctx == nil {
		return ports.ProfileMatch{}, errors.New("context is required")
	}

	login := user.GitHubLogin
	if login == "" || env.Sender.Login == login {
		// Never notify the actor about their own action.
		return ports.ProfileMatch{}, nil
	}

	var keywords []string

	if pr := env.PullRequest; pr != nil {
		if containsLogin(pr.RequestedReviewers, login) {
			keywords = append(keywords, "requested_reviewer")
		}
		if containsLogin(pr.Assignees, login) {
			keywords = append(keywords, "assignee")
		}
		if pr.Author.Login == login && (env.Review != nil || env.Comment != nil) {
			keywords = append(keywords, "author")
		}
	}
	if env.Issue != nil && env.Issue.Author.Login == login && env.Comment != nil {
		keywords = append(keywords, "author")
	}
	if env.Comment != nil && strings.Contains(env.Comment.Body, "@"+login) {
		keywords = append(keywords, "mention")
	}
	if env.Review != nil && env.Comment == nil && env.PullRequest != nil && env.PullRequest.Author.Login == login {
		// Already covered by "author", kept explicit for review events
		// without a comment payload.
		keywords = appendUnique(keywords, "author")
	}

	if len(keywords) == 0 {
		return ports.ProfileMatch{}, nil
	}

	return ports.ProfileMatch{
		ShouldNotify: true,
		Keywords:     keywords,
	}, nil
}

func containsLogin(logins []string, login string) bool {
	for _, candidate := range logins {
		if candidate == login {
			return true
		}
	}
	return false
}

func appendUnique(values []string, value string) []string {
	for _, candidate := range values {
		if candidate == value {
			return values
		}
	}
	return append(values, value)
}
