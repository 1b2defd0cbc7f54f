package notify

import (
	"context"
	"errors"
	"strings"

	"prpulse/internal/domain/event"
	"prpulse/internal/errs"
	"prpulse/internal/ports"
)

// Reason codes recorded on Notification rows.
const (
	ReasonProfileMatch     = "profile_match"
	ReasonProfileNoMatch   = "profile_no_match"
	ReasonLegacyPreference = "legacy_preference"
	ReasonPreferenceOff    = "preference_disabled"
	ReasonOwnAction        = "own_action"
	ReasonUnsupportedKind  = "unsupported_kind"
)

// categoryForKind maps event kinds onto the profile-matching decision
// path. Kinds absent from this map fall back to the legacy per-type
// preference flags.
var categoryForKind = map[event.Kind]string{
	event.KindPullRequest:              "pull_request",
	event.KindPullRequestReview:        "review",
	event.KindPullRequestReviewComment: "comment",
}

var legacyPreference = map[event.Kind]func(ports.UserRecord) bool{
	event.KindPullRequest:              func(u ports.UserRecord) bool { return u.NotifyPullRequests },
	event.KindPullRequestReview:        func(u ports.UserRecord) bool { return u.NotifyReviews },
	event.KindPullRequestReviewComment: func(u ports.UserRecord) bool { return u.NotifyComments },
	event.KindIssues:                   func(u ports.UserRecord) bool { return u.NotifyIssues },
	event.KindIssueComment:             func(u ports.UserRecord) bool { return u.NotifyComments },
}

// Decide evaluates one user against one event. Kinds with a mapped
// category delegate to the profile matcher; everything else consults
// the legacy preference flags plus own-action suppression.
func (s *Service) Decide(ctx context.Context, user ports.UserRecord, env event.Envelope) (Decision, error) {
	if ctx == nil {
		return Decision{}, errors.New("context is required")
	}

	if _, mapped := categoryForKind[env.Kind]; !mapped {
		return decideLegacy(user, env), nil
	}

	if s.matcher == nil {
		return Decision{}, errors.New("profile matcher is required")
	}

	match, err := s.matcher.Match(ctx, user, env)
	if err != nil {
		return Decision{}, errs.Wrap(err, "match delivery profile")
	}
	if !match.ShouldNotify {
		return Decision{Reason: ReasonProfileNoMatch}, nil
	}

	return Decision{
		ShouldNotify: true,
		Reason:       ReasonProfileMatch,
		Context:      strings.Join(match.Keywords, ","),
		ChannelID:    match.ChannelID,
	}, nil
}

func decideLegacy(user ports.UserRecord, env event.Envelope) Decision {
	pref, ok := legacyPreference[env.Kind]
	if !ok {
		return Decision{Reason: ReasonUnsupportedKind}
	}
	if env.Sender.Login != "" && env.Sender.Login == user.GitHubLogin {
		return Decision{Reason: ReasonOwnAction}
	}
	if !pref(user) {
		return Decision{Reason: ReasonPreferenceOff}
	}
	return Decision{ShouldNotify: true, Reason: ReasonLegacyPreference}
}
