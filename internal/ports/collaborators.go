package ports

import (
	"context"
	"errors"

	"prpulse/internal/blockkit"
	"prpulse/internal/domain/event"
)

// ErrUnauthorized signals an HTTP 401-equivalent from the upstream API.
// It is the only error the token-refresh wrapper reacts to.
var ErrUnauthorized = errors.New("upstream api: unauthorized")

type PullRequestReview struct {
	AuthorLogin string
	State       string
}

// GitHubClient is the subset of the GitHub REST surface this core calls.
type GitHubClient interface {
	ListPullRequestReviews(ctx context.Context, token string, owner string, repo string, number int) ([]PullRequestReview, error)
	ListTeamMembers(ctx context.Context, token string, org string, teamSlug string) ([]string, error)
}

// TokenService is the identity collaborator. Both calls return an empty
// token (with nil error) when the user has no usable credential.
type TokenService interface {
	GetValidToken(ctx context.Context, userID uint64) (string, error)
	RefreshToken(ctx context.Context, userID uint64) (string, error)
}

// ChatClient posts rendered messages to the chat platform.
// PostMessage returns an empty message id when the platform reports a
// non-transport failure; transport errors come back as errors.
type ChatClient interface {
	OpenDM(ctx context.Context, token string, userID string) (string, error)
	PostMessage(ctx context.Context, token string, channelID string, msg blockkit.Message) (string, error)
}

// Mailer delivers digest emails.
type Mailer interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

type ProfileMatch struct {
	ShouldNotify bool
	Keywords     []string
	// ChannelID routes the notification to a channel; empty means DM.
	ChannelID string
}

// ProfileMatcher is the keyword/LLM content-analysis collaborator,
// consumed as a black-box decision input.
type ProfileMatcher interface {
	Match(ctx context.Context, user UserRecord, env event.Envelope) (ProfileMatch, error)
}

// SyncTrigger receives membership and installation side effects. The
// actual membership sync lives outside this core.
type SyncTrigger interface {
	MemberAdded(ctx context.Context, teamSlug string, login string) error
	MemberRemoved(ctx context.Context, teamSlug string, login string) error
	InstallationChanged(ctx context.Context, action string) error
}
