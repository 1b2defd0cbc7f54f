package event

// Kind is the closed set of webhook event kinds this service understands.
// Every decision point switches over Kind exhaustively; anything that does
// not parse lands on KindUnknown and takes the unsupported path.
type Kind int

const (
	KindUnknown Kind = iota
	KindPullRequest
	KindPullRequestReview
	KindPullRequestReviewComment
	KindIssues
	KindIssueComment
	KindPush
	KindCreate
	KindDelete
	KindRelease
	KindStar
	KindFork
	KindMembership
	KindInstallation
)

var kindNames = map[Kind]string{
	KindPullRequest:              "pull_request",
	KindPullRequestReview:        "pull_request_review",
	KindPullRequestReviewComment: "pull_request_review_comment",
	KindIssues:                   "issues",
	KindIssueComment:             "issue_comment",
	KindPush:                     "push",
	KindCreate:                   "create",
	KindDelete:                   "delete",
	KindRelease:                  "release",
	KindStar:                     "star",
	KindFork:                     "fork",
	KindMembership:               "membership",
	KindInstallation:             "installation",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for kind, name := range kindNames {
		m[name] = kind
	}
	return m
}()

// ParseKind maps the X-GitHub-Event header value to a Kind.
// Unrecognized labels map to KindUnknown.
func ParseKind(eventType string) Kind {
	if kind, ok := kindsByName[eventType]; ok {
		return kind
	}
	return KindUnknown
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsAudit reports whether the kind is stored for audit only and never
// produces per-user notifications.
func (k Kind) IsAudit() bool {
	switch k {
	case KindPush, KindCreate, KindDelete, KindRelease, KindStar, KindFork:
		return true
	default:
		return false
	}
}

// IsSideEffect reports whether the kind is routed to a dedicated handler
// (membership changes, app installation) instead of being stored as an Event.
func (k Kind) IsSideEffect() bool {
	return k == KindMembership || k == KindInstallation
}
