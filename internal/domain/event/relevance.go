package event

const senderTypeBot = "Bot"

// Decision is the outcome of the relevance filter.
type Decision struct {
	Relevant bool
	Reason   string
}

func irrelevant(reason string) Decision {
	return Decision{Relevant: false, Reason: reason}
}

func relevant() Decision {
	return Decision{Relevant: true, Reason: "relevant"}
}

var pullRequestActions = map[string]struct{}{
	"opened":           {},
	"closed":           {},
	"reopened":         {},
	"ready_for_review": {},
	"review_requested": {},
	"assigned":         {},
	"unassigned":       {},
}

var issueActions = map[string]struct{}{
	"opened":     {},
	"closed":     {},
	"reopened":   {},
	"assigned":   {},
	"unassigned": {},
}

// Relevant decides whether an event is worth persisting and processing.
//
// Bot senders are rejected across the board, except membership and
// installation events: those changes are routinely performed by service
// accounts and must still flow through.
func Relevant(kind Kind, action string, senderType string) Decision {
	switch kind {
	case KindMembership, KindInstallation:
		return relevant()
	case KindUnknown:
		return irrelevant("unsupported event type")
	}

	if senderType == senderTypeBot {
		return irrelevant("bot sender")
	}

	switch kind {
	case KindPullRequest:
		if _, ok := pullRequestActions[action]; !ok {
			return irrelevant("pull request action not tracked")
		}
		return relevant()
	case KindIssues:
		if _, ok := issueActions[action]; !ok {
			return irrelevant("issue action not tracked")
		}
		return relevant()
	case KindPullRequestReview:
		if action != "submitted" {
			return irrelevant("review action not tracked")
		}
		return relevant()
	case KindIssueComment, KindPullRequestReviewComment:
		// Comment edits and deletions are dropped.
		if action != "created" {
			return irrelevant("comment action not tracked")
		}
		return relevant()
	case KindPush, KindCreate, KindDelete, KindRelease, KindStar, KindFork:
		return relevant()
	default:
		return irrelevant("unsupported event type")
	}
}
