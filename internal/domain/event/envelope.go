package event

import (
	"encoding/json"
	"errors"
	"strings"
)

// Actor identifies the account responsible for an event.
type Actor struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Type  string `json:"type"`
}

// Repository identifies the repository an event happened in.
type Repository struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
}

// PullRequestInfo is the subset of pull request fields the pipeline reads.
type PullRequestInfo struct {
	Number             int      `json:"number"`
	Title              string   `json:"title"`
	HTMLURL            string   `json:"html_url"`
	Draft              bool     `json:"draft"`
	Merged             bool     `json:"merged"`
	Author             Actor    `json:"user"`
	RequestedReviewers []string `json:"-"`
	Assignees          []string `json:"-"`
}

// IssueInfo is the subset of issue fields the pipeline reads.
type IssueInfo struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
	Author  Actor  `json:"user"`
}

// ReviewInfo carries a submitted review's verdict.
type ReviewInfo struct {
	State   string `json:"state"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
	Author  Actor  `json:"user"`
}

// CommentInfo carries an issue or review comment.
type CommentInfo struct {
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
	Author  Actor  `json:"user"`
}

// MembershipInfo carries a team membership change.
type MembershipInfo struct {
	MemberLogin string
	TeamName    string
	TeamSlug    string
}

// Envelope is the typed form of one webhook delivery. It is constructed
// once at ingestion and passed as a value through filter, decision and
// render code; nothing downstream re-parses the raw payload.
type Envelope struct {
	Kind       Kind
	Type       string
	Action     string
	DeliveryID string
	Repo       Repository
	Sender     Actor

	PullRequest *PullRequestInfo
	Issue       *IssueInfo
	Review      *ReviewInfo
	Comment     *CommentInfo
	Membership  *MembershipInfo

	Raw json.RawMessage
}

var ErrEmptyPayload = errors.New("event payload is empty")

type rawUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Type  string `json:"type"`
}

type rawPayload struct {
	Action      string `json:"action"`
	Ref         string `json:"ref"`
	PullRequest *struct {
		Number             int       `json:"number"`
		Title              string    `json:"title"`
		HTMLURL            string    `json:"html_url"`
		Draft              bool      `json:"draft"`
		Merged             bool      `json:"merged"`
		User               rawUser   `json:"user"`
		RequestedReviewers []rawUser `json:"requested_reviewers"`
		Assignees          []rawUser `json:"assignees"`
	} `json:"pull_request"`
	Issue *struct {
		Number  int     `json:"number"`
		Title   string  `json:"title"`
		HTMLURL string  `json:"html_url"`
		User    rawUser `json:"user"`
	} `json:"issue"`
	Review *struct {
		State   string  `json:"state"`
		Body    string  `json:"body"`
		HTMLURL string  `json:"html_url"`
		User    rawUser `json:"user"`
	} `json:"review"`
	Comment *struct {
		Body    string  `json:"body"`
		HTMLURL string  `json:"html_url"`
		User    rawUser `json:"user"`
	} `json:"comment"`
	Member *rawUser `json:"member"`
	Team   *struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"team"`
	Repository *struct {
		ID       int64  `json:"id"`
		FullName string `json:"full_name"`
	} `json:"repository"`
	Sender *rawUser `json:"sender"`
}

// Parse builds a typed Envelope from one webhook delivery.
func Parse(eventType string, deliveryID string, payload []byte) (Envelope, error) {
	if len(payload) == 0 {
		return Envelope{}, ErrEmptyPayload
	}

	var raw rawPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Envelope{}, err
	}

	env := Envelope{
		Kind:       ParseKind(eventType),
		Type:       eventType,
		Action:     strings.TrimSpace(raw.Action),
		DeliveryID: deliveryID,
		Raw:        json.RawMessage(payload),
	}

	if raw.Repository != nil {
		env.Repo = Repository{ID: raw.Repository.ID, FullName: raw.Repository.FullName}
	}
	if raw.Sender != nil {
		env.Sender = actorFromRaw(*raw.Sender)
	}

	if raw.PullRequest != nil {
		pr := &PullRequestInfo{
			Number:  raw.PullRequest.Number,
			Title:   raw.PullRequest.Title,
			HTMLURL: raw.PullRequest.HTMLURL,
			Draft:   raw.PullRequest.Draft,
			Merged:  raw.PullRequest.Merged,
			Author:  actorFromRaw(raw.PullRequest.User),
		}
		for _, reviewer := range raw.PullRequest.RequestedReviewers {
			pr.RequestedReviewers = append(pr.RequestedReviewers, reviewer.Login)
		}
		for _, assignee := range raw.PullRequest.Assignees {
			pr.Assignees = append(pr.Assignees, assignee.Login)
		}
		env.PullRequest = pr
	}

	if raw.Issue != nil {
		env.Issue = &IssueInfo{
			Number:  raw.Issue.Number,
			Title:   raw.Issue.Title,
			HTMLURL: raw.Issue.HTMLURL,
			Author:  actorFromRaw(raw.Issue.User),
		}
	}

	if raw.Review != nil {
		env.Review = &ReviewInfo{
			State:   raw.Review.State,
			Body:    raw.Review.Body,
			HTMLURL: raw.Review.HTMLURL,
			Author:  actorFromRaw(raw.Review.User),
		}
	}

	if raw.Comment != nil {
		env.Comment = &CommentInfo{
			Body:    raw.Comment.Body,
			HTMLURL: raw.Comment.HTMLURL,
			Author:  actorFromRaw(raw.Comment.User),
		}
	}

	if raw.Member != nil {
		info := &MembershipInfo{MemberLogin: raw.Member.Login}
		if raw.Team != nil {
			info.TeamName = raw.Team.Name
			info.TeamSlug = raw.Team.Slug
		}
		env.Membership = info
	}

	return env, nil
}

func actorFromRaw(u rawUser) Actor {
	return Actor{ID: u.ID, Login: u.Login, Type: u.Type}
}

// Subject returns the login of the account that authored the thing the
// event is about (PR author, issue author, reviewer, commenter), falling
// back to the sender.
func (e Envelope) Subject() string {
	switch {
	case e.Review != nil:
		return e.Review.Author.Login
	case e.Comment != nil:
		return e.Comment.Author.Login
	case e.PullRequest != nil:
		return e.PullRequest.Author.Login
	case e.Issue != nil:
		return e.Issue.Author.Login
	default:
		return e.Sender.Login
	}
}

// Title returns a human-readable subject line for the event.
func (e Envelope) Title() string {
	switch {
	case e.PullRequest != nil:
		return e.PullRequest.Title
	case e.Issue != nil:
		return e.Issue.Title
	default:
		return e.Repo.FullName
	}
}
