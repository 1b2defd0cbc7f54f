package blockkit

import (
	"fmt"

	"prpulse/internal/domain/event"
)

// RenderEvent formats one webhook event as a notification message.
func RenderEvent(env event.Envelope) Message {
	headline := eventHeadline(env)

	blocks := []Block{Header(headline)}
	color := ColorForAction(env.Action)

	var body string
	switch {
	case env.Review != nil && env.PullRequest != nil:
		icon := IconForReviewState(env.Review.State)
		color = ColorForReviewState(env.Review.State)
		body = fmt.Sprintf("%s *%s* %s review on <%s|#%d %s>",
			icon, env.Review.Author.Login, env.Review.State,
			env.PullRequest.HTMLURL, env.PullRequest.Number, env.PullRequest.Title)
		if env.Review.Body != "" {
			body += "\n> " + ToMrkdwn(env.Review.Body)
		}
	case env.Comment != nil:
		subject := commentSubject(env)
		body = fmt.Sprintf("💬 *%s* commented on %s\n> %s",
			env.Comment.Author.Login, subject, ToMrkdwn(env.Comment.Body))
	case env.PullRequest != nil:
		body = fmt.Sprintf("%s <%s|#%d %s> by *%s*",
			IconForAction(env.Action), env.PullRequest.HTMLURL,
			env.PullRequest.Number, env.PullRequest.Title, env.PullRequest.Author.Login)
	case env.Issue != nil:
		body = fmt.Sprintf("%s <%s|#%d %s> by *%s*",
			IconForAction(env.Action), env.Issue.HTMLURL,
			env.Issue.Number, env.Issue.Title, env.Issue.Author.Login)
	default:
		body = fmt.Sprintf("%s %s %s in *%s*", IconForAction(env.Action), env.Type, env.Action, env.Repo.FullName)
	}

	attachment := Attachment{
		Color: color,
		Blocks: []Block{
			Section(body),
			Context(fmt.Sprintf("%s · %s by %s", env.Repo.FullName, env.Action, env.Sender.Login)),
		},
	}

	return Message{
		Text:        headline,
		Blocks:      blocks,
		Attachments: []Attachment{attachment},
	}
}

func eventHeadline(env event.Envelope) string {
	switch env.Kind {
	case event.KindPullRequest:
		return fmt.Sprintf("Pull request %s: %s", env.Action, env.Title())
	case event.KindPullRequestReview:
		return fmt.Sprintf("Review %s: %s", reviewStateLabel(env), env.Title())
	case event.KindPullRequestReviewComment, event.KindIssueComment:
		return fmt.Sprintf("New comment: %s", env.Title())
	case event.KindIssues:
		return fmt.Sprintf("Issue %s: %s", env.Action, env.Title())
	default:
		return fmt.Sprintf("%s %s in %s", env.Type, env.Action, env.Repo.FullName)
	}
}

func reviewStateLabel(env event.Envelope) string {
	if env.Review != nil && env.Review.State != "" {
		return env.Review.State
	}
	return env.Action
}

func commentSubject(env event.Envelope) string {
	switch {
	case env.PullRequest != nil:
		return fmt.Sprintf("<%s|#%d %s>", env.PullRequest.HTMLURL, env.PullRequest.Number, env.PullRequest.Title)
	case env.Issue != nil:
		return fmt.Sprintf("<%s|#%d %s>", env.Issue.HTMLURL, env.Issue.Number, env.Issue.Title)
	default:
		return env.Repo.FullName
	}
}
