// Package digest categorizes a user's open pull requests and runs the
// scheduled digest delivery.
package digest

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"prpulse/internal/bootstrap/logging"
	"prpulse/internal/domain/digest"
	"prpulse/internal/errs"
	"prpulse/internal/ports"
	"prpulse/internal/usecase/auth"
)

// Categorizer buckets open pull requests for one digest subject. Open
// PRs come from the local mirror; approvals are checked live through
// the review-list API under the token-refresh wrapper.
type Categorizer struct {
	pullRequests ports.PullRequestRepository
	github       ports.GitHubClient
	refresher    *auth.TokenRefresher
}

func NewCategorizer(pullRequests ports.PullRequestRepository, github ports.GitHubClient, refresher *auth.TokenRefresher) *Categorizer {
	return &Categorizer{
		pullRequests: pullRequests,
		github:       github,
		refresher:    refresher,
	}
}

type CategorizeInput struct {
	UserID uint64
	Login  string
	Repos  []ports.TrackedRepo
	Scope  digest.Scope
	// TeamMembers is consulted only under team scope.
	TeamMembers []string
}

type CategorizeResult struct {
	Buckets digest.Buckets
	// Unmatched counts in-scope PRs that fit no bucket. They are logged,
	// never silently dropped.
	Unmatched   int
	FailedRepos int
}

// Categorize walks every repository and places each open, in-scope pull
// request into exactly one bucket. A failing repository is logged and
// skipped; the remaining repositories still run. An authorization
// failure refreshes the token once and retries that repository once.
func (c *Categorizer) Categorize(ctx context.Context, input CategorizeInput) (CategorizeResult, error) {
	if ctx == nil {
		return CategorizeResult{}, errors.New("context is required")
	}
	if input.Login == "" {
		return CategorizeResult{}, errors.New("subject login is required")
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "digest.categorizer"),
		slog.Uint64("user_id", input.UserID),
		slog.String("scope", string(input.Scope)),
	)

	var result CategorizeResult
	for _, repo := range input.Repos {
		// The refresh wrapper may run the closure twice, so each attempt
		// buckets into a fresh repoResult and merges only after success.
		var repoResult CategorizeResult
		err := c.refresher.WithTokenRefresh(ctx, input.UserID, func(ctx context.Context, token string) error {
			repoResult = CategorizeResult{}
			return c.categorizeRepo(ctx, token, repo, input, &repoResult)
		})
		if err != nil {
			result.FailedRepos++
			logging.Error(logCtx, "repository skipped",
				slog.String("repo", repo.FullName),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		result.Buckets.Merge(repoResult.Buckets)
		result.Unmatched += repoResult.Unmatched
	}
	return result, nil
}

func (c *Categorizer) categorizeRepo(ctx context.Context, token string, repo ports.TrackedRepo, input CategorizeInput, result *CategorizeResult) error {
	prs, err := c.pullRequests.ListOpenPullRequests(ctx, repo.RepositoryID)
	if err != nil {
		return errs.Wrap(err, "list open pull requests")
	}

	owner, name, err := splitFullName(repo.FullName)
	if err != nil {
		return err
	}

	for _, pr := range prs {
		if !c.inScope(pr, input) {
			continue
		}

		summary := digest.PRSummary{
			RepositoryID: pr.RepositoryID,
			RepoFullName: repo.FullName,
			Number:       pr.Number,
			Title:        pr.Title,
			HTMLURL:      pr.HTMLURL,
			Author:       pr.AuthorLogin,
			Draft:        pr.Draft,
		}

		switch {
		case c.authoredBySubject(pr, input):
			approved, err := c.approvedByOthers(ctx, token, owner, name, pr)
			if err != nil {
				return err
			}
			switch {
			case approved && !pr.Draft && mergeable(pr):
				result.Buckets.ApprovedReadyToMerge = append(result.Buckets.ApprovedReadyToMerge, summary)
			case pr.Draft:
				result.Buckets.UserDraftPRs = append(result.Buckets.UserDraftPRs, summary)
			default:
				result.Buckets.UserOpenPRs = append(result.Buckets.UserOpenPRs, summary)
			}
		case containsLogin(pr.RequestedReviewers, input.Login):
			result.Buckets.WaitingOnUser = append(result.Buckets.WaitingOnUser, summary)
		case input.Scope == digest.ScopeTeam:
			// Authored by another team member and not awaiting the
			// subject's review: classified by draft flag.
			if pr.Draft {
				result.Buckets.UserDraftPRs = append(result.Buckets.UserDraftPRs, summary)
			} else {
				result.Buckets.UserOpenPRs = append(result.Buckets.UserOpenPRs, summary)
			}
		default:
			result.Unmatched++
			logging.Warn(ctx, "pull request matched no bucket",
				slog.String("repo", repo.FullName),
				slog.Int("number", pr.Number),
				slog.String("author", pr.AuthorLogin),
			)
		}
	}
	return nil
}

func (c *Categorizer) inScope(pr ports.PullRequestMirror, input CategorizeInput) bool {
	if input.Scope == digest.ScopeTeam {
		if containsAnyLogin([]string{pr.AuthorLogin}, input.TeamMembers) {
			return true
		}
		if containsAnyLogin(pr.RequestedReviewers, input.TeamMembers) {
			return true
		}
		return containsAnyLogin(pr.Assignees, input.TeamMembers)
	}
	return pr.AuthorLogin == input.Login ||
		containsLogin(pr.RequestedReviewers, input.Login) ||
		containsLogin(pr.Assignees, input.Login)
}

func (c *Categorizer) authoredBySubject(pr ports.PullRequestMirror, input CategorizeInput) bool {
	if input.Scope == digest.ScopeTeam {
		return containsLogin(input.TeamMembers, pr.AuthorLogin)
	}
	return pr.AuthorLogin == input.Login
}

// approvedByOthers reports whether any user other than the PR author
// submitted an approving review.
func (c *Categorizer) approvedByOthers(ctx context.Context, token string, owner string, repo string, pr ports.PullRequestMirror) (bool, error) {
	reviews, err := c.github.ListPullRequestReviews(ctx, token, owner, repo, pr.Number)
	if err != nil {
		return false, errs.Wrap(err, "list pull request reviews")
	}
	for _, review := range reviews {
		if review.AuthorLogin == pr.AuthorLogin {
			continue
		}
		if strings.EqualFold(review.State, "approved") {
			return true, nil
		}
	}
	return false, nil
}

// mergeable treats unknown mergeability as mergeable; only an explicit
// false blocks the approved bucket.
func mergeable(pr ports.PullRequestMirror) bool {
	return pr.Mergeable == nil || *pr.Mergeable
}

func splitFullName(fullName string) (string, string, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return "", "", errors.New("repository full name must be owner/name")
	}
	return owner, name, nil
}

func containsLogin(logins []string, login string) bool {
	for _, candidate := range logins {
		if candidate == login {
			return true
		}
	}
	return false
}

func containsAnyLogin(logins []string, candidates []string) bool {
	for _, login := range logins {
		if containsLogin(candidates, login) {
			return true
		}
	}
	return false
}
