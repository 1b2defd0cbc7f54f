// Package github adapts the GitHub REST API to the ports this core
// consumes. Authorization failures are normalized to
// ports.ErrUnauthorized so the token-refresh wrapper can react to them.
package github

import (
	"context"
	"errors"
	"net/http"

	gogithub "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"prpulse/internal/bootstrap/config"
	"prpulse/internal/errs"
	"prpulse/internal/ports"
)

type Client struct {
	baseURL string
}

func NewClient(cfg config.Config) *Client {
	return &Client{baseURL: cfg.GitHub.APIBaseURL}
}

func (c *Client) api(ctx context.Context, token string) (*gogithub.Client, error) {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := gogithub.NewClient(oauth2.NewClient(ctx, source))

	if c.baseURL == "" {
		return client, nil
	}
	client, err := client.WithEnterpriseURLs(c.baseURL, c.baseURL)
	if err != nil {
		return nil, errs.Wrap(err, "configure github base url")
	}
	return client, nil
}

func (c *Client) ListPullRequestReviews(ctx context.Context, token string, owner string, repo string, number int) ([]ports.PullRequestReview, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	api, err := c.api(ctx, token)
	if err != nil {
		return nil, err
	}

	opts := &gogithub.ListOptions{PerPage: 100}
	var out []ports.PullRequestReview
	for {
		reviews, resp, err := api.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, normalizeError(resp, errs.Wrapf(err, "list reviews for %s/%s#%d", owner, repo, number))
		}
		for _, review := range reviews {
			out = append(out, ports.PullRequestReview{
				AuthorLogin: review.GetUser().GetLogin(),
				State:       review.GetState(),
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (c *Client) ListTeamMembers(ctx context.Context, token string, org string, teamSlug string) ([]string, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	api, err := c.api(ctx, token)
	if err != nil {
		return nil, err
	}

	opts := &gogithub.TeamListTeamMembersOptions{ListOptions: gogithub.ListOptions{PerPage: 100}}
	var out []string
	for {
		members, resp, err := api.Teams.ListTeamMembersBySlug(ctx, org, teamSlug, opts)
		if err != nil {
			return nil, normalizeError(resp, errs.Wrapf(err, "list members of %s/%s", org, teamSlug))
		}
		for _, member := range members {
			out = append(out, member.GetLogin())
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func normalizeError(resp *gogithub.Response, err error) error {
	if resp != nil && resp.StatusCode == http.StatusUnauthorized {
		return ports.ErrUnauthorized
	}
	return err
}
