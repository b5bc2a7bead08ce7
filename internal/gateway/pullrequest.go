package gateway

import (
	"context"
	"fmt"

	"github.com/google/go-github/v62/github"

	"github.com/naka-gawa/cgmanifest-schema/internal/domain"
)

func (g *GitHubGateway) head() string {
	return g.currentUser + ":" + g.identity.BranchName
}

// FindPullRequest looks in owner/repo for a pull request in any state that
// was opened by the current user from the maintenance branch with the
// canonical title.
func (g *GitHubGateway) FindPullRequest(ctx context.Context, owner, repo string) (domain.Lookup[*domain.PullRequest], error) {
	opts := &github.PullRequestListOptions{
		State:       "all",
		Head:        g.head(),
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		prs, resp, err := g.restClient.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			if isNotFound(err) {
				return domain.NotFound[*domain.PullRequest](), nil
			}
			return domain.NotFound[*domain.PullRequest](), fmt.Errorf("failed to list pull requests of %s/%s: %w", owner, repo, err)
		}
		for _, pr := range prs {
			if pr.GetTitle() == g.identity.PullRequestTitle && g.isCurrentUser(pr.GetUser().GetLogin()) {
				return domain.Found(toPullRequest(owner, repo, pr)), nil
			}
		}
		if resp.NextPage == 0 {
			return domain.NotFound[*domain.PullRequest](), nil
		}
		opts.Page = resp.NextPage
	}
}

// PullRequestExists reports whether FindPullRequest finds a pull request.
func (g *GitHubGateway) PullRequestExists(ctx context.Context, owner, repo string) (bool, error) {
	lookup, err := g.FindPullRequest(ctx, owner, repo)
	if err != nil {
		return false, err
	}
	return lookup.IsFound(), nil
}

// CreatePullRequest opens a pull request on owner/repo from the current
// user's maintenance branch into base.
func (g *GitHubGateway) CreatePullRequest(ctx context.Context, owner, repo, base string) (*domain.PullRequest, error) {
	pr, _, err := g.restClient.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title:               github.String(g.identity.PullRequestTitle),
		Head:                github.String(g.head()),
		Base:                github.String(base),
		Body:                github.String(g.identity.PullRequestBody),
		MaintainerCanModify: github.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request on %s/%s: %w", owner, repo, err)
	}
	return toPullRequest(owner, repo, pr), nil
}

func toPullRequest(owner, repo string, pr *github.PullRequest) *domain.PullRequest {
	return &domain.PullRequest{
		Owner:   owner,
		Repo:    repo,
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		Author:  pr.GetUser().GetLogin(),
		State:   pr.GetState(),
		Merged:  pr.GetMerged(),
		HTMLURL: pr.GetHTMLURL(),
		NodeID:  pr.GetNodeID(),
	}
}
