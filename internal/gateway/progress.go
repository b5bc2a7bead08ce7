package gateway

import (
	"context"
	"fmt"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"

	"github.com/naka-gawa/cgmanifest-schema/internal/domain"
)

// ID is a GraphQL node ID. githubv4 derives variable types from Go type
// names, so the type must be called ID to be sent as ID!.
type ID string

// pullRequestNodeQuery resolves a single pull request by node ID.
type pullRequestNodeQuery struct {
	Node struct {
		Typename    string `graphql:"__typename"`
		PullRequest struct {
			URL        string
			Number     int
			State      string
			Merged     bool
			CreatedAt  githubv4.DateTime
			MergedAt   *githubv4.DateTime
			Repository struct {
				Name  string
				Owner struct {
					Login string
				}
			}
		} `graphql:"... on PullRequest"`
	} `graphql:"node(id: $id)"`
}

// SearchPullRequests returns the node IDs of every pull request the current
// user opened with the canonical title in repositories owned by owner,
// most recently updated first.
func (g *GitHubGateway) SearchPullRequests(ctx context.Context, owner string) ([]string, error) {
	query := fmt.Sprintf(`is:pr author:%s user:%s in:title "%s"`, g.currentUser, owner, g.identity.PullRequestTitle)
	opts := &github.SearchOptions{
		Sort:        "updated",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var nodeIDs []string
	for {
		result, resp, err := g.restClient.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to search pull requests with REST API: %w", err)
		}
		for _, issue := range result.Issues {
			if !issue.IsPullRequest() {
				continue
			}
			nodeIDs = append(nodeIDs, issue.GetNodeID())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug("fetching next page of pull requests", zap.Int("page", opts.Page))
	}
	return nodeIDs, nil
}

// PullRequestStatus resolves the current state of a pull request by node ID.
func (g *GitHubGateway) PullRequestStatus(ctx context.Context, nodeID string) (*domain.PullRequestStatus, error) {
	var q pullRequestNodeQuery
	variables := map[string]interface{}{"id": ID(nodeID)}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for node %s: %w", nodeID, err)
	}
	if q.Node.Typename != "PullRequest" {
		return nil, fmt.Errorf("node %s is a %q, not a pull request", nodeID, q.Node.Typename)
	}

	pr := q.Node.PullRequest
	status := &domain.PullRequestStatus{
		URL:        pr.URL,
		Repository: domain.RepositoryRef{Owner: pr.Repository.Owner.Login, Name: pr.Repository.Name},
		Number:     pr.Number,
		State:      domain.ClassifyPullRequest(pr.State, pr.Merged),
		CreatedAt:  pr.CreatedAt.Time,
	}
	if pr.MergedAt != nil {
		mergedAt := pr.MergedAt.Time
		status.MergedAt = &mergedAt
	}
	return status, nil
}
