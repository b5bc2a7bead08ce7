package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"

	"github.com/naka-gawa/cgmanifest-schema/internal/domain"
)

// GetRepository returns the full record of owner/repo.
func (g *GitHubGateway) GetRepository(ctx context.Context, owner, repo string) (*domain.Repository, error) {
	r, _, err := g.restClient.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", owner, repo, err)
	}
	return toRepository(r), nil
}

// IsArchivedOrPrivate reports whether owner/repo is archived or private.
func (g *GitHubGateway) IsArchivedOrPrivate(ctx context.Context, owner, repo string) (bool, error) {
	r, err := g.GetRepository(ctx, owner, repo)
	if err != nil {
		return false, err
	}
	return r.Archived || r.Private, nil
}

// FindFork looks through every fork of owner/repo for one owned by the current user.
func (g *GitHubGateway) FindFork(ctx context.Context, owner, repo string) (domain.Lookup[*domain.Repository], error) {
	opts := &github.RepositoryListForksOptions{ListOptions: github.ListOptions{PerPage: 100}}
	for {
		forks, resp, err := g.restClient.Repositories.ListForks(ctx, owner, repo, opts)
		if err != nil {
			if isNotFound(err) {
				return domain.NotFound[*domain.Repository](), nil
			}
			return domain.NotFound[*domain.Repository](), fmt.Errorf("failed to list forks of %s/%s: %w", owner, repo, err)
		}
		for _, fork := range forks {
			if g.isCurrentUser(fork.GetOwner().GetLogin()) {
				return domain.Found(toRepository(fork)), nil
			}
		}
		if resp.NextPage == 0 {
			return domain.NotFound[*domain.Repository](), nil
		}
		opts.Page = resp.NextPage
		g.logger.Debug("fetching next page of forks", zap.String("repository", owner+"/"+repo), zap.Int("page", opts.Page))
	}
}

// ForkExists reports whether the current user already forked owner/repo.
func (g *GitHubGateway) ForkExists(ctx context.Context, owner, repo string) (bool, error) {
	lookup, err := g.FindFork(ctx, owner, repo)
	if err != nil {
		return false, err
	}
	return lookup.IsFound(), nil
}

// CreateFork forks owner/repo into the current user's account. GitHub creates
// forks asynchronously, so the fork is read back before it is returned.
func (g *GitHubGateway) CreateFork(ctx context.Context, owner, repo string) (*domain.Repository, error) {
	fork, _, err := g.restClient.Repositories.CreateFork(ctx, owner, repo, &github.RepositoryCreateForkOptions{})
	if err != nil {
		var accepted *github.AcceptedError
		if !errors.As(err, &accepted) {
			return nil, fmt.Errorf("failed to fork %s/%s: %w", owner, repo, err)
		}
	}
	forkOwner, forkName := g.currentUser, repo
	if fork.GetName() != "" {
		forkOwner, forkName = fork.GetOwner().GetLogin(), fork.GetName()
	}
	return g.GetRepository(ctx, forkOwner, forkName)
}

func toRepository(r *github.Repository) *domain.Repository {
	repository := &domain.Repository{
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		DefaultBranch: r.GetDefaultBranch(),
		Archived:      r.GetArchived(),
		Private:       r.GetPrivate(),
		Fork:          r.GetFork(),
		HTMLURL:       r.GetHTMLURL(),
	}
	if parent := r.GetParent(); parent != nil {
		repository.Parent = &domain.RepositoryRef{Owner: parent.GetOwner().GetLogin(), Name: parent.GetName()}
	}
	return repository
}
