package gateway

import (
	"context"
	"fmt"

	"github.com/google/go-github/v62/github"

	"github.com/naka-gawa/cgmanifest-schema/internal/domain"
)

// GetBranch returns the commit SHA the branch name points at.
func (g *GitHubGateway) GetBranch(ctx context.Context, owner, repo, name string) (string, error) {
	ref, _, err := g.restClient.Git.GetRef(ctx, owner, repo, "heads/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to get branch %s of %s/%s: %w", name, owner, repo, err)
	}
	return ref.GetObject().GetSHA(), nil
}

// FindBranch resolves the maintenance branch.
func (g *GitHubGateway) FindBranch(ctx context.Context, owner, repo string) (domain.Lookup[string], error) {
	sha, err := g.GetBranch(ctx, owner, repo, g.identity.BranchName)
	if err != nil {
		if isNotFound(err) {
			return domain.NotFound[string](), nil
		}
		return domain.NotFound[string](), err
	}
	return domain.Found(sha), nil
}

// BranchExists reports whether the maintenance branch exists.
func (g *GitHubGateway) BranchExists(ctx context.Context, owner, repo string) (bool, error) {
	lookup, err := g.FindBranch(ctx, owner, repo)
	if err != nil {
		return false, err
	}
	return lookup.IsFound(), nil
}

// DeleteBranch deletes the maintenance branch.
func (g *GitHubGateway) DeleteBranch(ctx context.Context, owner, repo string) error {
	if _, err := g.restClient.Git.DeleteRef(ctx, owner, repo, "heads/"+g.identity.BranchName); err != nil {
		return fmt.Errorf("failed to delete branch %s of %s/%s: %w", g.identity.BranchName, owner, repo, err)
	}
	return nil
}

// CreateBranch creates the maintenance branch at sha.
func (g *GitHubGateway) CreateBranch(ctx context.Context, owner, repo, sha string) error {
	ref := &github.Reference{
		Ref:    github.String("refs/heads/" + g.identity.BranchName),
		Object: &github.GitObject{SHA: github.String(sha)},
	}
	if _, _, err := g.restClient.Git.CreateRef(ctx, owner, repo, ref); err != nil {
		return fmt.Errorf("failed to create branch %s of %s/%s: %w", g.identity.BranchName, owner, repo, err)
	}
	return nil
}
