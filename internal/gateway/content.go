package gateway

import (
	"context"
	"fmt"

	"github.com/google/go-github/v62/github"

	"github.com/naka-gawa/cgmanifest-schema/internal/domain"
)

// ReadManifest fetches path from the default branch of owner/repo.
func (g *GitHubGateway) ReadManifest(ctx context.Context, owner, repo, path string) (*domain.ManifestFile, error) {
	file, dir, _, err := g.restClient.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from %s/%s: %w", path, owner, repo, err)
	}
	if file == nil || dir != nil || file.GetType() != "file" {
		return nil, fmt.Errorf("%w: %s in %s/%s", ErrNotAFile, path, owner, repo)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s from %s/%s: %w", path, owner, repo, err)
	}
	return &domain.ManifestFile{
		Path:    file.GetPath(),
		Content: []byte(content),
		SHA:     file.GetSHA(),
	}, nil
}

// WriteManifest commits content to path on the maintenance branch. sha must
// be the blob SHA returned by the last ReadManifest; GitHub rejects the
// update with ErrStaleContent when the file changed since.
func (g *GitHubGateway) WriteManifest(ctx context.Context, owner, repo string, content []byte, path, sha string) error {
	author := &github.CommitAuthor{
		Name:  github.String(g.identity.CommitAuthorName),
		Email: github.String(g.identity.CommitAuthorEmail),
	}
	opts := &github.RepositoryContentFileOptions{
		Message:   github.String(g.identity.CommitMessage),
		Content:   content,
		SHA:       github.String(sha),
		Branch:    github.String(g.identity.BranchName),
		Author:    author,
		Committer: author,
	}
	if _, _, err := g.restClient.Repositories.UpdateFile(ctx, owner, repo, path, opts); err != nil {
		if isConflict(err) {
			return fmt.Errorf("%w: %s in %s/%s", ErrStaleContent, path, owner, repo)
		}
		return fmt.Errorf("failed to update %s in %s/%s: %w", path, owner, repo, err)
	}
	return nil
}
