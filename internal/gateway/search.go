package gateway

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"

	"github.com/naka-gawa/cgmanifest-schema/internal/domain"
)

// SearchManifests returns every manifest file found by code search in org,
// sorted by repository name so that runs are deterministic.
func (g *GitHubGateway) SearchManifests(ctx context.Context, org string) ([]domain.ManifestMatch, error) {
	query := fmt.Sprintf("org:%s filename:%s", org, g.identity.ManifestFilename)
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 100}}
	seen := make(map[domain.ManifestMatch]bool)
	var matches []domain.ManifestMatch
	for {
		result, resp, err := g.restClient.Search.Code(ctx, query, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to search code with REST API: %w", err)
		}
		for _, code := range result.CodeResults {
			// filename: also matches longer names such as foo.cgmanifest.json.
			if path.Base(code.GetPath()) != g.identity.ManifestFilename {
				continue
			}
			repo := code.GetRepository()
			match := domain.ManifestMatch{
				Repository: domain.RepositoryRef{Owner: repo.GetOwner().GetLogin(), Name: repo.GetName()},
				Path:       code.GetPath(),
			}
			if seen[match] {
				continue
			}
			seen[match] = true
			matches = append(matches, match)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug("fetching next page of code search results", zap.Int("page", opts.Page))
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Repository.Name != b.Repository.Name {
			return a.Repository.Name < b.Repository.Name
		}
		if a.Repository.Owner != b.Repository.Owner {
			return a.Repository.Owner < b.Repository.Owner
		}
		return a.Path < b.Path
	})
	return matches, nil
}
