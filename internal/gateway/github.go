// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/cgmanifest-schema/internal/domain"
)

var (
	// ErrNotAFile is returned when a manifest path resolves to something other than a file.
	ErrNotAFile = errors.New("manifest path is not a file")
	// ErrStaleContent is returned when a manifest changed after it was read.
	ErrStaleContent = errors.New("manifest changed since it was read")
)

// DefaultPullRequestBody is the bundled pull request description.
//
//go:embed pull_request_body.md
var DefaultPullRequestBody string

// Identity holds the fixed names the tool uses to create, and later
// recognize, its own branches, commits and pull requests.
type Identity struct {
	BranchName        string
	PullRequestTitle  string
	PullRequestBody   string
	CommitMessage     string
	CommitAuthorName  string
	CommitAuthorEmail string
	ManifestFilename  string
}

func (i Identity) validate() error {
	switch {
	case i.BranchName == "":
		return errors.New("branch name must not be empty")
	case i.PullRequestTitle == "":
		return errors.New("pull request title must not be empty")
	case i.ManifestFilename == "":
		return errors.New("manifest file name must not be empty")
	}
	return nil
}

// ManifestClient is the part of the gateway used by the patch workflow.
type ManifestClient interface {
	CurrentUser() string
	SearchManifests(ctx context.Context, org string) ([]domain.ManifestMatch, error)
	IsArchivedOrPrivate(ctx context.Context, owner, repo string) (bool, error)
	FindFork(ctx context.Context, owner, repo string) (domain.Lookup[*domain.Repository], error)
	CreateFork(ctx context.Context, owner, repo string) (*domain.Repository, error)
	GetRepository(ctx context.Context, owner, repo string) (*domain.Repository, error)
	ReadManifest(ctx context.Context, owner, repo, path string) (*domain.ManifestFile, error)
	PullRequestExists(ctx context.Context, owner, repo string) (bool, error)
	GetBranch(ctx context.Context, owner, repo, name string) (string, error)
	BranchExists(ctx context.Context, owner, repo string) (bool, error)
	DeleteBranch(ctx context.Context, owner, repo string) error
	CreateBranch(ctx context.Context, owner, repo, sha string) error
	WriteManifest(ctx context.Context, owner, repo string, content []byte, path, sha string) error
	CreatePullRequest(ctx context.Context, owner, repo, base string) (*domain.PullRequest, error)
}

// ProgressClient is the part of the gateway used by the tracker.
type ProgressClient interface {
	CurrentUser() string
	SearchPullRequests(ctx context.Context, owner string) ([]string, error)
	PullRequestStatus(ctx context.Context, nodeID string) (*domain.PullRequestStatus, error)
}

// GitHubGateway implements ManifestClient and ProgressClient.
// It is read-only after construction and safe for concurrent use.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	identity      Identity
	currentUser   string
	logger        *zap.Logger
}

// NewGitHubGateway authenticates with token and resolves the current user.
// It fails when the token is rejected.
func NewGitHubGateway(ctx context.Context, token string, identity Identity, logger *zap.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return newGitHubGateway(ctx, github.NewClient(httpClient), githubv4.NewClient(httpClient), identity, logger)
}

func newGitHubGateway(ctx context.Context, restClient *github.Client, graphqlClient *githubv4.Client, identity Identity, logger *zap.Logger) (*GitHubGateway, error) {
	if err := identity.validate(); err != nil {
		return nil, err
	}
	if identity.PullRequestBody == "" {
		identity.PullRequestBody = DefaultPullRequestBody
	}
	if identity.CommitMessage == "" {
		identity.CommitMessage = identity.PullRequestTitle
	}
	user, _, err := restClient.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve authenticated user: %w", err)
	}
	logger.Debug("authenticated", zap.String("user", user.GetLogin()))
	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		identity:      identity,
		currentUser:   user.GetLogin(),
		logger:        logger,
	}, nil
}

// CurrentUser returns the login of the authenticated user.
func (g *GitHubGateway) CurrentUser() string {
	return g.currentUser
}

func (g *GitHubGateway) isCurrentUser(login string) bool {
	return strings.EqualFold(login, g.currentUser)
}

func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}

func isConflict(err error) bool {
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusConflict
}
