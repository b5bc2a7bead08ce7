// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/cgmanifest-schema/internal/domain"
	"github.com/naka-gawa/cgmanifest-schema/internal/gateway"
	"github.com/naka-gawa/cgmanifest-schema/internal/manifest"
)

// OutcomeState is the terminal state of one repository in a patch run.
type OutcomeState string

const (
	OutcomeCreated  OutcomeState = "created"
	OutcomeSkipped  OutcomeState = "skipped"
	OutcomeUpToDate OutcomeState = "up-to-date"
	OutcomeFailed   OutcomeState = "failed"
)

// Outcome records what happened to one manifest.
type Outcome struct {
	Repository     domain.RepositoryRef
	Path           string
	State          OutcomeState
	Reason         string
	PullRequestURL string
	Err            error
}

// Report lists the outcome of every repository that was processed.
type Report struct {
	Outcomes []Outcome
}

// Count returns the number of outcomes in state.
func (r *Report) Count(state OutcomeState) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == state {
			n++
		}
	}
	return n
}

// Validator checks a manifest after it has been edited.
type Validator interface {
	Validate(content []byte) error
}

// PatcherOptions configures a Patcher.
type PatcherOptions struct {
	SchemaURL string
	// Concurrency is the number of repositories processed at once. 1 keeps
	// every remote call of one repository ahead of the next repository.
	Concurrency int
	// FailFast stops the run at the first repository that fails. Otherwise
	// the failure is recorded and the remaining repositories are processed.
	FailFast bool
}

// Patcher forks every repository with a manifest, adds $schema to the
// manifest and opens a pull request upstream.
type Patcher struct {
	client    gateway.ManifestClient
	validator Validator
	opts      PatcherOptions
	logger    *zap.Logger
}

// NewPatcher creates a new Patcher. validator may be nil.
func NewPatcher(client gateway.ManifestClient, validator Validator, opts PatcherOptions, logger *zap.Logger) *Patcher {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Patcher{
		client:    client,
		validator: validator,
		opts:      opts,
		logger:    logger,
	}
}

// Run processes every manifest found in org. With FailFast the first error
// is returned as soon as it happens; otherwise all failures are joined and
// returned after every repository was attempted. The report is returned in
// both cases.
func (p *Patcher) Run(ctx context.Context, org string) (*Report, error) {
	p.logger.Info("fetching repositories with manifests", zap.String("org", org))
	matches, err := p.client.SearchManifests(ctx, org)
	if err != nil {
		return nil, err
	}
	p.logger.Info("found repositories", zap.Int("count", len(matches)))

	outcomes := make([]Outcome, len(matches))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.opts.Concurrency)
	for i, match := range matches {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if egCtx.Err() != nil {
				return nil
			}
			outcomes[i] = p.patchRepository(egCtx, match)
			if outcomes[i].Err != nil && p.opts.FailFast {
				return fmt.Errorf("%s: %w", match.Repository, outcomes[i].Err)
			}
			return nil
		})
	}
	runErr := eg.Wait()

	report := &Report{}
	var failures []error
	for _, outcome := range outcomes {
		if outcome.State == "" {
			continue
		}
		report.Outcomes = append(report.Outcomes, outcome)
		if outcome.Err != nil && !p.opts.FailFast {
			failures = append(failures, fmt.Errorf("%s: %w", outcome.Repository, outcome.Err))
		}
	}
	if runErr != nil {
		return report, runErr
	}
	if runErr = ctx.Err(); runErr != nil {
		return report, runErr
	}
	return report, errors.Join(failures...)
}

// repoContext is the state threaded through the steps for one repository.
// Everything after resolveFork reads and writes the fork; pull requests live
// on the upstream repository.
type repoContext struct {
	upstream      domain.RepositoryRef
	fork          domain.RepositoryRef
	defaultBranch string
	manifestPath  string
	contentHash   string
	content       []byte
	pullRequest   *domain.PullRequest
	logger        *zap.Logger
}

// stepResult ends the sequence when done is set.
type stepResult struct {
	done   bool
	state  OutcomeState
	reason string
}

var proceed = stepResult{}

func stop(state OutcomeState, reason string) stepResult {
	return stepResult{done: true, state: state, reason: reason}
}

type step func(ctx context.Context, rc *repoContext) (stepResult, error)

func (p *Patcher) patchRepository(ctx context.Context, match domain.ManifestMatch) Outcome {
	rc := &repoContext{
		upstream:     match.Repository,
		manifestPath: match.Path,
		logger:       p.logger.With(zap.String("repository", match.Repository.String()), zap.String("path", match.Path)),
	}
	outcome := Outcome{Repository: match.Repository, Path: match.Path}

	steps := []step{
		p.filter,
		p.resolveFork,
		p.checkPullRequest,
		p.editManifest,
		p.prepareBranch,
		p.commitManifest,
		p.openPullRequest,
	}
	for _, s := range steps {
		result, err := s(ctx, rc)
		if err != nil {
			rc.logger.Error("failed to patch repository", zap.Error(err))
			outcome.State, outcome.Err = OutcomeFailed, err
			return outcome
		}
		if result.done {
			outcome.State, outcome.Reason = result.state, result.reason
			break
		}
	}
	if rc.pullRequest != nil {
		outcome.PullRequestURL = rc.pullRequest.HTMLURL
	}
	return outcome
}

func (p *Patcher) filter(ctx context.Context, rc *repoContext) (stepResult, error) {
	skip, err := p.client.IsArchivedOrPrivate(ctx, rc.upstream.Owner, rc.upstream.Name)
	if err != nil {
		return proceed, err
	}
	if skip {
		rc.logger.Warn("repository is archived or private, skipping")
		return stop(OutcomeSkipped, "archived or private"), nil
	}
	return proceed, nil
}

func (p *Patcher) resolveFork(ctx context.Context, rc *repoContext) (stepResult, error) {
	lookup, err := p.client.FindFork(ctx, rc.upstream.Owner, rc.upstream.Name)
	if err != nil {
		return proceed, err
	}

	var fork *domain.Repository
	if existing, found := lookup.Get(); found {
		rc.logger.Info("fork already exists", zap.String("fork", existing.Ref().String()))
		fork, err = p.client.GetRepository(ctx, existing.Owner, existing.Name)
	} else {
		rc.logger.Info("forking", zap.String("fork", p.client.CurrentUser()+"/"+rc.upstream.Name))
		fork, err = p.client.CreateFork(ctx, rc.upstream.Owner, rc.upstream.Name)
	}
	if err != nil {
		return proceed, err
	}
	rc.fork = fork.Ref()
	rc.defaultBranch = fork.DefaultBranch
	return proceed, nil
}

func (p *Patcher) checkPullRequest(ctx context.Context, rc *repoContext) (stepResult, error) {
	exists, err := p.client.PullRequestExists(ctx, rc.upstream.Owner, rc.upstream.Name)
	if err != nil {
		return proceed, err
	}
	if exists {
		rc.logger.Info("pull request already exists, skipping")
		return stop(OutcomeSkipped, "pull request exists"), nil
	}
	return proceed, nil
}

func (p *Patcher) editManifest(ctx context.Context, rc *repoContext) (stepResult, error) {
	rc.logger.Info("getting manifest")
	file, err := p.client.ReadManifest(ctx, rc.fork.Owner, rc.fork.Name, rc.manifestPath)
	if err != nil {
		return proceed, err
	}
	rc.contentHash = file.SHA

	updated, err := manifest.SetSchema(file.Content, p.opts.SchemaURL)
	if err != nil {
		return proceed, fmt.Errorf("failed to edit %s: %w", rc.manifestPath, err)
	}
	if manifest.Equivalent(file.Content, updated) {
		rc.logger.Info("manifest already declares the schema, skipping")
		return stop(OutcomeUpToDate, "schema already set"), nil
	}
	if p.validator != nil {
		if err := p.validator.Validate(updated); err != nil {
			rc.logger.Warn("manifest does not match the component detection schema", zap.Error(err))
		}
	}
	rc.content = updated
	return proceed, nil
}

func (p *Patcher) prepareBranch(ctx context.Context, rc *repoContext) (stepResult, error) {
	exists, err := p.client.BranchExists(ctx, rc.fork.Owner, rc.fork.Name)
	if err != nil {
		return proceed, err
	}
	if exists {
		rc.logger.Warn("maintenance branch already exists, deleting")
		if err := p.client.DeleteBranch(ctx, rc.fork.Owner, rc.fork.Name); err != nil {
			return proceed, err
		}
	}

	sha, err := p.client.GetBranch(ctx, rc.fork.Owner, rc.fork.Name, rc.defaultBranch)
	if err != nil {
		return proceed, err
	}
	rc.logger.Info("creating maintenance branch", zap.String("from", rc.defaultBranch), zap.String("sha", sha))
	if err := p.client.CreateBranch(ctx, rc.fork.Owner, rc.fork.Name, sha); err != nil {
		return proceed, err
	}
	return proceed, nil
}

func (p *Patcher) commitManifest(ctx context.Context, rc *repoContext) (stepResult, error) {
	rc.logger.Info("updating manifest")
	if err := p.client.WriteManifest(ctx, rc.fork.Owner, rc.fork.Name, rc.content, rc.manifestPath, rc.contentHash); err != nil {
		return proceed, err
	}
	return proceed, nil
}

func (p *Patcher) openPullRequest(ctx context.Context, rc *repoContext) (stepResult, error) {
	rc.logger.Info("creating pull request")
	pr, err := p.client.CreatePullRequest(ctx, rc.upstream.Owner, rc.upstream.Name, rc.defaultBranch)
	if err != nil {
		return proceed, err
	}
	rc.pullRequest = pr
	rc.logger.Info("pull request created", zap.String("url", pr.HTMLURL))
	return stop(OutcomeCreated, ""), nil
}
