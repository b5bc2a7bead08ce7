package usecase

import (
	"context"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/naka-gawa/cgmanifest-schema/internal/domain"
	"github.com/naka-gawa/cgmanifest-schema/internal/gateway"
)

// Tracker reports how far the rollout of the tool's pull requests got.
// It never modifies anything.
type Tracker struct {
	client gateway.ProgressClient
	logger *zap.Logger
}

// NewTracker creates a new Tracker instance.
func NewTracker(client gateway.ProgressClient, logger *zap.Logger) *Tracker {
	return &Tracker{
		client: client,
		logger: logger,
	}
}

// Track looks up every pull request the current user opened in owner's
// repositories and tallies them by state.
func (t *Tracker) Track(ctx context.Context, owner string) (*domain.Progress, error) {
	t.logger.Info("searching pull requests", zap.String("owner", owner), zap.String("author", t.client.CurrentUser()))
	nodeIDs, err := t.client.SearchPullRequests(ctx, owner)
	if err != nil {
		return nil, err
	}

	progress := &domain.Progress{PullRequests: make([]*domain.PullRequestStatus, 0, len(nodeIDs))}
	var daysToMerge stats.Float64Data
	for _, nodeID := range nodeIDs {
		status, err := t.client.PullRequestStatus(ctx, nodeID)
		if err != nil {
			return nil, err
		}
		progress.Tally.Add(status.State)
		progress.PullRequests = append(progress.PullRequests, status)

		switch status.State {
		case domain.StateMerged:
			t.logger.Info(status.URL + " is merged")
			if status.MergedAt != nil {
				daysToMerge = append(daysToMerge, status.MergedAt.Sub(status.CreatedAt).Hours()/24)
			}
		case domain.StateOpen:
			t.logger.Info(status.URL + " is open")
		default:
			t.logger.Warn(status.URL + " is closed")
		}
	}

	// stats returns EmptyInputErr when nothing was merged yet; both stay zero then.
	if mean, err := stats.Mean(daysToMerge); err == nil {
		progress.MeanDaysToMerge, _ = stats.Round(mean, 2)
	}
	if median, err := stats.Median(daysToMerge); err == nil {
		progress.MedianDaysToMerge, _ = stats.Round(median, 2)
	}
	return progress, nil
}
