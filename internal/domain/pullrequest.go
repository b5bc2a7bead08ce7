package domain

import "time"

// PullRequest is a pull request opened or found by the tool.
type PullRequest struct {
	Owner   string
	Repo    string
	Number  int
	Title   string
	Author  string
	State   string
	Merged  bool
	HTMLURL string
	NodeID  string
}

// PullRequestState is the bucket a tracked pull request falls into.
type PullRequestState string

const (
	StateOpen   PullRequestState = "open"
	StateMerged PullRequestState = "merged"
	StateClosed PullRequestState = "closed"
)

// PullRequestStatus is the current state of a previously opened pull request.
type PullRequestStatus struct {
	URL        string
	Repository RepositoryRef
	Number     int
	State      PullRequestState
	CreatedAt  time.Time
	MergedAt   *time.Time
}

// ClassifyPullRequest maps a GraphQL state and merged flag to a bucket.
// GitHub reports merged pull requests with state MERGED, so the merged flag
// is checked first and anything that is neither merged nor open is closed.
func ClassifyPullRequest(state string, merged bool) PullRequestState {
	switch {
	case merged || state == "MERGED":
		return StateMerged
	case state == "OPEN":
		return StateOpen
	default:
		return StateClosed
	}
}
