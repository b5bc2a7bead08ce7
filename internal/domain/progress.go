package domain

// Tally counts tracked pull requests by state.
type Tally struct {
	Merged int `json:"merged"`
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

// Add counts one pull request in exactly one bucket.
func (t *Tally) Add(state PullRequestState) {
	switch state {
	case StateMerged:
		t.Merged++
	case StateOpen:
		t.Open++
	default:
		t.Closed++
	}
}

// Total is the number of pull requests counted.
func (t Tally) Total() int {
	return t.Merged + t.Open + t.Closed
}

// Progress is the rollout status of the tool across an owner.
type Progress struct {
	Tally             Tally                `json:"tally"`
	MeanDaysToMerge   float64              `json:"mean_days_to_merge"`
	MedianDaysToMerge float64              `json:"median_days_to_merge"`
	PullRequests      []*PullRequestStatus `json:"-"`
}
