package domain

// Summary is the aggregate completion view reported by the remote
// resource. It is fetched independently of the task list and is never
// derived from it client-side, so the two may disagree transiently
// between a mutation and the next successful refresh.
type Summary struct {
	Total            int     `json:"total"`
	Completed        int     `json:"completed"`
	PercentCompleted float64 `json:"percent_completed"`
}
