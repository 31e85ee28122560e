package api

import "tasktrack/domain"

const requestMaxSize = 64 * 1024 // 64 KiB

// batch bounds for GET /api/ai/suggestions
const (
	suggestionBatchMin = 3
	suggestionBatchMax = 4
)

// POST /api/ai/enhance request body
type enhanceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// POST /api/tasks/:id/{delete,edit} response body
type pendingResponse struct {
	Pending domain.PendingAction `json:"pending"`
}

// POST /api/pending/confirm response body
type confirmResponse struct {
	// EditTask is the draft seed when an edit confirmation was committed.
	EditTask *domain.Task `json:"edit_task,omitempty"`
}

// GET /api/ai/suggestions response body
type suggestionsResponse struct {
	Suggestions []domain.Suggestion `json:"suggestions"`
}

type errorResponse struct {
	Error string `json:"error"`
}
