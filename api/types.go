package api

import (
	"context"

	"tasktrack/domain"
	"tasktrack/engine"
)

// Engine is the synchronization engine surface the handlers drive.
type Engine interface {
	Snapshot() engine.Snapshot
	TaskByID(id int64) (domain.Task, bool)
	Refresh(ctx context.Context) error
	SubmitDraft(ctx context.Context, draft domain.Draft, existing *domain.Task) error
	RequestToggle(ctx context.Context, task domain.Task) error
	RequestDelete(task domain.Task) domain.PendingAction
	RequestEdit(task domain.Task) domain.PendingAction
	ConfirmPending(ctx context.Context) (*domain.Task, error)
	CancelPending()
}

// Enhancer produces AI suggestions and productivity insights.
type Enhancer interface {
	Enhance(ctx context.Context, title, description string) (domain.Suggestion, error)
	Insights(ctx context.Context) (domain.ProductivityInsights, error)
}

// SuggestionSource returns canned suggestion batches.
type SuggestionSource interface {
	Generate(ctx context.Context, min, max int) ([]domain.Suggestion, error)
}

// EnhancementUnavailableError is implemented by errors reporting that
// every enhancement tier failed.
type EnhancementUnavailableError interface {
	error
	EnhancementUnavailable()
}
