package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"tasktrack/domain"
)

// Backend is the slice of the repository client the engine drives.
type Backend interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	FetchSummary(ctx context.Context) (domain.Summary, error)
	CreateTask(ctx context.Context, draft domain.Draft) (domain.Task, error)
	UpdateTask(ctx context.Context, id int64, draft domain.Draft) (domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// ErrorKind labels the last user-visible failure for the view to render.
type ErrorKind string

const (
	ErrNone                ErrorKind = ""
	ErrTaskListUnavailable ErrorKind = "task_list_unavailable"
	ErrSummaryUnavailable  ErrorKind = "summary_unavailable"
	ErrToggleFailed        ErrorKind = "toggle_failed"
	ErrDeleteFailed        ErrorKind = "delete_failed"
	ErrSaveFailed          ErrorKind = "save_failed"
)

// ErrNoPending is returned when a confirmation arrives with no action
// pending.
var ErrNoPending = errors.New("no pending action")

// Engine owns the authoritative in-memory view of tasks and their
// summary. Every mutation goes through the backend and is followed by a
// refresh; mutations themselves are never applied locally, so a failed
// call leaves the visible state untouched.
//
// Multiple intents may be in flight concurrently. Each refresh carries a
// monotonically increasing sequence number and a stale result is
// discarded rather than overwriting newer data. Tasks and summary are
// guarded independently because their fetches fail independently.
type Engine struct {
	backend Backend
	log     *log.Logger

	refreshSeq atomic.Uint64

	mu         sync.Mutex
	tasks      []domain.Task
	summary    domain.Summary
	pending    *domain.PendingAction
	lastErr    ErrorKind
	taskSeq    uint64
	summarySeq uint64
}

// New creates an Engine over the given backend.
func New(backend Backend, logger *log.Logger) *Engine {
	return &Engine{
		backend: backend,
		log:     logger,
		tasks:   []domain.Task{},
	}
}

// Snapshot is a point-in-time copy of the engine state for rendering.
type Snapshot struct {
	Tasks     []domain.Task         `json:"tasks"`
	Summary   domain.Summary        `json:"summary"`
	Pending   *domain.PendingAction `json:"pending,omitempty"`
	LastError ErrorKind             `json:"last_error,omitempty"`
}

// Snapshot returns a copy of the current state. The returned slices are
// owned by the caller.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	tasks := make([]domain.Task, len(e.tasks))
	copy(tasks, e.tasks)
	var pending *domain.PendingAction
	if e.pending != nil {
		p := *e.pending
		pending = &p
	}
	return Snapshot{Tasks: tasks, Summary: e.summary, Pending: pending, LastError: e.lastErr}
}

// TaskByID looks up a task in the current view.
func (e *Engine) TaskByID(id int64) (domain.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

// Refresh re-fetches the task list and summary and replaces the local
// view wholesale. The two fetches fail independently: a failed list
// fetch leaves tasks at their previous value, a failed summary fetch
// leaves only the summary stale. A result that lost the race against a
// later refresh is discarded.
func (e *Engine) Refresh(ctx context.Context) error {
	seq := e.refreshSeq.Add(1)

	var (
		wg      sync.WaitGroup
		tasks   []domain.Task
		summary domain.Summary
		listErr error
		sumErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		tasks, listErr = e.backend.ListTasks(ctx)
	}()
	go func() {
		defer wg.Done()
		summary, sumErr = e.backend.FetchSummary(ctx)
	}()
	wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case listErr != nil:
		e.lastErr = ErrTaskListUnavailable
		if e.log != nil {
			e.log.WithField("error", listErr.Error()).Warn("task list fetch failed")
		}
	case seq > e.taskSeq:
		e.tasks = tasks
		e.taskSeq = seq
	default:
		if e.log != nil {
			e.log.WithFields(log.Fields{"seq": seq, "applied": e.taskSeq}).Debug("stale task list discarded")
		}
	}

	switch {
	case sumErr != nil:
		e.lastErr = ErrSummaryUnavailable
		if e.log != nil {
			e.log.WithField("error", sumErr.Error()).Warn("summary fetch failed")
		}
	case seq > e.summarySeq:
		e.summary = summary
		e.summarySeq = seq
	}

	if listErr == nil && sumErr == nil {
		e.lastErr = ErrNone
	}

	if listErr != nil {
		return listErr
	}
	return sumErr
}

// RequestToggle flips a task's completion state on the server and
// refreshes on success. There is no optimistic local flip: until the
// server confirms, the visible state is unchanged, and on failure it
// stays that way.
func (e *Engine) RequestToggle(ctx context.Context, task domain.Task) error {
	draft := domain.Draft{
		Title:       task.Title,
		Description: task.Description,
		Category:    task.Category,
		Priority:    task.Priority,
		Completed:   !task.Completed,
	}
	if _, err := e.backend.UpdateTask(ctx, task.ID, draft); err != nil {
		e.setErr(ErrToggleFailed)
		return err
	}
	e.Refresh(ctx)
	return nil
}

// RequestDelete opens a delete confirmation for the task. Nothing is
// sent to the backend until the action is confirmed. A still-open prior
// action is replaced.
func (e *Engine) RequestDelete(task domain.Task) domain.PendingAction {
	return e.setPending(domain.ActionDelete, task)
}

// RequestEdit opens an edit confirmation for the task. Confirming it
// gates entry into the form; no backend call is involved.
func (e *Engine) RequestEdit(task domain.Task) domain.PendingAction {
	return e.setPending(domain.ActionEdit, task)
}

func (e *Engine) setPending(kind domain.ActionKind, task domain.Task) domain.PendingAction {
	p := domain.PendingAction{Token: uuid.NewString(), Kind: kind, Task: task}

	e.mu.Lock()
	replaced := e.pending != nil
	e.pending = &p
	e.mu.Unlock()

	if replaced && e.log != nil {
		e.log.Debug("pending action replaced")
	}
	return p
}

// ConfirmPending commits the live pending action. For a delete it
// issues the backend delete, refreshes and clears the action; the
// action stays open on failure so the user may retry. For an edit it
// returns the target snapshot as the draft seed and clears the action.
func (e *Engine) ConfirmPending(ctx context.Context) (*domain.Task, error) {
	e.mu.Lock()
	p := e.pending
	e.mu.Unlock()
	if p == nil {
		return nil, ErrNoPending
	}

	switch p.Kind {
	case domain.ActionDelete:
		if err := e.backend.DeleteTask(ctx, p.Task.ID); err != nil {
			e.setErr(ErrDeleteFailed)
			return nil, err
		}
		e.Refresh(ctx)
		e.clearPending(p.Token)
		return nil, nil
	case domain.ActionEdit:
		e.clearPending(p.Token)
		seed := p.Task
		return &seed, nil
	default:
		return nil, ErrNoPending
	}
}

// CancelPending discards the live pending action unconditionally. No
// backend call is made.
func (e *Engine) CancelPending() {
	e.mu.Lock()
	e.pending = nil
	e.mu.Unlock()
}

// clearPending drops the pending action only if it is still the one
// identified by token; a replacement that raced in stays live.
func (e *Engine) clearPending(token string) {
	e.mu.Lock()
	if e.pending != nil && e.pending.Token == token {
		e.pending = nil
	}
	e.mu.Unlock()
}

// SubmitDraft persists a draft: an update when existing is set (the
// original completion state is preserved, since the form never edits
// it), a create otherwise. On success the view is refreshed and the
// caller should leave edit mode; on failure the draft stays active for
// retry.
func (e *Engine) SubmitDraft(ctx context.Context, draft domain.Draft, existing *domain.Task) error {
	d := draft.Normalize()
	if err := d.Validate(); err != nil {
		return err
	}

	if existing != nil {
		d.Completed = existing.Completed
		if _, err := e.backend.UpdateTask(ctx, existing.ID, d); err != nil {
			e.setErr(ErrSaveFailed)
			return err
		}
	} else {
		d.Completed = false
		if _, err := e.backend.CreateTask(ctx, d); err != nil {
			e.setErr(ErrSaveFailed)
			return err
		}
	}

	e.Refresh(ctx)
	return nil
}

func (e *Engine) setErr(kind ErrorKind) {
	e.mu.Lock()
	e.lastErr = kind
	e.mu.Unlock()
}
