package engine

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	log "github.com/sirupsen/logrus"

	"tasktrack/domain"
)

type stubBackend struct {
	listFn    func(ctx context.Context) ([]domain.Task, error)
	summaryFn func(ctx context.Context) (domain.Summary, error)
	createFn  func(ctx context.Context, d domain.Draft) (domain.Task, error)
	updateFn  func(ctx context.Context, id int64, d domain.Draft) (domain.Task, error)
	deleteFn  func(ctx context.Context, id int64) error

	listCalls    atomic.Int32
	summaryCalls atomic.Int32
	createCalls  atomic.Int32
	updateCalls  atomic.Int32
	deleteCalls  atomic.Int32
}

func (s *stubBackend) ListTasks(ctx context.Context) ([]domain.Task, error) {
	s.listCalls.Add(1)
	if s.listFn == nil {
		return nil, errors.New("unexpected ListTasks call")
	}
	return s.listFn(ctx)
}

func (s *stubBackend) FetchSummary(ctx context.Context) (domain.Summary, error) {
	s.summaryCalls.Add(1)
	if s.summaryFn == nil {
		return domain.Summary{}, errors.New("unexpected FetchSummary call")
	}
	return s.summaryFn(ctx)
}

func (s *stubBackend) CreateTask(ctx context.Context, d domain.Draft) (domain.Task, error) {
	s.createCalls.Add(1)
	if s.createFn == nil {
		return domain.Task{}, errors.New("unexpected CreateTask call")
	}
	return s.createFn(ctx, d)
}

func (s *stubBackend) UpdateTask(ctx context.Context, id int64, d domain.Draft) (domain.Task, error) {
	s.updateCalls.Add(1)
	if s.updateFn == nil {
		return domain.Task{}, errors.New("unexpected UpdateTask call")
	}
	return s.updateFn(ctx, id, d)
}

func (s *stubBackend) DeleteTask(ctx context.Context, id int64) error {
	s.deleteCalls.Add(1)
	if s.deleteFn == nil {
		return errors.New("unexpected DeleteTask call")
	}
	return s.deleteFn(ctx, id)
}

func staticBackend(tasks []domain.Task, sum domain.Summary) *stubBackend {
	return &stubBackend{
		listFn:    func(context.Context) ([]domain.Task, error) { return append([]domain.Task(nil), tasks...), nil },
		summaryFn: func(context.Context) (domain.Summary, error) { return sum, nil },
	}
}

func testTasks() []domain.Task {
	return []domain.Task{
		{ID: 1, Title: "Write report", Category: "Work", Priority: domain.PriorityMedium},
		{ID: 2, Title: "Stretch", Category: "Health", Priority: domain.PriorityLow, Completed: true},
	}
}

func TestRefreshReplacesStateAndIsIdempotent(t *testing.T) {
	tasks := testTasks()
	sum := domain.Summary{Total: 2, Completed: 1, PercentCompleted: 50}
	e := New(staticBackend(tasks, sum), log.New())

	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	first := e.Snapshot()
	if !reflect.DeepEqual(first.Tasks, tasks) {
		t.Fatalf("unexpected tasks: %#v", first.Tasks)
	}
	if first.Summary != sum {
		t.Fatalf("unexpected summary: %#v", first.Summary)
	}

	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	second := e.Snapshot()
	if !reflect.DeepEqual(first.Tasks, second.Tasks) || first.Summary != second.Summary {
		t.Fatalf("refresh must be idempotent without intervening mutations")
	}
}

func TestRefreshListFailureKeepsPreviousTasks(t *testing.T) {
	sb := staticBackend(testTasks(), domain.Summary{Total: 2, Completed: 1, PercentCompleted: 50})
	e := New(sb, log.New())
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("seed refresh: %v", err)
	}

	sb.listFn = func(context.Context) ([]domain.Task, error) { return nil, errors.New("boom") }
	sb.summaryFn = func(context.Context) (domain.Summary, error) {
		return domain.Summary{Total: 3, Completed: 1, PercentCompleted: 33.3}, nil
	}

	if err := e.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	snap := e.Snapshot()
	if len(snap.Tasks) != 2 {
		t.Fatalf("tasks must keep previous value, got %#v", snap.Tasks)
	}
	if snap.Summary.Total != 3 {
		t.Fatalf("summary must still apply independently, got %#v", snap.Summary)
	}
	if snap.LastError != ErrTaskListUnavailable {
		t.Fatalf("expected task_list_unavailable, got %q", snap.LastError)
	}
}

func TestRefreshSummaryFailureKeepsPreviousSummary(t *testing.T) {
	sb := staticBackend(testTasks(), domain.Summary{Total: 2, Completed: 1, PercentCompleted: 50})
	e := New(sb, log.New())
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("seed refresh: %v", err)
	}

	sb.summaryFn = func(context.Context) (domain.Summary, error) { return domain.Summary{}, errors.New("boom") }

	if err := e.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	snap := e.Snapshot()
	if snap.Summary.Total != 2 {
		t.Fatalf("summary must keep previous value, got %#v", snap.Summary)
	}
	if snap.LastError != ErrSummaryUnavailable {
		t.Fatalf("expected summary_unavailable, got %q", snap.LastError)
	}
}

func TestRefreshSuccessClearsLastError(t *testing.T) {
	sb := staticBackend(testTasks(), domain.Summary{Total: 2})
	e := New(sb, log.New())
	e.setErr(ErrToggleFailed)

	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if snap := e.Snapshot(); snap.LastError != ErrNone {
		t.Fatalf("expected cleared error, got %q", snap.LastError)
	}
}

func TestStaleRefreshDiscarded(t *testing.T) {
	oldTasks := []domain.Task{{ID: 1, Title: "old", Category: "x", Priority: domain.PriorityLow}}
	newTasks := []domain.Task{{ID: 1, Title: "new", Category: "x", Priority: domain.PriorityLow}}

	entered := make(chan struct{})
	release := make(chan struct{})
	var call atomic.Int32

	sb := &stubBackend{
		listFn: func(context.Context) ([]domain.Task, error) {
			if call.Add(1) == 1 {
				close(entered)
				<-release
				return oldTasks, nil
			}
			return newTasks, nil
		},
		summaryFn: func(context.Context) (domain.Summary, error) { return domain.Summary{Total: 1}, nil },
	}
	e := New(sb, log.New())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.Refresh(context.Background()) // R1, blocks in list fetch
	}()
	<-entered

	if err := e.Refresh(context.Background()); err != nil { // R2, resolves first
		t.Fatalf("refresh: %v", err)
	}
	close(release)
	wg.Wait()

	snap := e.Snapshot()
	if !reflect.DeepEqual(snap.Tasks, newTasks) {
		t.Fatalf("stale refresh must not overwrite newer state, got %#v", snap.Tasks)
	}
}

func TestRequestToggleSendsFullFlippedObject(t *testing.T) {
	var gotID int64
	var gotDraft domain.Draft
	sb := staticBackend(testTasks(), domain.Summary{Total: 2})
	sb.updateFn = func(ctx context.Context, id int64, d domain.Draft) (domain.Task, error) {
		gotID = id
		gotDraft = d
		return domain.Task{ID: id}, nil
	}
	e := New(sb, log.New())

	task := domain.Task{ID: 5, Title: "t", Description: "d", Category: "Work", Priority: domain.PriorityHigh, Completed: false}
	if err := e.RequestToggle(context.Background(), task); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if gotID != 5 {
		t.Fatalf("unexpected id: %d", gotID)
	}
	want := domain.Draft{Title: "t", Description: "d", Category: "Work", Priority: domain.PriorityHigh, Completed: true}
	if gotDraft != want {
		t.Fatalf("toggle must send the full object with completed flipped, got %#v", gotDraft)
	}
	if sb.listCalls.Load() == 0 || sb.summaryCalls.Load() == 0 {
		t.Fatal("expected refresh after successful toggle")
	}
}

func TestRequestToggleFailureLeavesStateUntouched(t *testing.T) {
	sb := staticBackend(testTasks(), domain.Summary{Total: 2, Completed: 1})
	e := New(sb, log.New())
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("seed refresh: %v", err)
	}
	before := e.Snapshot()
	listCalls := sb.listCalls.Load()

	sb.updateFn = func(context.Context, int64, domain.Draft) (domain.Task, error) {
		return domain.Task{}, errors.New("boom")
	}
	if err := e.RequestToggle(context.Background(), before.Tasks[0]); err == nil {
		t.Fatal("expected toggle error")
	}

	after := e.Snapshot()
	if !reflect.DeepEqual(before.Tasks, after.Tasks) || before.Summary != after.Summary {
		t.Fatal("failed toggle must not change local state")
	}
	if after.LastError != ErrToggleFailed {
		t.Fatalf("expected toggle_failed, got %q", after.LastError)
	}
	if sb.listCalls.Load() != listCalls {
		t.Fatal("failed toggle must not trigger a refresh")
	}
}

func TestRequestDeleteOpensPendingWithoutNetwork(t *testing.T) {
	sb := &stubBackend{}
	e := New(sb, log.New())
	task := testTasks()[0]

	p := e.RequestDelete(task)

	if p.Kind != domain.ActionDelete || p.Task.ID != task.ID || p.Token == "" {
		t.Fatalf("unexpected pending action: %#v", p)
	}
	snap := e.Snapshot()
	if snap.Pending == nil || snap.Pending.Token != p.Token {
		t.Fatalf("pending action not live: %#v", snap.Pending)
	}
	if sb.deleteCalls.Load() != 0 {
		t.Fatal("requesting a delete must not touch the backend")
	}
}

func TestSecondRequestReplacesPending(t *testing.T) {
	e := New(&stubBackend{}, log.New())
	tasks := testTasks()

	first := e.RequestDelete(tasks[0])
	second := e.RequestDelete(tasks[1])

	snap := e.Snapshot()
	if snap.Pending == nil {
		t.Fatal("expected a live pending action")
	}
	if snap.Pending.Token == first.Token {
		t.Fatal("expected the second request to replace the first")
	}
	if snap.Pending.Token != second.Token || snap.Pending.Task.ID != tasks[1].ID {
		t.Fatalf("unexpected pending action: %#v", snap.Pending)
	}
}

func TestCancelPendingNoNetwork(t *testing.T) {
	sb := &stubBackend{}
	e := New(sb, log.New())
	e.RequestDelete(testTasks()[0])

	e.CancelPending()

	if snap := e.Snapshot(); snap.Pending != nil {
		t.Fatalf("pending action must be discarded: %#v", snap.Pending)
	}
	if sb.deleteCalls.Load() != 0 || sb.listCalls.Load() != 0 {
		t.Fatal("cancel must not issue any backend call")
	}
}

func TestConfirmDeleteRemovesTask(t *testing.T) {
	remaining := []domain.Task{testTasks()[1]}
	sb := staticBackend(remaining, domain.Summary{Total: 1, Completed: 1, PercentCompleted: 100})
	var deletedID int64
	sb.deleteFn = func(ctx context.Context, id int64) error {
		deletedID = id
		return nil
	}
	e := New(sb, log.New())
	e.RequestDelete(testTasks()[0])

	seed, err := e.ConfirmPending(context.Background())
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if seed != nil {
		t.Fatalf("delete confirmation must not return an edit seed: %#v", seed)
	}
	if deletedID != 1 {
		t.Fatalf("unexpected deleted id: %d", deletedID)
	}

	snap := e.Snapshot()
	if snap.Pending != nil {
		t.Fatal("pending action must be cleared after confirm")
	}
	if len(snap.Tasks) != 1 || snap.Tasks[0].ID != 2 {
		t.Fatalf("expected refreshed view without the deleted task, got %#v", snap.Tasks)
	}
}

func TestConfirmDeleteFailureKeepsPending(t *testing.T) {
	sb := &stubBackend{
		deleteFn: func(context.Context, int64) error { return errors.New("boom") },
	}
	e := New(sb, log.New())
	p := e.RequestDelete(testTasks()[0])

	if _, err := e.ConfirmPending(context.Background()); err == nil {
		t.Fatal("expected confirm error")
	}

	snap := e.Snapshot()
	if snap.Pending == nil || snap.Pending.Token != p.Token {
		t.Fatal("pending action must stay open on failure")
	}
	if snap.LastError != ErrDeleteFailed {
		t.Fatalf("expected delete_failed, got %q", snap.LastError)
	}
	if sb.listCalls.Load() != 0 {
		t.Fatal("failed delete must not trigger a refresh")
	}
}

func TestConfirmEditReturnsSeedWithoutNetwork(t *testing.T) {
	sb := &stubBackend{}
	e := New(sb, log.New())
	task := testTasks()[0]
	e.RequestEdit(task)

	seed, err := e.ConfirmPending(context.Background())
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if seed == nil || seed.ID != task.ID || seed.Title != task.Title {
		t.Fatalf("unexpected edit seed: %#v", seed)
	}
	if snap := e.Snapshot(); snap.Pending != nil {
		t.Fatal("pending action must be cleared after edit confirm")
	}
	if sb.updateCalls.Load() != 0 || sb.listCalls.Load() != 0 {
		t.Fatal("edit confirmation must not issue any backend call")
	}
}

func TestConfirmWithoutPending(t *testing.T) {
	e := New(&stubBackend{}, log.New())
	if _, err := e.ConfirmPending(context.Background()); !errors.Is(err, ErrNoPending) {
		t.Fatalf("expected ErrNoPending, got %v", err)
	}
}

func TestSubmitDraftCreates(t *testing.T) {
	created := domain.Task{ID: 7, Title: "Write report", Category: "Work", Priority: domain.PriorityMedium}
	sb := staticBackend([]domain.Task{created}, domain.Summary{Total: 1})
	var gotDraft domain.Draft
	sb.createFn = func(ctx context.Context, d domain.Draft) (domain.Task, error) {
		gotDraft = d
		return created, nil
	}
	e := New(sb, log.New())

	draft := domain.Draft{Title: " Write report ", Category: "Work", Completed: true}
	if err := e.SubmitDraft(context.Background(), draft, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if gotDraft.Title != "Write report" {
		t.Fatalf("expected normalized title, got %q", gotDraft.Title)
	}
	if gotDraft.Completed {
		t.Fatal("new tasks must be created incomplete")
	}
	snap := e.Snapshot()
	if len(snap.Tasks) != 1 || snap.Tasks[0].ID != 7 {
		t.Fatalf("expected refreshed view with the new task, got %#v", snap.Tasks)
	}
	if snap.Summary.Total != 1 {
		t.Fatalf("expected refreshed summary, got %#v", snap.Summary)
	}
}

func TestSubmitDraftUpdatePreservesCompleted(t *testing.T) {
	sb := staticBackend(testTasks(), domain.Summary{Total: 2})
	var gotDraft domain.Draft
	sb.updateFn = func(ctx context.Context, id int64, d domain.Draft) (domain.Task, error) {
		gotDraft = d
		return domain.Task{ID: id}, nil
	}
	e := New(sb, log.New())

	existing := domain.Task{ID: 2, Title: "Stretch", Category: "Health", Priority: domain.PriorityLow, Completed: true}
	draft := domain.Draft{Title: "Stretch more", Category: "Health", Priority: domain.PriorityLow, Completed: false}
	if err := e.SubmitDraft(context.Background(), draft, &existing); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !gotDraft.Completed {
		t.Fatal("update must preserve the original completion state")
	}
	if gotDraft.Title != "Stretch more" {
		t.Fatalf("unexpected title: %q", gotDraft.Title)
	}
}

func TestSubmitDraftValidationBlocksNetwork(t *testing.T) {
	sb := &stubBackend{}
	e := New(sb, log.New())

	err := e.SubmitDraft(context.Background(), domain.Draft{Title: "x"}, nil)
	var verr domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if sb.createCalls.Load() != 0 || sb.updateCalls.Load() != 0 {
		t.Fatal("invalid draft must not reach the backend")
	}
	if snap := e.Snapshot(); snap.LastError != ErrNone {
		t.Fatalf("validation must not set a user-visible error, got %q", snap.LastError)
	}
}

func TestSubmitDraftSaveFailure(t *testing.T) {
	sb := staticBackend(testTasks(), domain.Summary{Total: 2})
	e := New(sb, log.New())
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("seed refresh: %v", err)
	}
	before := e.Snapshot()
	listCalls := sb.listCalls.Load()

	sb.createFn = func(context.Context, domain.Draft) (domain.Task, error) {
		return domain.Task{}, errors.New("boom")
	}
	err := e.SubmitDraft(context.Background(), domain.Draft{Title: "t", Category: "c"}, nil)
	if err == nil {
		t.Fatal("expected submit error")
	}

	after := e.Snapshot()
	if !reflect.DeepEqual(before.Tasks, after.Tasks) {
		t.Fatal("failed save must not change local state")
	}
	if after.LastError != ErrSaveFailed {
		t.Fatalf("expected save_failed, got %q", after.LastError)
	}
	if sb.listCalls.Load() != listCalls {
		t.Fatal("failed save must not trigger a refresh")
	}
}

func TestTaskByID(t *testing.T) {
	e := New(staticBackend(testTasks(), domain.Summary{Total: 2}), log.New())
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	task, ok := e.TaskByID(2)
	if !ok || task.Title != "Stretch" {
		t.Fatalf("unexpected lookup result: %#v %v", task, ok)
	}
	if _, ok := e.TaskByID(99); ok {
		t.Fatal("expected miss for unknown id")
	}
}
