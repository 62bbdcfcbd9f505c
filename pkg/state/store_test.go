package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/notify"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

type recordingPersister struct {
	mu        sync.Mutex
	persisted []model.FormState
	clears    int
	saved     *model.FormState
	clearErr  error
	// clearHook, when set, runs inside the removal.
	clearHook func()
}

func (p *recordingPersister) Persist(state model.FormState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.persisted = append(p.persisted, state)
}

func (p *recordingPersister) BeginClear() func(context.Context) error {
	return func(context.Context) error {
		p.mu.Lock()
		hook := p.clearHook
		p.mu.Unlock()
		if hook != nil {
			hook()
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		p.clears++
		return p.clearErr
	}
}

func (p *recordingPersister) Load(context.Context) (model.FormState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saved == nil {
		return model.FormState{}, false
	}
	return *p.saved, true
}

func (p *recordingPersister) persistCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.persisted)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validText(id, label string) model.Question {
	q := model.NewQuestion(id)
	q.Label = label
	return q
}

func TestStorePersistsOnlyValidEdits(t *testing.T) {
	p := &recordingPersister{}
	store := NewStore(WithPersister(p), WithLogger(quietLogger()))
	ctx := context.Background()

	store.Dispatch(ctx, AddQuestion{Question: validText("q1", "Name")})
	if p.persistCount() != 1 {
		t.Fatalf("expected valid add to persist")
	}

	store.Dispatch(ctx, UpdateQuestion{ID: "q1", Field: FieldLabel, Value: "  "})
	if p.persistCount() != 1 {
		t.Fatalf("invalid edit must not persist")
	}

	store.Dispatch(ctx, SetFormName{Name: "Signup"})
	if p.persistCount() != 1 {
		t.Fatalf("rename with an invalid question must not persist")
	}

	store.Dispatch(ctx, UpdateQuestion{ID: "q1", Field: FieldLabel, Value: "Full name"})
	if p.persistCount() != 2 {
		t.Fatalf("expected fixed edit to persist, got %d", p.persistCount())
	}
	last := p.persisted[len(p.persisted)-1]
	if last.FormName != "Signup" || last.Questions[0].Label != "Full name" {
		t.Fatalf("unexpected persisted state %+v", last)
	}
}

func TestStoreNonPersistingActions(t *testing.T) {
	p := &recordingPersister{}
	store := NewStore(WithPersister(p), WithLogger(quietLogger()))
	ctx := context.Background()

	store.Dispatch(ctx, LoadForm{State: formWith(validText("q1", "Name"))})
	store.Dispatch(ctx, StartSaving{ID: "q1"})
	store.Dispatch(ctx, FinishSaving{ID: "q1"})

	if p.persistCount() != 0 {
		t.Fatalf("expected no persist, got %d", p.persistCount())
	}
}

func TestStoreResetDoesNotHoldLockDuringRemoval(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	p := &recordingPersister{clearHook: func() {
		close(entered)
		<-release
	}}
	store := NewStore(
		WithPersister(p),
		WithLogger(quietLogger()),
		WithInitialState(formWith(validText("q1", "Name"))),
	)

	done := make(chan struct{})
	go func() {
		store.Dispatch(context.Background(), ResetForm{})
		close(done)
	}()
	<-entered

	dispatched := make(chan struct{})
	go func() {
		store.Dispatch(context.Background(), SetFormName{Name: "After"})
		close(dispatched)
	}()
	select {
	case <-dispatched:
	case <-time.After(time.Second):
		t.Fatalf("dispatch blocked behind the storage removal")
	}

	close(release)
	<-done
	if got := store.State().FormName; got != "After" {
		t.Fatalf("expected later dispatch to apply, got %q", got)
	}
}

func TestStoreResetClearsStorage(t *testing.T) {
	p := &recordingPersister{clearErr: errors.New("locked")}
	store := NewStore(
		WithPersister(p),
		WithLogger(quietLogger()),
		WithInitialState(formWith(validText("q1", "Name"))),
	)

	got := store.Dispatch(context.Background(), ResetForm{})

	if diff := cmp.Diff(model.Empty(), got); diff != "" {
		t.Fatalf("reset state mismatch (-want +got):\n%s", diff)
	}
	if p.clears != 1 {
		t.Fatalf("expected one clear, got %d", p.clears)
	}
	if p.persistCount() != 0 {
		t.Fatalf("reset must not persist")
	}
}

func TestStoreHydrate(t *testing.T) {
	saved := formWith(validText("q1", "Name"))
	p := &recordingPersister{saved: &saved}
	store := NewStore(WithPersister(p), WithLogger(quietLogger()))

	if !store.Hydrate(context.Background()) {
		t.Fatalf("expected hydrate to find the saved form")
	}
	if diff := cmp.Diff(saved, store.State()); diff != "" {
		t.Fatalf("hydrated state mismatch (-want +got):\n%s", diff)
	}
	if p.persistCount() != 0 {
		t.Fatalf("loading must not persist")
	}

	empty := NewStore(WithLogger(quietLogger()))
	if empty.Hydrate(context.Background()) {
		t.Fatalf("expected no saved form")
	}
}

func TestStoreSubscribe(t *testing.T) {
	store := NewStore(WithLogger(quietLogger()))
	var names []string
	cancel := store.Subscribe(func(s model.FormState) { names = append(names, s.FormName) })

	store.Dispatch(context.Background(), SetFormName{Name: "one"})
	cancel()
	store.Dispatch(context.Background(), SetFormName{Name: "two"})

	if diff := cmp.Diff([]string{"one"}, names); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreStateIsACopy(t *testing.T) {
	store := NewStore(WithInitialState(formWith(validText("q1", "Name"))))
	s := store.State()
	s.Questions[0].Label = "changed"
	if store.State().Questions[0].Label != "Name" {
		t.Fatalf("State leaked internal storage")
	}
}

func TestStoreSelectQuestionScenario(t *testing.T) {
	provider := storage.NewMemoryProvider()
	adapter, err := storage.NewAdapter(provider,
		storage.WithDebounce(0),
		storage.WithLogger(quietLogger()),
		storage.WithRetryPolicy(storage.RetryPolicy{Attempts: 1}),
	)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer adapter.Close()

	store := NewStore(WithPersister(adapter), WithLogger(quietLogger()))
	ctx := context.Background()

	q := model.NewQuestion("q1")
	q.Type = model.QuestionTypeSelect
	store.Dispatch(ctx, AddQuestion{Question: q})

	errs := store.Errors()
	want := []validation.Errors{{
		validation.FieldLabel:   validation.MessageLabelRequired,
		validation.FieldOptions: validation.MessageOptionsRequired,
	}}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if _, ok, _ := provider.Get(ctx, storage.DefaultKey); ok {
		t.Fatalf("invalid form was written")
	}

	store.Dispatch(ctx, UpdateQuestion{ID: "q1", Field: FieldLabel, Value: "Colour"})
	if _, ok, _ := provider.Get(ctx, storage.DefaultKey); ok {
		t.Fatalf("form with a missing option list was written")
	}

	store.Dispatch(ctx, UpdateQuestion{ID: "q1", Field: FieldOptions, Value: []string{"Red", "Blue"}})
	saved, ok := adapter.Load(ctx)
	if !ok {
		t.Fatalf("expected the fixed form to be written")
	}
	if diff := cmp.Diff(store.State(), saved); diff != "" {
		t.Fatalf("saved form mismatch (-want +got):\n%s", diff)
	}

	store.Dispatch(ctx, ResetForm{})
	if _, ok := adapter.Load(ctx); ok {
		t.Fatalf("expected reset to clear storage")
	}
}

type funcSaver func(context.Context, model.FormState) error

func (fn funcSaver) Save(ctx context.Context, s model.FormState) error { return fn(ctx, s) }

func TestManualSaverCoalescesAndReportsSuccess(t *testing.T) {
	var (
		mu    sync.Mutex
		saved []string
	)
	capture := &notify.Capture{}
	saver := NewManualSaver(funcSaver(func(_ context.Context, s model.FormState) error {
		mu.Lock()
		saved = append(saved, s.FormName)
		mu.Unlock()
		return nil
	}), WithManualWindow(time.Hour), WithManualNotifier(capture), WithManualLogger(quietLogger()))
	defer saver.Close()

	if saver.Status() != SaveIdle {
		t.Fatalf("expected idle, got %s", saver.Status())
	}
	saver.Save(model.FormState{FormName: "a"})
	saver.Save(model.FormState{FormName: "b"})
	if saver.Status() != SaveSaving {
		t.Fatalf("expected saving, got %s", saver.Status())
	}
	saver.Flush()

	if diff := cmp.Diff([]string{"b"}, saved); diff != "" {
		t.Fatalf("writes mismatch (-want +got):\n%s", diff)
	}
	if saver.Status() != SaveSuccess {
		t.Fatalf("expected success, got %s", saver.Status())
	}
	events := capture.Events()
	if len(events) != 1 || events[0].Message != MessageSaveSucceeded {
		t.Fatalf("unexpected notifications %+v", events)
	}
}

func TestManualSaverReportsFailure(t *testing.T) {
	boom := errors.New("boom")
	var statuses []SaveStatus
	saver := NewManualSaver(funcSaver(func(context.Context, model.FormState) error { return boom }),
		WithManualWindow(time.Hour),
		WithManualLogger(quietLogger()),
		WithStatusHook(func(s SaveStatus) { statuses = append(statuses, s) }),
	)
	defer saver.Close()

	saver.Save(model.Empty())
	saver.Flush()

	if saver.Status() != SaveFailed || !errors.Is(saver.Err(), boom) {
		t.Fatalf("expected failed status with error, got %s / %v", saver.Status(), saver.Err())
	}
	if diff := cmp.Diff([]SaveStatus{SaveSaving, SaveFailed}, statuses); diff != "" {
		t.Fatalf("status sequence mismatch (-want +got):\n%s", diff)
	}
}

type actionLog struct {
	mu      sync.Mutex
	actions []Action
	done    chan struct{}
}

func (l *actionLog) Dispatch(_ context.Context, a Action) model.FormState {
	l.mu.Lock()
	l.actions = append(l.actions, a)
	n := len(l.actions)
	l.mu.Unlock()
	if n == 2 && l.done != nil {
		close(l.done)
	}
	return model.FormState{}
}

func TestQuestionSaverTogglesSavingFlag(t *testing.T) {
	log := &actionLog{done: make(chan struct{})}
	saver := NewQuestionSaver(log, 10*time.Millisecond, 10*time.Millisecond)
	defer saver.Close()

	saver.Touch("q1")
	saver.Touch("q1")
	saver.Touch("q1")

	select {
	case <-log.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("saving indicator never finished")
	}
	time.Sleep(30 * time.Millisecond)

	log.mu.Lock()
	defer log.mu.Unlock()
	want := []Action{StartSaving{ID: "q1"}, FinishSaving{ID: "q1"}}
	if diff := cmp.Diff(want, log.actions); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestQuestionSaverCloseStopsTimers(t *testing.T) {
	log := &actionLog{}
	saver := NewQuestionSaver(log, 10*time.Millisecond, 10*time.Millisecond)
	saver.Touch("q1")
	saver.Close()
	saver.Touch("q2")
	time.Sleep(40 * time.Millisecond)

	log.mu.Lock()
	defer log.mu.Unlock()
	if len(log.actions) != 0 {
		t.Fatalf("expected no actions after close, got %+v", log.actions)
	}
}

func TestManualSaverCancelDropsPendingSave(t *testing.T) {
	var writes int
	saver := NewManualSaver(funcSaver(func(context.Context, model.FormState) error {
		writes++
		return nil
	}), WithManualWindow(time.Hour), WithManualLogger(quietLogger()))
	defer saver.Close()

	saver.Save(model.FormState{FormName: "draft"})
	saver.Cancel()
	if saver.Flush() {
		t.Fatalf("expected nothing left to flush after cancel")
	}
	if writes != 0 {
		t.Fatalf("expected no writes, got %d", writes)
	}
	if saver.Status() != SaveIdle {
		t.Fatalf("expected idle after cancel, got %s", saver.Status())
	}
}

func TestManualSaverCancelSkipsSaveAlreadyFiring(t *testing.T) {
	var writes int
	saver := NewManualSaver(funcSaver(func(context.Context, model.FormState) error {
		writes++
		return nil
	}), WithManualWindow(time.Hour), WithManualLogger(quietLogger()))
	defer saver.Close()

	saver.mu.Lock()
	gen := saver.gen
	saver.mu.Unlock()
	saver.Cancel()
	saver.run(context.Background(), model.FormState{FormName: "draft"}, gen)

	if writes != 0 {
		t.Fatalf("expected the stale save to be skipped, got %d writes", writes)
	}
}

func TestQuestionSaverDropsFinishedQuestions(t *testing.T) {
	log := &actionLog{done: make(chan struct{})}
	saver := NewQuestionSaver(log, 10*time.Millisecond, 10*time.Millisecond)
	defer saver.Close()

	saver.Touch("q1")
	select {
	case <-log.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("saving indicator never finished")
	}

	saver.mu.Lock()
	defer saver.mu.Unlock()
	if len(saver.pending) != 0 || len(saver.finishes) != 0 {
		t.Fatalf("expected no timers left, got %d pending and %d finishing", len(saver.pending), len(saver.finishes))
	}
}

func TestQuestionSaverForgetAndReset(t *testing.T) {
	log := &actionLog{}
	saver := NewQuestionSaver(log, 10*time.Millisecond, 10*time.Millisecond)
	defer saver.Close()

	saver.Touch("q1")
	saver.Touch("q2")
	saver.Forget("q1")
	saver.Reset()
	saver.Touch("q3")
	saver.Forget("q3")
	time.Sleep(40 * time.Millisecond)

	log.mu.Lock()
	defer log.mu.Unlock()
	if len(log.actions) != 0 {
		t.Fatalf("expected no actions for forgotten questions, got %+v", log.actions)
	}
	saver.mu.Lock()
	defer saver.mu.Unlock()
	if len(saver.pending) != 0 || len(saver.finishes) != 0 {
		t.Fatalf("expected empty timer maps, got %d pending and %d finishing", len(saver.pending), len(saver.finishes))
	}
}
