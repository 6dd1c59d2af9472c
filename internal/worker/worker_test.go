package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/repo"
)

// --- Fakes ---

type finalizeCall struct {
	runID       uuid.UUID
	status      domain.RunStatus
	message     string
	logs        map[string]any
	artifactIDs []uuid.UUID
}

type fakeRunStore struct {
	runs        map[uuid.UUID]*domain.Run
	getErr      error
	finalizeErr error
	finalized   []finalizeCall
}

func (f *fakeRunStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Run, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	run, ok := f.runs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return run, nil
}

func (f *fakeRunStore) FinalizeRun(
	_ context.Context,
	runID uuid.UUID,
	status domain.RunStatus,
	message string,
	logs map[string]any,
	artifactIDs []uuid.UUID,
) (*domain.Run, error) {
	if f.finalizeErr != nil {
		return nil, f.finalizeErr
	}
	f.finalized = append(f.finalized, finalizeCall{runID, status, message, logs, artifactIDs})

	run := f.runs[runID]
	now := time.Now().UTC()
	run.Finalize(status, message, logs, now)
	return run, nil
}

type fakeAutomationStore struct {
	automations map[uuid.UUID]*domain.Automation
}

func (f *fakeAutomationStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Automation, error) {
	auto, ok := f.automations[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return auto, nil
}

type fakeExecutor struct {
	output *Output
	err    error
	panics bool
	calls  int
}

func (f *fakeExecutor) Execute(_ context.Context, _ *domain.Automation, _ uuid.UUID) (*Output, error) {
	f.calls++
	if f.panics {
		panic("executor exploded")
	}
	return f.output, f.err
}

type notifyCall struct {
	userID string
	title  string
	body   string
	data   map[string]string
}

type fakeNotifier struct {
	calls []notifyCall
}

func (f *fakeNotifier) NotifyUser(_ context.Context, userID, title, body string, data map[string]string) {
	f.calls = append(f.calls, notifyCall{userID, title, body, data})
}

// --- Helpers ---

type fixture struct {
	worker   *Worker
	runs     *fakeRunStore
	executor *fakeExecutor
	notifier *fakeNotifier
	runID    uuid.UUID
	auto     *domain.Automation
}

func newFixture(executor *fakeExecutor) *fixture {
	autoID := uuid.New()
	runID := uuid.New()

	auto := &domain.Automation{
		ID:     autoID,
		UserID: "user-1",
		Name:   "daily digest",
		Goal:   "collect news",
		Active: true,
	}
	run := &domain.Run{
		ID:           runID,
		AutomationID: autoID,
		Status:       domain.RunStatusInProgress,
		StartedAt:    time.Now().UTC().Add(-time.Minute),
	}

	runs := &fakeRunStore{runs: map[uuid.UUID]*domain.Run{runID: run}}
	notifier := &fakeNotifier{}

	w := New(Config{
		Runs:        runs,
		Automations: &fakeAutomationStore{automations: map[uuid.UUID]*domain.Automation{autoID: auto}},
		Executor:    executor,
		Notifier:    notifier,
	})

	return &fixture{worker: w, runs: runs, executor: executor, notifier: notifier, runID: runID, auto: auto}
}

// --- Tests ---

func TestProcessRun_Success(t *testing.T) {
	artifactID := uuid.New()
	fx := newFixture(&fakeExecutor{output: &Output{
		Status:      "success",
		Message:     "done",
		Logs:        map[string]any{"steps": 3},
		ArtifactIDs: []uuid.UUID{artifactID},
	}})

	if err := fx.worker.processRun(context.Background(), fx.runID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fx.runs.finalized) != 1 {
		t.Fatalf("expected 1 finalize call, got %d", len(fx.runs.finalized))
	}
	call := fx.runs.finalized[0]
	if call.status != domain.RunStatusSuccess {
		t.Errorf("status = %s, want success", call.status)
	}
	if call.message != "done" {
		t.Errorf("message = %q", call.message)
	}
	if len(call.artifactIDs) != 1 || call.artifactIDs[0] != artifactID {
		t.Errorf("artifact ids not passed through: %v", call.artifactIDs)
	}

	if len(fx.notifier.calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(fx.notifier.calls))
	}
	n := fx.notifier.calls[0]
	if n.userID != "user-1" {
		t.Errorf("notified wrong user: %s", n.userID)
	}
	if n.title != "daily digest" {
		t.Errorf("title = %q", n.title)
	}
	if n.data["run_id"] != fx.runID.String() || n.data["status"] != "success" {
		t.Errorf("notification data = %v", n.data)
	}
}

func TestProcessRun_ExecutorErrorFinalizesFailure(t *testing.T) {
	fx := newFixture(&fakeExecutor{err: errors.New("agent unreachable")})

	if err := fx.worker.processRun(context.Background(), fx.runID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fx.runs.finalized) != 1 {
		t.Fatalf("expected finalize, got %d calls", len(fx.runs.finalized))
	}
	call := fx.runs.finalized[0]
	if call.status != domain.RunStatusFailure {
		t.Errorf("status = %s, want failure", call.status)
	}
	if !strings.Contains(call.message, "agent unreachable") {
		t.Errorf("diagnostic lost: %q", call.message)
	}

	if len(fx.notifier.calls) != 1 {
		t.Fatalf("failure should still notify")
	}
	if !strings.Contains(fx.notifier.calls[0].body, "failed") {
		t.Errorf("failure body = %q", fx.notifier.calls[0].body)
	}
}

// Диагностика длиннее лимита обрезается, а не кладётся в message целиком.
func TestProcessRun_TruncatesLongDiagnostic(t *testing.T) {
	fx := newFixture(&fakeExecutor{err: errors.New(strings.Repeat("x", 2000))})

	if err := fx.worker.processRun(context.Background(), fx.runID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := fx.runs.finalized[0].message
	if len(msg) > maxDiagnosticLen+3 {
		t.Errorf("diagnostic not truncated: %d chars", len(msg))
	}
	if !strings.HasSuffix(msg, "...") {
		t.Errorf("truncated diagnostic should end with ellipsis: %q", msg[len(msg)-10:])
	}
}

// Паника executor'а не роняет воркер и сводится к failure.
func TestProcessRun_ExecutorPanicFinalizesFailure(t *testing.T) {
	fx := newFixture(&fakeExecutor{panics: true})

	if err := fx.worker.processRun(context.Background(), fx.runID); err != nil {
		t.Fatalf("panic must not escape processRun: %v", err)
	}

	call := fx.runs.finalized[0]
	if call.status != domain.RunStatusFailure {
		t.Errorf("status = %s, want failure", call.status)
	}
	if !strings.Contains(call.message, "panic") {
		t.Errorf("diagnostic should mention panic: %q", call.message)
	}
}

// Неизвестный статус от executor'а — failure, а не запись как есть.
func TestProcessRun_InvalidStatusFinalizesFailure(t *testing.T) {
	fx := newFixture(&fakeExecutor{output: &Output{Status: "COMPLETED", Message: "ok"}})

	if err := fx.worker.processRun(context.Background(), fx.runID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := fx.runs.finalized[0]
	if call.status != domain.RunStatusFailure {
		t.Errorf("status = %s, want failure", call.status)
	}
	if !strings.Contains(call.message, "COMPLETED") {
		t.Errorf("diagnostic should name the bad status: %q", call.message)
	}
}

// in_progress не является терминальным и от executor'а не принимается.
func TestProcessRun_InProgressStatusRejected(t *testing.T) {
	fx := newFixture(&fakeExecutor{output: &Output{Status: "in_progress"}})

	if err := fx.worker.processRun(context.Background(), fx.runID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fx.runs.finalized[0].status != domain.RunStatusFailure {
		t.Errorf("non-terminal status must finalize as failure")
	}
}

func TestProcessRun_RunNotFound(t *testing.T) {
	fx := newFixture(&fakeExecutor{})

	err := fx.worker.processRun(context.Background(), uuid.New())
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if fx.executor.calls != 0 {
		t.Error("executor must not run for a missing run")
	}
}

// Повторная доставка финализированного run не перезапускает выполнение.
func TestProcessRun_FinishedRunSkipped(t *testing.T) {
	fx := newFixture(&fakeExecutor{})
	now := time.Now().UTC()
	fx.runs.runs[fx.runID].Finalize(domain.RunStatusSuccess, "done", nil, now)

	err := fx.worker.processRun(context.Background(), fx.runID)
	if !errors.Is(err, ErrRunFinished) {
		t.Fatalf("expected ErrRunFinished, got %v", err)
	}
	if fx.executor.calls != 0 {
		t.Error("executor must not run twice")
	}
	if len(fx.runs.finalized) != 0 {
		t.Error("finished run must not be finalized again")
	}
}

// Автоматизация удалена после создания run: run финализируется failure.
func TestProcessRun_MissingAutomationFailsRun(t *testing.T) {
	fx := newFixture(&fakeExecutor{})
	orphanID := uuid.New()
	fx.runs.runs[orphanID] = &domain.Run{
		ID:           orphanID,
		AutomationID: uuid.New(),
		Status:       domain.RunStatusInProgress,
		StartedAt:    time.Now().UTC(),
	}

	if err := fx.worker.processRun(context.Background(), orphanID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fx.runs.finalized) != 1 || fx.runs.finalized[0].status != domain.RunStatusFailure {
		t.Fatalf("orphan run should be finalized as failure: %+v", fx.runs.finalized)
	}
	if fx.executor.calls != 0 {
		t.Error("executor must not run without an automation")
	}
	if len(fx.notifier.calls) != 0 {
		t.Error("no owner to notify when the automation is gone")
	}
}

// Сбой финализации: фатальная несогласованность логируется, сообщение
// ack'ается — повторное выполнение продублировало бы side effects.
func TestProcessRun_FinalizeFailureAcked(t *testing.T) {
	fx := newFixture(&fakeExecutor{output: &Output{Status: "success"}})
	fx.runs.finalizeErr = errors.New("db down")

	if err := fx.worker.processRun(context.Background(), fx.runID); err != nil {
		t.Fatalf("finalize failure must be swallowed, got %v", err)
	}
	if len(fx.notifier.calls) != 0 {
		t.Error("must not notify about a run that was not finalized")
	}
}

// Транзиентная ошибка загрузки run возвращается наружу (nack → retry).
func TestProcessRun_TransientLoadErrorPropagates(t *testing.T) {
	fx := newFixture(&fakeExecutor{})
	fx.runs.getErr = errors.New("connection refused")

	if err := fx.worker.processRun(context.Background(), fx.runID); err == nil {
		t.Fatal("transient DB error should propagate for redelivery")
	}
}

func TestProcessRun_NilNotifierOK(t *testing.T) {
	fx := newFixture(&fakeExecutor{output: &Output{Status: "success"}})
	fx.worker.notifier = nil

	if err := fx.worker.processRun(context.Background(), fx.runID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
