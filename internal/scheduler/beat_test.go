package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
)

// --- Fakes ---

type fakeLister struct {
	automations []domain.Automation
	err         error
}

func (f *fakeLister) ListActiveRecurring(_ context.Context, _ int) ([]domain.Automation, error) {
	return f.automations, f.err
}

type fakeRunCreator struct {
	created []uuid.UUID
	failFor map[uuid.UUID]error
}

func (f *fakeRunCreator) CreateRun(_ context.Context, automationID uuid.UUID) (*domain.Run, error) {
	if err, ok := f.failFor[automationID]; ok {
		return nil, err
	}
	f.created = append(f.created, automationID)
	return &domain.Run{
		ID:           uuid.New(),
		AutomationID: automationID,
		Status:       domain.RunStatusInProgress,
		StartedAt:    time.Now(),
	}, nil
}

type fakePublisher struct {
	published []uuid.UUID
	err       error
}

func (f *fakePublisher) PublishRunCreated(_ context.Context, runID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, runID)
	return nil
}

func recurring(last *time.Time) domain.Automation {
	return domain.Automation{
		ID:           uuid.New(),
		UserID:       "user-1",
		Name:         "news digest",
		Active:       true,
		IsRecurring:  true,
		CronSchedule: "0 * * * *",
		LastRunAt:    last,
	}
}

// --- Tests ---

func TestBeat_Tick_CreatesRunsForDueAutomations(t *testing.T) {
	twoHoursAgo := time.Now().Add(-2 * time.Hour)
	thirtySecondsAgo := time.Now().Add(-30 * time.Second)

	dueAuto := recurring(&twoHoursAgo)
	freshAuto := recurring(&thirtySecondsAgo)
	neverRan := recurring(nil)

	lister := &fakeLister{automations: []domain.Automation{dueAuto, freshAuto, neverRan}}
	creator := &fakeRunCreator{}
	publisher := &fakePublisher{}

	beat := New(Config{Automations: lister, Runs: creator, Publisher: publisher})

	if err := beat.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(creator.created) != 2 {
		t.Fatalf("expected 2 runs (due + never ran), got %d", len(creator.created))
	}
	if creator.created[0] != dueAuto.ID || creator.created[1] != neverRan.ID {
		t.Errorf("wrong automations locked: %v", creator.created)
	}
	if len(publisher.published) != 2 {
		t.Errorf("each created run should be published, got %d", len(publisher.published))
	}
}

// Сбой одной автоматизации не блокирует остальных в том же тике.
func TestBeat_Tick_IsolatesPerAutomationFailures(t *testing.T) {
	broken := recurring(nil)
	healthy := recurring(nil)

	creator := &fakeRunCreator{failFor: map[uuid.UUID]error{broken.ID: errors.New("db down")}}
	publisher := &fakePublisher{}
	beat := New(Config{
		Automations: &fakeLister{automations: []domain.Automation{broken, healthy}},
		Runs:        creator,
		Publisher:   publisher,
	})

	if err := beat.Tick(context.Background()); err != nil {
		t.Fatalf("tick should not fail on a single automation: %v", err)
	}

	if len(creator.created) != 1 || creator.created[0] != healthy.ID {
		t.Errorf("healthy automation should still get a run, created: %v", creator.created)
	}
}

// Некорректный cron пропускается, не роняя тик.
func TestBeat_Tick_SkipsMalformedCron(t *testing.T) {
	bad := recurring(nil)
	bad.CronSchedule = "garbage"
	good := recurring(nil)

	creator := &fakeRunCreator{}
	beat := New(Config{
		Automations: &fakeLister{automations: []domain.Automation{bad, good}},
		Runs:        creator,
		Publisher:   &fakePublisher{},
	})

	if err := beat.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(creator.created) != 1 || creator.created[0] != good.ID {
		t.Errorf("only the valid automation should run, created: %v", creator.created)
	}
}

// Ошибка публикации не откатывает созданный run и не валит тик:
// run уже закоммичен, доставка — забота границы очереди.
func TestBeat_Tick_PublishFailureDoesNotFailTick(t *testing.T) {
	auto := recurring(nil)
	creator := &fakeRunCreator{}
	beat := New(Config{
		Automations: &fakeLister{automations: []domain.Automation{auto}},
		Runs:        creator,
		Publisher:   &fakePublisher{err: errors.New("amqp closed")},
	})

	if err := beat.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(creator.created) != 1 {
		t.Errorf("run should be created despite publish failure")
	}
}

func TestBeat_Tick_ListError(t *testing.T) {
	beat := New(Config{
		Automations: &fakeLister{err: errors.New("db down")},
		Runs:        &fakeRunCreator{},
	})

	if err := beat.Tick(context.Background()); err == nil {
		t.Error("list failure should abort the tick")
	}
}

func TestBeat_Tick_NoPublisher(t *testing.T) {
	auto := recurring(nil)
	creator := &fakeRunCreator{}
	beat := New(Config{
		Automations: &fakeLister{automations: []domain.Automation{auto}},
		Runs:        creator,
	})

	if err := beat.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(creator.created) != 1 {
		t.Error("runs should be created even without a publisher")
	}
}
