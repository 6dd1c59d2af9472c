package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/telemetry"
)

// AutomationLister отдаёт кандидатов для тика: active + recurring.
type AutomationLister interface {
	ListActiveRecurring(ctx context.Context, limit int) ([]domain.Automation, error)
}

// RunCreator создаёт запирающий run (commit внутри вызова).
type RunCreator interface {
	CreateRun(ctx context.Context, automationID uuid.UUID) (*domain.Run, error)
}

// RunPublisher отдаёт run id на границу диспетчеризации выполнения.
type RunPublisher interface {
	PublishRunCreated(ctx context.Context, runID uuid.UUID) error
}

// Beat — периодический "пульс" планировщика.
//
// Один логический актор: вызывается внешним таймером строго
// последовательно, один экземпляр на инсталляцию (гарантия оператора,
// ядро взаимное исключение реплик не обеспечивает).
type Beat struct {
	automations AutomationLister
	runs        RunCreator
	publisher   RunPublisher
	logger      *slog.Logger
	batchSize   int
}

// Config — конфигурация Beat.
type Config struct {
	Automations AutomationLister
	Runs        RunCreator
	Publisher   RunPublisher
	Logger      *slog.Logger
	BatchSize   int // количество автоматизаций за один тик (default: 100)
}

// New создаёт новый Beat.
func New(cfg Config) *Beat {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Beat{
		automations: cfg.Automations,
		runs:        cfg.Runs,
		publisher:   cfg.Publisher,
		logger:      logger,
		batchSize:   batchSize,
	}
}

// Tick выполняет один тик планировщика.
//
// 1. Загружает active recurring автоматизации
// 2. Для каждой проверяет due по cron-выражению против last_run_at
// 3. Для каждой due создаёт запирающий run (своя закоммиченная
//    транзакция) и только затем публикует run.created
//
// Run коммитится ДО публикации, и каждая автоматизация обрабатывается
// независимо: сбой одной не откатывает и не блокирует остальных, а
// опубликованный id никогда не ссылается на откаченную строку.
// Следующий тик безопасно пересчитает due с нуля — last_run_at
// неуспевших не продвинулся.
func (b *Beat) Tick(ctx context.Context) error {
	started := time.Now()
	defer func() {
		telemetry.BeatTickDuration.Observe(time.Since(started).Seconds())
	}()

	now := time.Now().UTC()

	candidates, err := b.automations.ListActiveRecurring(ctx, b.batchSize)
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		b.logger.Debug("beat: no recurring automations")
		return nil
	}

	var due, created int
	for i := range candidates {
		auto := &candidates[i]

		isDue, err := DueSince(auto.CronSchedule, auto.LastRunAt, now)
		if err != nil {
			// Некорректное выражение — пропускаем, не роняя тик
			b.logger.Error("beat: invalid cron schedule, skipping automation",
				"automation_id", auto.ID,
				"cron_schedule", auto.CronSchedule,
				"error", err,
			)
			continue
		}
		if !isDue {
			continue
		}
		due++

		if err := b.processAutomation(ctx, auto); err != nil {
			b.logger.Error("beat: failed to process due automation",
				"automation_id", auto.ID,
				"automation_name", auto.Name,
				"error", err,
			)
			continue
		}
		created++
	}

	b.logger.Info("beat: tick completed",
		"candidates", len(candidates),
		"due", due,
		"runs_created", created,
	)
	return nil
}

// processAutomation обрабатывает одну due автоматизацию.
func (b *Beat) processAutomation(ctx context.Context, auto *domain.Automation) error {
	run, err := b.runs.CreateRun(ctx, auto.ID)
	if err != nil {
		return err
	}

	b.logger.Info("beat: created run",
		"run_id", run.ID,
		"automation_id", auto.ID,
		"automation_name", auto.Name,
	)
	telemetry.RunsCreated.Inc()

	if b.publisher != nil {
		if err := b.publisher.PublishRunCreated(ctx, run.ID); err != nil {
			// Run уже закоммичен; доставка — забота границы очереди.
			// Застрявший in_progress run виден оператору через метрики и API.
			b.logger.Error("beat: failed to publish run.created",
				"run_id", run.ID,
				"error", err,
			)
		}
	}
	return nil
}
