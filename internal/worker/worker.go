package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/mq"
)

const defaultPrefetch = 5

// RunStore — доступ воркера к runs.
type RunStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	FinalizeRun(
		ctx context.Context,
		runID uuid.UUID,
		status domain.RunStatus,
		message string,
		logs map[string]any,
		artifactIDs []uuid.UUID,
	) (*domain.Run, error)
}

// AutomationStore — доступ воркера к автоматизациям.
type AutomationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Automation, error)
}

// Notifier отправляет push-уведомление владельцу автоматизации.
// Реализация обязана глотать собственные ошибки (best-effort доставка).
type Notifier interface {
	NotifyUser(ctx context.Context, userID, title, body string, data map[string]string)
}

// Worker выполняет runs автоматизаций.
//
// Worker — stateless компонент системы, который:
//   - Получает run id из очереди runs.created (event-driven)
//   - Загружает run и автоматизацию из БД
//   - Выполняет автоматизацию через Executor
//   - Финализирует run терминальным статусом
//   - Уведомляет владельца об исходе
//
// Workers масштабируются горизонтально — несколько экземпляров
// могут потреблять из одной очереди.
type Worker struct {
	runs        RunStore
	automations AutomationStore
	executor    Executor
	notifier    Notifier

	conn     *mq.Connection
	consumer *mq.Consumer
	prefetch int

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Worker.
type Config struct {
	Runs        RunStore
	Automations AutomationStore
	Executor    Executor
	Notifier    Notifier // опционально; если nil — уведомления не отправляются

	Conn *mq.Connection

	// Prefetch — количество сообщений в обработке одновременно (default: 5).
	Prefetch int

	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		runs:        cfg.Runs,
		automations: cfg.Automations,
		executor:    cfg.Executor,
		notifier:    cfg.Notifier,
		conn:        cfg.Conn,
		prefetch:    prefetch,
		logger:      logger,
	}
}

// Start запускает Worker.
func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("starting worker", "prefetch", w.prefetch)

	w.consumer = mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
		Queue:    string(mq.QueueRunsCreated),
		Handler:  w.handleRunCreated,
		Prefetch: w.prefetch,
	})

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("run consumer error", "error", err)
		}
	}()

	w.logger.Info("worker started")
	return nil
}

// Stop останавливает Worker.
func (w *Worker) Stop() {
	w.stoppedMu.Lock()
	w.stopped = true
	w.stoppedMu.Unlock()

	w.logger.Info("stopping worker...")

	if w.cancelFunc != nil {
		w.cancelFunc()
	}

	if w.consumer != nil {
		w.consumer.Stop()
	}

	w.wg.Wait()

	w.logger.Info("worker stopped")
}

// IsStopped проверяет, остановлен ли Worker.
func (w *Worker) IsStopped() bool {
	w.stoppedMu.RLock()
	defer w.stoppedMu.RUnlock()
	return w.stopped
}
