package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/mq"
	"github.com/shaiso/Pulse/internal/repo"
	"github.com/shaiso/Pulse/internal/telemetry"
)

// maxDiagnosticLen ограничивает диагностику, попадающую в run.message.
const maxDiagnosticLen = 500

// handleRunCreated обрабатывает событие о новом run из очереди runs.created.
func (w *Worker) handleRunCreated(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.RunCreatedPayload](&delivery.Message)
	if err != nil {
		w.logger.Error("failed to parse run.created payload", "error", err)
		return err
	}

	w.logger.Debug("received run.created event", "run_id", payload.RunID)

	if err := w.processRun(ctx, payload.RunID); err != nil {
		// Ожидаемые ситуации — не возвращаем ошибку (ack)
		if errors.Is(err, ErrRunNotFound) || errors.Is(err, ErrRunFinished) {
			w.logger.Debug("run not processed", "run_id", payload.RunID, "reason", err)
			return nil
		}
		w.logger.Error("failed to process run", "run_id", payload.RunID, "error", err)
		return err
	}

	return nil
}

// processRun загружает run из БД, выполняет автоматизацию и финализирует run.
func (w *Worker) processRun(ctx context.Context, runID uuid.UUID) error {
	run, err := w.runs.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return fmt.Errorf("get run: %w", err)
	}

	// Повторная доставка уже обработанного run: финализация не
	// идемпотентна, второй раз выполнять нельзя.
	if run.IsFinished() {
		return fmt.Errorf("%w: %s is %s", ErrRunFinished, runID, run.Status)
	}

	logger := telemetry.WithRunID(w.logger, runID.String())
	logger = telemetry.WithAutomationID(logger, run.AutomationID.String())

	auto, err := w.automations.GetByID(ctx, run.AutomationID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Автоматизацию удалили между созданием run и его выполнением
			logger.Warn("automation gone, failing run")
			return w.finalize(ctx, logger, nil, runID,
				domain.RunStatusFailure, "automation no longer exists", nil, nil)
		}
		return fmt.Errorf("get automation: %w", err)
	}

	logger.Info("run started", "automation", auto.Name, "user_id", auto.UserID)

	output, execErr := w.execute(ctx, auto, runID)

	status := domain.RunStatusFailure
	var message string
	var logs map[string]any
	var artifactIDs []uuid.UUID

	switch {
	case execErr != nil:
		message = truncate(execErr.Error(), maxDiagnosticLen)
		logger.Warn("run execution failed", "error", execErr)

	default:
		parsed, perr := domain.ParseTerminalRunStatus(output.Status)
		if perr != nil {
			message = truncate(fmt.Sprintf("executor returned invalid status %q: %s", output.Status, output.Message), maxDiagnosticLen)
			logger.Warn("executor returned invalid status", "status", output.Status)
			break
		}
		status = parsed
		message = output.Message
		logs = output.Logs
		artifactIDs = output.ArtifactIDs
	}

	return w.finalize(ctx, logger, auto, runID, status, message, logs, artifactIDs)
}

// execute вызывает Executor, превращая панику в обычную ошибку.
// Паника одного run не должна ронять воркер и остальные доставки.
func (w *Worker) execute(ctx context.Context, auto *domain.Automation, runID uuid.UUID) (output *Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = fmt.Errorf("executor panic: %v", r)
		}
	}()

	return w.executor.Execute(ctx, auto, runID)
}

// finalize записывает терминальный статус и уведомляет владельца.
//
// Ошибка финализации — фатальная несогласованность: run останется
// in_progress навсегда. Логируем и ack'аем — повторное выполнение
// продублировало бы side effects автоматизации.
func (w *Worker) finalize(
	ctx context.Context,
	logger *slog.Logger,
	auto *domain.Automation,
	runID uuid.UUID,
	status domain.RunStatus,
	message string,
	logs map[string]any,
	artifactIDs []uuid.UUID,
) error {
	run, err := w.runs.FinalizeRun(ctx, runID, status, message, logs, artifactIDs)
	if err != nil {
		telemetry.FinalizeFailures.Inc()
		logger.Error("failed to finalize run, run left in_progress",
			"status", status,
			"error", err,
		)
		return nil
	}

	telemetry.RunsFinalized.WithLabelValues(string(status)).Inc()
	logger.Info("run finalized",
		"status", status,
		"duration", run.Duration(),
		"artifacts", len(artifactIDs),
	)

	w.notify(ctx, auto, run)
	return nil
}

// notify отправляет владельцу push об исходе run.
// Доставка best-effort: Notifier глотает собственные ошибки.
func (w *Worker) notify(ctx context.Context, auto *domain.Automation, run *domain.Run) {
	if w.notifier == nil || auto == nil {
		return
	}

	title := auto.Name
	body := "Run completed successfully"
	if run.Status == domain.RunStatusFailure {
		body = "Run failed"
		if run.Message != "" {
			body = "Run failed: " + truncate(run.Message, 120)
		}
	}

	w.notifier.NotifyUser(ctx, auto.UserID, title, body, map[string]string{
		"automation_id": auto.ID.String(),
		"run_id":        run.ID.String(),
		"status":        string(run.Status),
	})
}
