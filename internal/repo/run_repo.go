package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Pulse/internal/domain"
)

// RunRepo — Run Store: создание и финализация runs плюс денормализация
// last_run_status/last_run_at на родительскую автоматизацию.
//
// CreateRun и FinalizeRun — единственные операции, требующие атомарности
// нескольких строк; каждая выполняется в одной транзакции (read committed).
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// CreateRun создаёт run в статусе in_progress и помечает автоматизацию
// запущенной. Это и есть примитив "захвата": вызывающие трактуют
// "run создан" как "автоматизация занята".
//
// Взаимное исключение конкурентных CreateRun для одной автоматизации
// намеренно не обеспечивается: два одновременных ручных запуска могут
// оба успеть (известная и принятая слабость, см. DESIGN.md).
//
// Транзакция коммитится здесь же — вызывающий публикует run id в очередь
// только после возврата, поэтому задача никогда не ссылается на
// откаченную строку.
func (r *RunRepo) CreateRun(ctx context.Context, automationID uuid.UUID) (*domain.Run, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Родительская автоматизация обязана существовать
	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM automations WHERE id = $1)`, automationID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check automation: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("automation %s: %w", automationID, ErrNotFound)
	}

	now := time.Now().UTC()
	run := &domain.Run{
		ID:           uuid.New(),
		AutomationID: automationID,
		Status:       domain.RunStatusInProgress,
		StartedAt:    now,
		Message:      "",
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO runs (id, automation_id, status, started_at, message)
		VALUES ($1, $2, $3, $4, $5)
	`, run.ID, run.AutomationID, run.Status, run.StartedAt, run.Message)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE automations SET last_run_status = $2, last_run_at = $3, updated_at = $3
		WHERE id = $1
	`, automationID, domain.RunStatusInProgress, now)
	if err != nil {
		return nil, fmt.Errorf("update automation last run: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return run, nil
}

// FinalizeRun переводит run в терминальный статус, прикрепляет артефакты
// и проставляет терминальный статус на автоматизацию.
//
// Артефакты: прикрепляются только ещё не прикреплённые; все новые
// резолвятся против каталога (ErrNotFound со списком всех ненайденных id)
// и проверяются на владельца (ErrOwnershipViolation); прикрепление —
// всё или ничего. logs=nil означает "без изменений".
//
// НЕ идемпотентна: повторный вызов безусловно перезапишет
// status/message/finished_at. Вызывающий финализирует run не более
// одного раза (политика retry на границе очереди обязана это учитывать).
func (r *RunRepo) FinalizeRun(
	ctx context.Context,
	runID uuid.UUID,
	status domain.RunStatus,
	message string,
	logs map[string]any,
	artifactIDs []uuid.UUID,
) (*domain.Run, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("%w: finalize requires a terminal status, got %q", domain.ErrUnknownRunStatus, status)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	run, ownerID, err := getRunWithOwner(ctx, tx, runID)
	if err != nil {
		return nil, err
	}

	attached, err := listAttachedArtifacts(ctx, tx, runID)
	if err != nil {
		return nil, err
	}

	if artifactIDs != nil {
		newIDs := newArtifactIDs(artifactIDs, attached)
		if len(newIDs) > 0 {
			artifacts, err := resolveArtifacts(ctx, tx, newIDs)
			if err != nil {
				return nil, err
			}
			if err := checkArtifactOwnership(artifacts, ownerID); err != nil {
				return nil, err
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO run_artifacts (run_id, artifact_id)
				SELECT $1, unnest($2::uuid[])
			`, runID, newIDs)
			if err != nil {
				return nil, fmt.Errorf("attach artifacts: %w", err)
			}
			attached = append(attached, newIDs...)
		}
	}

	now := time.Now().UTC()
	run.Finalize(status, message, logs, now)
	run.ArtifactIDs = attached

	var logsJSON []byte
	if logs != nil {
		logsJSON, err = json.Marshal(logs)
		if err != nil {
			return nil, fmt.Errorf("marshal logs: %w", err)
		}
	}

	// COALESCE сохраняет прежние logs при logs=nil ("без изменений",
	// а не "очистить")
	_, err = tx.Exec(ctx, `
		UPDATE runs
		SET status = $2, message = $3, finished_at = $4, logs = COALESCE($5, logs)
		WHERE id = $1
	`, runID, run.Status, run.Message, run.FinishedAt, logsJSON)
	if err != nil {
		return nil, fmt.Errorf("update run: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE automations SET last_run_status = $2, last_run_at = $3, updated_at = $3
		WHERE id = $1
	`, run.AutomationID, run.Status, now)
	if err != nil {
		return nil, fmt.Errorf("update automation last run: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return run, nil
}

// GetByID возвращает run по ID вместе с прикреплёнными артефактами.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	query := `
		SELECT id, automation_id, status, started_at, finished_at, message, logs
		FROM runs
		WHERE id = $1
	`
	run, err := scanRun(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT artifact_id FROM run_artifacts WHERE run_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("list run artifacts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var artifactID uuid.UUID
		if err := rows.Scan(&artifactID); err != nil {
			return nil, fmt.Errorf("scan artifact id: %w", err)
		}
		run.ArtifactIDs = append(run.ArtifactIDs, artifactID)
	}
	return run, rows.Err()
}

// RunFilter — параметры фильтрации runs.
type RunFilter struct {
	AutomationID *uuid.UUID
	Status       domain.RunStatus
	Limit        int
	Offset       int
}

// List возвращает runs с фильтрацией, новые первыми.
func (r *RunRepo) List(ctx context.Context, filter RunFilter) ([]domain.Run, error) {
	query := `
		SELECT id, automation_id, status, started_at, finished_at, message, logs
		FROM runs
		WHERE ($1::uuid IS NULL OR automation_id = $1)
		  AND ($2::text IS NULL OR status = $2::run_status)
		ORDER BY started_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullUUID(filter.AutomationID),
		nullString(string(filter.Status)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// --- Helpers ---

// getRunWithOwner загружает run и владельца его автоматизации.
func getRunWithOwner(ctx context.Context, tx pgx.Tx, runID uuid.UUID) (*domain.Run, string, error) {
	query := `
		SELECT r.id, r.automation_id, r.status, r.started_at, r.finished_at, r.message, r.logs,
		       a.user_id
		FROM runs r
		JOIN automations a ON a.id = r.automation_id
		WHERE r.id = $1
	`
	var run domain.Run
	var logsJSON []byte
	var ownerID string

	err := tx.QueryRow(ctx, query, runID).Scan(
		&run.ID,
		&run.AutomationID,
		&run.Status,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Message,
		&logsJSON,
		&ownerID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("get run: %w", err)
	}

	if logsJSON != nil {
		if err := json.Unmarshal(logsJSON, &run.Logs); err != nil {
			return nil, "", fmt.Errorf("unmarshal logs: %w", err)
		}
	}
	return &run, ownerID, nil
}

// listAttachedArtifacts возвращает уже прикреплённые артефакты run'а.
func listAttachedArtifacts(ctx context.Context, tx pgx.Tx, runID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx, `SELECT artifact_id FROM run_artifacts WHERE run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("list attached artifacts: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan artifact id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// resolveArtifacts резолвит id против каталога артефактов.
// Если хотя бы один не найден — ErrNotFound со списком всех ненайденных.
func resolveArtifacts(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]domain.Artifact, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, user_id, name, created_at FROM artifacts WHERE id = ANY($1::uuid[])
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []domain.Artifact
	for rows.Next() {
		var a domain.Artifact
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if missing := missingArtifactIDs(ids, artifacts); len(missing) > 0 {
		return nil, fmt.Errorf("artifacts not found %v: %w", missing, ErrNotFound)
	}
	return artifacts, nil
}

// newArtifactIDs возвращает поднабор requested, который ещё не прикреплён.
// Дубликаты в requested схлопываются — артефакт прикрепляется не более
// одного раза.
func newArtifactIDs(requested, attached []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(attached))
	for _, id := range attached {
		seen[id] = true
	}

	var fresh []uuid.UUID
	for _, id := range requested {
		if seen[id] {
			continue
		}
		seen[id] = true
		fresh = append(fresh, id)
	}
	return fresh
}

// missingArtifactIDs возвращает id из requested, отсутствующие в resolved.
func missingArtifactIDs(requested []uuid.UUID, resolved []domain.Artifact) []uuid.UUID {
	found := make(map[uuid.UUID]bool, len(resolved))
	for _, a := range resolved {
		found[a.ID] = true
	}

	var missing []uuid.UUID
	for _, id := range requested {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

// checkArtifactOwnership проверяет, что все артефакты принадлежат
// владельцу автоматизации run'а.
func checkArtifactOwnership(artifacts []domain.Artifact, ownerID string) error {
	for _, a := range artifacts {
		if a.UserID != ownerID {
			return fmt.Errorf("artifact %s does not belong to the automation owner: %w", a.ID, ErrOwnershipViolation)
		}
	}
	return nil
}

// scanRun сканирует одну строку в Run.
func scanRun(row pgx.Row) (*domain.Run, error) {
	var run domain.Run
	var logsJSON []byte

	err := row.Scan(
		&run.ID,
		&run.AutomationID,
		&run.Status,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Message,
		&logsJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if logsJSON != nil {
		if err := json.Unmarshal(logsJSON, &run.Logs); err != nil {
			return nil, fmt.Errorf("unmarshal logs: %w", err)
		}
	}
	return &run, nil
}

// nullUUID возвращает nil для пустого UUID.
func nullUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}
