package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Pulse/internal/domain"
)

// AutomationRepo — репозиторий автоматизаций.
type AutomationRepo struct {
	pool *pgxpool.Pool
}

// NewAutomationRepo создаёт новый AutomationRepo.
func NewAutomationRepo(pool *pgxpool.Pool) *AutomationRepo {
	return &AutomationRepo{pool: pool}
}

const automationColumns = `id, user_id, name, goal, active, is_recurring, cron_schedule,
       last_run_status, last_run_at, created_at, updated_at`

// Create создаёт новую автоматизацию.
// Инвариант расписания (is_recurring ⇔ cron_schedule) проверяет вызывающий
// через domain.Automation.Validate.
func (r *AutomationRepo) Create(ctx context.Context, auto *domain.Automation) error {
	query := `
		INSERT INTO automations (id, user_id, name, goal, active, is_recurring, cron_schedule, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		auto.ID,
		auto.UserID,
		auto.Name,
		auto.Goal,
		auto.Active,
		auto.IsRecurring,
		nullString(auto.CronSchedule),
		auto.CreatedAt,
		auto.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert automation: %w", err)
	}
	return nil
}

// GetByID возвращает автоматизацию по ID.
func (r *AutomationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Automation, error) {
	query := `SELECT ` + automationColumns + ` FROM automations WHERE id = $1`
	return scanAutomation(r.pool.QueryRow(ctx, query, id))
}

// ListByUser возвращает автоматизации пользователя с пагинацией.
func (r *AutomationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Automation, error) {
	query := `
		SELECT ` + automationColumns + `
		FROM automations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list automations: %w", err)
	}
	defer rows.Close()

	return collectAutomations(rows)
}

// ListActiveRecurring возвращает кандидатов для scheduler beat:
// active=true, is_recurring=true. Проверку "due" по cron-выражению
// делает сам планировщик — в SQL её не выразить.
func (r *AutomationRepo) ListActiveRecurring(ctx context.Context, limit int) ([]domain.Automation, error) {
	query := `
		SELECT ` + automationColumns + `
		FROM automations
		WHERE active = true AND is_recurring = true
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list active recurring automations: %w", err)
	}
	defer rows.Close()

	return collectAutomations(rows)
}

// Update обновляет изменяемые поля автоматизации.
func (r *AutomationRepo) Update(ctx context.Context, auto *domain.Automation) error {
	query := `
		UPDATE automations
		SET name = $2, goal = $3, active = $4, is_recurring = $5,
		    cron_schedule = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		auto.ID,
		auto.Name,
		auto.Goal,
		auto.Active,
		auto.IsRecurring,
		nullString(auto.CronSchedule),
		auto.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update automation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет автоматизацию.
// Административная операция, ядро планировщика автоматизации не удаляет.
func (r *AutomationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM automations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete automation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Helpers ---

// scanAutomation сканирует одну строку в Automation.
func scanAutomation(row pgx.Row) (*domain.Automation, error) {
	var auto domain.Automation
	var cronSchedule *string
	var lastRunStatus *string

	err := row.Scan(
		&auto.ID,
		&auto.UserID,
		&auto.Name,
		&auto.Goal,
		&auto.Active,
		&auto.IsRecurring,
		&cronSchedule,
		&lastRunStatus,
		&auto.LastRunAt,
		&auto.CreatedAt,
		&auto.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan automation: %w", err)
	}

	if cronSchedule != nil {
		auto.CronSchedule = *cronSchedule
	}
	if lastRunStatus != nil {
		status := domain.RunStatus(*lastRunStatus)
		auto.LastRunStatus = &status
	}

	return &auto, nil
}

// collectAutomations сканирует все строки результата.
func collectAutomations(rows pgx.Rows) ([]domain.Automation, error) {
	var autos []domain.Automation
	for rows.Next() {
		auto, err := scanAutomation(rows)
		if err != nil {
			return nil, err
		}
		autos = append(autos, *auto)
	}
	return autos, rows.Err()
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
