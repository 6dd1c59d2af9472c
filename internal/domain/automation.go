package domain

import (
	"time"

	"github.com/google/uuid"
)

// Automation — пользовательская автоматизация.
//
// Automation описывает ЧТО нужно сделать (goal) и КОГДА:
// - По расписанию: IsRecurring=true + CronSchedule
// - По запросу: пользователь запускает вручную через API/CLI
//
// Инвариант: IsRecurring=true ⇔ CronSchedule != "".
// Проверяется при создании и обновлении (ErrValidation).
type Automation struct {
	// ID — уникальный идентификатор автоматизации.
	ID uuid.UUID `json:"id"`

	// UserID — владелец автоматизации.
	UserID string `json:"user_id"`

	// Name — человекочитаемое имя (например, "утренняя сводка новостей").
	Name string `json:"name"`

	// Goal — текст задачи для executor'а.
	// Executor — внешний чёрный ящик, Pulse передаёт goal как есть.
	Goal string `json:"goal"`

	// Active — флаг активности. Неактивные автоматизации
	// игнорируются планировщиком.
	Active bool `json:"active"`

	// IsRecurring — запускается ли автоматизация по расписанию.
	IsRecurring bool `json:"is_recurring"`

	// CronSchedule — cron-выражение (5 полей).
	// Пустое для one-shot автоматизаций.
	CronSchedule string `json:"cron_schedule,omitempty"`

	// LastRunStatus — денормализованный статус последнего run.
	// Nil, если автоматизация ещё не запускалась.
	// Обновляется Run Store при создании и финализации run.
	LastRunStatus *RunStatus `json:"last_run_status,omitempty"`

	// LastRunAt — время последнего запуска (started_at при создании run,
	// finished_at после финализации).
	LastRunAt *time.Time `json:"last_run_at,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate проверяет инвариант расписания.
func (a *Automation) Validate() error {
	if a.IsRecurring && a.CronSchedule == "" {
		return ErrCronRequired
	}
	if !a.IsRecurring && a.CronSchedule != "" {
		return ErrCronForbidden
	}
	return nil
}

// RecordRunStarted денормализует факт запуска run на автоматизацию.
// Вызывается Run Store в той же транзакции, что и создание run.
func (a *Automation) RecordRunStarted(startedAt time.Time) {
	st := RunStatusInProgress
	a.LastRunStatus = &st
	a.LastRunAt = &startedAt
}

// RecordRunFinished денормализует терминальный статус run.
// Вызывается Run Store в той же транзакции, что и финализация run.
func (a *Automation) RecordRunFinished(status RunStatus, finishedAt time.Time) {
	a.LastRunStatus = &status
	a.LastRunAt = &finishedAt
}
