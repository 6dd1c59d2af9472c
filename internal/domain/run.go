package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run — одна попытка выполнения автоматизации.
//
// Run создаётся когда:
// - Scheduler beat находит due автоматизацию
// - Пользователь запускает автоматизацию вручную (через API/CLI)
//
// Run ссылается на автоматизацию только по ID — никаких живых
// обратных ссылок, связь восстанавливается запросом по требованию.
type Run struct {
	// ID — уникальный идентификатор run.
	ID uuid.UUID `json:"id"`

	// AutomationID — ссылка на автоматизацию.
	AutomationID uuid.UUID `json:"automation_id"`

	// Status — текущий статус выполнения.
	Status RunStatus `json:"status"`

	// StartedAt — время создания run (run рождается сразу in_progress).
	StartedAt time.Time `json:"started_at"`

	// FinishedAt — время завершения.
	// Инвариант: nil ⇔ статус не терминальный.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Message — итоговое сообщение executor'а.
	// Пустое, пока run выполняется.
	Message string `json:"message,omitempty"`

	// Logs — опциональный структурированный блоб с логами выполнения.
	// Pulse не интерпретирует содержимое.
	Logs map[string]any `json:"logs,omitempty"`

	// ArtifactIDs — множество артефактов, прикреплённых при финализации.
	// Пустое при создании. Порядок не значим.
	ArtifactIDs []uuid.UUID `json:"artifact_ids,omitempty"`
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если run ещё не завершён.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// IsFinished возвращает true, если run завершён.
func (r *Run) IsFinished() bool {
	return r.Status.IsTerminal()
}

// Finalize переводит run в терминальный статус.
//
// Намеренно НЕ идемпотентна и не защищает от повторного вызова:
// status/message/finished_at перезаписываются безусловно. Контракт
// вызывающего — финализировать run не более одного раза.
//
// logs=nil означает "без изменений", а не "очистить" — ранее
// сохранённые логи не затираются.
func (r *Run) Finalize(status RunStatus, message string, logs map[string]any, finishedAt time.Time) {
	r.Status = status
	r.Message = message
	r.FinishedAt = &finishedAt
	if logs != nil {
		r.Logs = logs
	}
}
