package domain

import "fmt"

// RunStatus — статус выполнения run.
//
// Жизненный цикл:
//
//	in_progress → success
//	            ↘ failure
//
// Закрытое перечисление: одни и те же значения хранятся в БД
// и отдаются наружу (API, push-уведомления). Любое другое значение
// отклоняется на границе через ParseRunStatus.
type RunStatus string

const (
	// RunStatusInProgress — run создан и считается выполняющимся.
	// Создание run в этом статусе — это и есть "захват" автоматизации.
	RunStatusInProgress RunStatus = "in_progress"

	// RunStatusSuccess — run успешно завершён.
	RunStatusSuccess RunStatus = "success"

	// RunStatusFailure — run завершился с ошибкой.
	RunStatusFailure RunStatus = "failure"
)

// IsTerminal возвращает true, если статус финальный.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSuccess, RunStatusFailure:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление RunStatus.
func (s RunStatus) String() string {
	return string(s)
}

// ParseRunStatus парсит строку в RunStatus.
// Неизвестные значения отклоняются с ErrUnknownRunStatus —
// статусы не приводятся молча к значению по умолчанию.
func ParseRunStatus(s string) (RunStatus, error) {
	switch s {
	case string(RunStatusInProgress):
		return RunStatusInProgress, nil
	case string(RunStatusSuccess):
		return RunStatusSuccess, nil
	case string(RunStatusFailure):
		return RunStatusFailure, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRunStatus, s)
	}
}

// ParseTerminalRunStatus парсит строку в терминальный RunStatus.
// Используется на границе финализации: in_progress там не имеет смысла.
func ParseTerminalRunStatus(s string) (RunStatus, error) {
	status, err := ParseRunStatus(s)
	if err != nil {
		return "", err
	}
	if !status.IsTerminal() {
		return "", fmt.Errorf("%w: %q is not terminal", ErrUnknownRunStatus, s)
	}
	return status, nil
}
