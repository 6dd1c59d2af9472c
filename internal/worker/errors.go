package worker

import "errors"

// Ошибки воркера.
var (
	// ErrRunNotFound — run не найден в БД.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunFinished — run уже финализирован (повторная доставка).
	ErrRunFinished = errors.New("run already finished")

	// ErrAgentRequest — запрос к agent-сервису завершился ошибкой.
	ErrAgentRequest = errors.New("agent request failed")

	// ErrAgentResponse — agent-сервис вернул некорректный ответ.
	ErrAgentResponse = errors.New("invalid agent response")
)
