// Package worker реализует выполнение runs автоматизаций.
//
// Worker потребляет run id из очереди runs.created, выполняет
// автоматизацию через Executor (по умолчанию — внешний agent-сервис),
// финализирует run терминальным статусом и уведомляет владельца.
//
// Run рождается в статусе in_progress и тем самым уже "захвачен":
// отдельного claim-шага нет, очередь доставляет каждый run одному
// воркеру. Любой исход выполнения, включая панику executor'а,
// сводится к финализации failure с диагностикой.
package worker
