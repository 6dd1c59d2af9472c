// Package scheduler реализует периодический "beat" планировщика.
//
// Beat находит due автоматизации (active, recurring, cron-срабатывание
// в (last_run_at, now]), создаёт для каждой запирающий run через Run Store
// и публикует run id в очередь выполнения.
//
// Структура:
//   - beat.go — основная логика (Tick, processAutomation)
//   - cron.go — парсинг cron-выражений и проверка due
//
// Использование:
//
//	beat := scheduler.New(scheduler.Config{
//	    Automations: automationRepo,
//	    Runs:        runRepo,
//	    Publisher:   publisher,  // опционально
//	    Logger:      logger,
//	})
//
//	// Вызывается внешним таймером (обычно раз в минуту)
//	if err := beat.Tick(ctx); err != nil {
//	    logger.Error("beat tick failed", "error", err)
//	}
//
// Ядро не обеспечивает взаимное исключение двух экземпляров Beat —
// оператор гарантирует один экземпляр на инсталляцию.
package scheduler
