// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go            — Handler с DI (репозитории, publisher, logger)
//   - routes.go             — регистрация маршрутов
//   - middleware.go         — middleware (logging, recovery)
//   - response.go           — унифицированные JSON-ответы и обработка ошибок
//   - dto.go                — Data Transfer Objects (request/response)
//   - automation_handler.go — обработчики для /automations
//   - run_handler.go        — обработчики для /runs
//   - token_handler.go      — обработчики для /device-tokens
//
// Аутентификация живёт выше по стеку; пользователь приходит
// в заголовке X-User-ID. Чужие ресурсы неотличимы от несуществующих.
package api
