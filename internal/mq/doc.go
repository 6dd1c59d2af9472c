// Package mq предоставляет инфраструктуру для работы с RabbitMQ —
// границей диспетчеризации выполнения runs.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - run.created — создан запирающий run, ожидает выполнения воркером
//
// Exchanges:
//   - pulse.runs — события runs
//   - pulse.dlq  — dead letter queue
//
// Гарантия доставки — at-least-once: воркер обязан переживать
// повторную доставку одного run id.
package mq
