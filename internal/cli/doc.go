// Package cli содержит команды pulse-cli.
//
// Структура:
//   - client.go     — HTTP-клиент для Pulse API
//   - output.go     — табличный и JSON вывод
//   - automation.go — команды automation (list/create/show/update/delete/run)
//   - run.go        — команды run (list/show/artifacts)
//   - token.go      — команды token (list/register/delete)
//
// CLI ходит в API по HTTP и не трогает БД напрямую.
package cli
