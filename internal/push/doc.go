// Package push реализует best-effort доставку push-уведомлений.
//
// Dispatcher рассылает уведомление на все устройства пользователя одним
// batch-запросом к провайдеру и по позиционным исходам выселяет из
// реестра мёртвые токены (unregistered / invalid token / not found).
// Транзиентные сбои (rate limit, недоступность) токены не трогают и
// не ретраятся — следующая нотификация попробует снова.
//
// Контракт NotifyUser: никогда не возвращает ошибку наружу. Доставка
// уведомлений — best-effort и не вправе провалить бизнес-операцию
// (финализацию run), которая её вызвала.
//
// Структура:
//   - provider.go   — интерфейс провайдера и классификация исходов
//   - fcm.go        — реализация поверх Firebase Cloud Messaging
//   - dispatcher.go — Dispatcher (fan-out + выселение мёртвых токенов)
package push
