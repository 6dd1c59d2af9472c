package push

import "context"

// Notification — содержимое push-уведомления.
type Notification struct {
	// Title — заголовок.
	Title string

	// Body — текст.
	Body string

	// Data — произвольные пары ключ-значение для приложения-получателя.
	Data map[string]string

	// Icon — иконка для web push.
	Icon string
}

// ErrorCode — классификация неуспешного исхода отправки на один токен.
type ErrorCode string

const (
	// ErrorCodeUnregistered — токен отозван провайдером (приложение удалено).
	ErrorCodeUnregistered ErrorCode = "unregistered"

	// ErrorCodeInvalidToken — токен синтаксически некорректен.
	ErrorCodeInvalidToken ErrorCode = "invalid_token"

	// ErrorCodeNotFound — провайдер не знает такой токен.
	ErrorCodeNotFound ErrorCode = "not_found"

	// ErrorCodeTransient — временный сбой (rate limit, недоступность).
	// Токен жив, повторная отправка уместна.
	ErrorCodeTransient ErrorCode = "transient"
)

// PermanentInvalid возвращает true для кодов, означающих мёртвый токен.
// Такие токены подлежат выселению из реестра.
func (c ErrorCode) PermanentInvalid() bool {
	switch c {
	case ErrorCodeUnregistered, ErrorCodeInvalidToken, ErrorCodeNotFound:
		return true
	default:
		return false
	}
}

// SendResult — исход отправки на один токен.
// Список результатов позиционно выровнен со списком токенов запроса.
type SendResult struct {
	// OK — доставка принята провайдером.
	OK bool

	// Code — классификация ошибки (пусто при OK=true).
	Code ErrorCode

	// Err — исходная ошибка провайдера для логов.
	Err error
}

// Provider — внешний push-провайдер.
//
// Один вызов — один batch: уведомление уходит на все токены разом,
// исходы возвращаются по одному на токен в том же порядке.
type Provider interface {
	SendToTokens(ctx context.Context, n *Notification, tokens []string) ([]SendResult, error)
}
