package push

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/telemetry"
)

// defaultSendTimeout ограничивает блокировку на сетевом вызове провайдера.
const defaultSendTimeout = 10 * time.Second

// TokenStore — доступ Dispatcher'а к реестру токенов.
type TokenStore interface {
	ListForUser(ctx context.Context, userID string) ([]domain.DeviceToken, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Dispatcher рассылает уведомления по всем устройствам пользователя
// и выселяет мёртвые токены по исходам провайдера.
//
// Вызывается после финализации run, вне её транзакции: отправка может
// блокироваться на сети и не должна держать открытой транзакцию БД.
type Dispatcher struct {
	tokens   TokenStore
	provider Provider
	logger   *slog.Logger
	timeout  time.Duration
}

// DispatcherConfig — конфигурация Dispatcher.
type DispatcherConfig struct {
	Tokens   TokenStore
	Provider Provider
	Logger   *slog.Logger
	Timeout  time.Duration // таймаут batch-отправки (default: 10s)
}

// NewDispatcher создаёт новый Dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		tokens:   cfg.Tokens,
		provider: cfg.Provider,
		logger:   logger,
		timeout:  timeout,
	}
}

// NotifyUser отправляет уведомление на все токены пользователя.
//
// Не возвращает ошибку: любой сбой (реестр, провайдер, выселение)
// логируется и глотается — доставка best-effort и не вправе провалить
// вызвавшую её бизнес-операцию. Транзиентные сбои отдельных токенов
// не ретраятся; следующая нотификация попробует снова.
func (d *Dispatcher) NotifyUser(ctx context.Context, userID, title, body string, data map[string]string) {
	tokens, err := d.tokens.ListForUser(ctx, userID)
	if err != nil {
		d.logger.Error("notify: failed to list tokens", "user_id", userID, "error", err)
		return
	}

	if len(tokens) == 0 {
		d.logger.Info("notify: user has no registered devices", "user_id", userID)
		return
	}

	tokenValues := make([]string, len(tokens))
	for i, t := range tokens {
		tokenValues[i] = t.Token
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	results, err := d.provider.SendToTokens(sendCtx, &Notification{
		Title: title,
		Body:  body,
		Data:  data,
	}, tokenValues)
	if err != nil {
		telemetry.NotificationsSent.WithLabelValues("error").Inc()
		d.logger.Error("notify: provider send failed", "user_id", userID, "error", err)
		return
	}

	var success, transient int
	for i, res := range results {
		if i >= len(tokens) {
			// Провайдер обязан возвращать исход на каждый токен;
			// расхождение — его баг, не повод паниковать
			break
		}

		switch {
		case res.OK:
			success++
		case res.Code.PermanentInvalid():
			d.evictToken(ctx, &tokens[i], res)
		default:
			transient++
			d.logger.Debug("notify: transient send failure, token kept",
				"token_id", tokens[i].ID,
				"code", res.Code,
				"error", res.Err,
			)
		}
	}

	telemetry.NotificationsSent.WithLabelValues("ok").Inc()
	d.logger.Info("notify: dispatched",
		"user_id", userID,
		"devices", len(tokens),
		"success", success,
		"transient_failures", transient,
	)
}

// evictToken удаляет мёртвый токен из реестра.
func (d *Dispatcher) evictToken(ctx context.Context, token *domain.DeviceToken, res SendResult) {
	d.logger.Warn("notify: evicting stale token",
		"token_id", token.ID,
		"user_id", token.UserID,
		"device_type", token.DeviceType,
		"code", res.Code,
		"error", res.Err,
	)

	if err := d.tokens.Delete(ctx, token.ID); err != nil {
		d.logger.Error("notify: failed to evict stale token",
			"token_id", token.ID,
			"error", err,
		)
		return
	}
	telemetry.StaleTokensEvicted.Inc()
}
