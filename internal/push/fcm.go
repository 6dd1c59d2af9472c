package push

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMProvider — Provider поверх Firebase Cloud Messaging.
//
// Firebase Admin SDK инициализируется лениво и ровно один раз на процесс
// (sync.Once переживает конкурентное первое использование). Явного
// teardown у SDK нет.
type FCMProvider struct {
	credentialsFile string
	logger          *slog.Logger

	once    sync.Once
	client  *messaging.Client
	initErr error
}

// NewFCMProvider создаёт FCMProvider.
// credentialsFile — путь к service account key; пустой — берётся из
// FIREBASE_CREDENTIALS.
func NewFCMProvider(credentialsFile string, logger *slog.Logger) *FCMProvider {
	if credentialsFile == "" {
		credentialsFile = os.Getenv("FIREBASE_CREDENTIALS")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FCMProvider{
		credentialsFile: credentialsFile,
		logger:          logger,
	}
}

// ensureClient инициализирует messaging-клиент при первом обращении.
func (p *FCMProvider) ensureClient(ctx context.Context) (*messaging.Client, error) {
	p.once.Do(func() {
		var opts []option.ClientOption
		if p.credentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(p.credentialsFile))
		}

		app, err := firebase.NewApp(ctx, nil, opts...)
		if err != nil {
			p.initErr = fmt.Errorf("init firebase app: %w", err)
			return
		}

		client, err := app.Messaging(ctx)
		if err != nil {
			p.initErr = fmt.Errorf("init messaging client: %w", err)
			return
		}

		p.client = client
		p.logger.Info("firebase messaging client initialized")
	})
	return p.client, p.initErr
}

// SendToTokens отправляет уведомление одним multicast-запросом.
// Исходы позиционно выровнены с tokens.
func (p *FCMProvider) SendToTokens(ctx context.Context, n *Notification, tokens []string) ([]SendResult, error) {
	client, err := p.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	msg := buildMulticastMessage(n, tokens)

	resp, err := client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("send multicast: %w", err)
	}

	results := make([]SendResult, len(resp.Responses))
	for i, r := range resp.Responses {
		if r.Success {
			results[i] = SendResult{OK: true}
			continue
		}
		results[i] = SendResult{Code: classifyFCMError(r.Error), Err: r.Error}
	}

	p.logger.Debug("fcm multicast sent",
		"success", resp.SuccessCount,
		"failure", resp.FailureCount,
	)
	return results, nil
}

// buildMulticastMessage собирает сообщение с платформенными настройками.
func buildMulticastMessage(n *Notification, tokens []string) *messaging.MulticastMessage {
	badge := 1
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: n.Data,
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Badge: &badge, Sound: "default"},
			},
		},
		Android: &messaging.AndroidConfig{Priority: "high"},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{Icon: n.Icon},
		},
	}
}

// classifyFCMError переводит ошибку SDK в ErrorCode.
// Мёртвые токены: unregistered / invalid argument / not found.
// Всё остальное (unavailable, internal, quota) — транзиентное.
func classifyFCMError(err error) ErrorCode {
	switch {
	case messaging.IsUnregistered(err):
		return ErrorCodeUnregistered
	case messaging.IsInvalidArgument(err):
		return ErrorCodeInvalidToken
	case errorutils.IsNotFound(err):
		return ErrorCodeNotFound
	default:
		return ErrorCodeTransient
	}
}
