// Pulse Worker — выполняет runs автоматизаций.
//
// Worker:
//   - Получает run id из RabbitMQ
//   - Выполняет автоматизацию через внешний agent-сервис
//   - Финализирует run терминальным статусом
//   - Уведомляет владельца через push
//
// Workers масштабируются горизонтально.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Pulse/internal/mq"
	"github.com/shaiso/Pulse/internal/push"
	"github.com/shaiso/Pulse/internal/repo"
	"github.com/shaiso/Pulse/internal/telemetry"
	"github.com/shaiso/Pulse/internal/worker"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting pulse-worker")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// RabbitMQ: без очереди воркеру нечего делать
	mqConn, err := mq.NewConnection(mq.DefaultURL(), logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Warn("failed to setup topology", "error", err)
	}

	tokenRepo := repo.NewTokenRepo(pool)

	// Push-уведомления: FCM клиент инициализируется лениво,
	// при отсутствии credentials доставка деградирует в no-op с логом
	dispatcher := push.NewDispatcher(push.DispatcherConfig{
		Tokens:   tokenRepo,
		Provider: push.NewFCMProvider(os.Getenv("FIREBASE_CREDENTIALS"), logger),
		Logger:   logger,
	})

	// Создаём worker
	w := worker.New(worker.Config{
		Runs:        repo.NewRunRepo(pool),
		Automations: repo.NewAutomationRepo(pool),
		Executor:    worker.NewAgentExecutor(worker.AgentConfig{}),
		Notifier:    dispatcher,
		Conn:        mqConn,
		Logger:      logger,
	})

	// Запускаем worker
	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("WORKER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем worker
	w.Stop()
	logger.Info("pulse-worker stopped")
}
