// Pulse Beat — планировщик регулярных автоматизаций.
//
// Раз в интервал проверяет активные регулярные автоматизации,
// создаёт runs для тех, у кого наступило время по cron,
// и публикует их id в очередь runs.created.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Pulse/internal/mq"
	"github.com/shaiso/Pulse/internal/repo"
	"github.com/shaiso/Pulse/internal/scheduler"
	"github.com/shaiso/Pulse/internal/telemetry"
)

const defaultTickInterval = time.Minute

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting pulse-beat")

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

	// RabbitMQ
	var publisher *mq.Publisher
	mqConn, err := mq.NewConnection(mq.DefaultURL(), logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, runs will be created but not dispatched", "error", err)
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}

		publisher = mq.NewPublisher(mqConn, logger)
	}

	beat := scheduler.New(scheduler.Config{
		Automations: repo.NewAutomationRepo(pool),
		Runs:        repo.NewRunRepo(pool),
		Publisher:   publisher,
		Logger:      logger,
	})

	// beat loop
	go func() {
		tk := time.NewTicker(tickInterval())
		defer tk.Stop()

		for {
			select {
			case <-tk.C:
				if err := beat.Tick(ctx); err != nil {
					logger.Error("beat tick failed", "error", err)
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8081"
	if v := os.Getenv("BEAT_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("pulse-beat stopped")
}

// tickInterval читает интервал тика из BEAT_INTERVAL (секунды).
func tickInterval() time.Duration {
	if v := os.Getenv("BEAT_INTERVAL"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			return time.Duration(sec) * time.Second
		}
	}
	return defaultTickInterval
}
