package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики Pulse. Экспортируются каждым сервисом на /metrics.
var (
	// BeatTickDuration — длительность одного тика планировщика.
	BeatTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pulse",
		Subsystem: "beat",
		Name:      "tick_duration_seconds",
		Help:      "Duration of a scheduler beat tick.",
		Buckets:   prometheus.DefBuckets,
	})

	// RunsCreated — созданные runs (beat + ручные запуски).
	RunsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "runs",
		Name:      "created_total",
		Help:      "Total number of automation runs created.",
	})

	// RunsFinalized — финализированные runs по терминальному статусу.
	RunsFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "runs",
		Name:      "finalized_total",
		Help:      "Total number of automation runs finalized, by terminal status.",
	}, []string{"status"})

	// FinalizeFailures — сбои самой финализации (фатальная
	// несогласованность: run остаётся in_progress).
	FinalizeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "runs",
		Name:      "finalize_failures_total",
		Help:      "Total number of failed finalize attempts leaving a run in_progress.",
	})

	// NotificationsSent — исходы batch-отправок уведомлений.
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "push",
		Name:      "notifications_total",
		Help:      "Total number of notification dispatches, by outcome.",
	}, []string{"result"})

	// StaleTokensEvicted — выселенные мёртвые токены устройств.
	StaleTokensEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "push",
		Name:      "stale_tokens_evicted_total",
		Help:      "Total number of device tokens deleted after a permanent provider error.",
	})
)
