package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики платформы. Регистрируются в default registry,
// экспортируются каждым сервисом на /metrics.
var (
	// TasksTotal — количество выполненных tasks по типу и статусу.
	TasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mgdt_tasks_total",
		Help: "Tasks executed by type and final status",
	}, []string{"type", "status"})

	// TaskDuration — длительность выполнения task по типу.
	TaskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mgdt_task_duration_seconds",
		Help:    "Task execution duration by type",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
	}, []string{"type"})

	// EpisodesCompleted — завершённые эпизоды rollout по игре.
	EpisodesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mgdt_episodes_completed_total",
		Help: "Rollout episodes completed per game",
	}, []string{"game"})

	// RolloutSteps — шаги окружений, выполненные rollout'ами.
	RolloutSteps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mgdt_rollout_steps_total",
		Help: "Environment steps taken across all rollouts",
	})

	// BytesDownloaded — скачанные байты датасетов и весов.
	BytesDownloaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mgdt_bytes_downloaded_total",
		Help: "Bytes downloaded from the replay bucket by artifact kind",
	}, []string{"kind"})

	// RunsFinalized — финализированные runs по статусу.
	RunsFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mgdt_runs_finalized_total",
		Help: "Runs finalized by status",
	}, []string{"status"})

	// MessagesConsumed — обработанные сообщения очередей по исходу.
	// Исходы: acked, requeued, malformed, unknown_type.
	MessagesConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mgdt_mq_messages_consumed_total",
		Help: "Queue messages processed by queue and outcome",
	}, []string{"queue", "outcome"})
)
