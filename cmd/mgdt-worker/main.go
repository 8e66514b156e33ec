// mgdt Worker — выполняет tasks: загрузку данных и весов, rollouts
// и агрегацию результатов.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/mgdt/internal/domain"
	"github.com/shaiso/mgdt/internal/mq"
	"github.com/shaiso/mgdt/internal/repo"
	"github.com/shaiso/mgdt/internal/telemetry"
	"github.com/shaiso/mgdt/internal/worker"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting mgdt-worker")

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
	logger.Info("database connected")

	taskRepo := repo.NewTaskRepo(pool)
	runRepo := repo.NewRunRepo(pool)
	benchmarkRepo := repo.NewBenchmarkRepo(pool)
	scoreRepo := repo.NewScoreRepo(pool)

	// RabbitMQ
	var publisher *mq.Publisher
	var mqConn *mq.Connection
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err = mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
		mqConn = nil
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}

		publisher = mq.NewPublisher(mqConn, logger)
	}

	// Регистрируем executors для всех типов tasks
	registry := worker.NewRegistry()
	registry.Register(domain.TaskTypeFetch, worker.NewFetchExecutor(logger))
	registry.Register(domain.TaskTypeWeights, worker.NewWeightsExecutor(logger))
	registry.Register(domain.TaskTypeRollout, worker.NewRolloutExecutor(os.Getenv("ENV_GATEWAY_URL"), logger))
	registry.Register(domain.TaskTypeAggregate, worker.NewAggregateExecutor(taskRepo, scoreRepo, logger))

	// Создаём worker
	w := worker.New(worker.Config{
		TaskRepo:      taskRepo,
		RunRepo:       runRepo,
		BenchmarkRepo: benchmarkRepo,
		Registry:      registry,
		Publisher:     publisher,
		Conn:          mqConn,
		Logger:        logger,
	})

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

	w.Stop()
	logger.Info("mgdt-worker stopped")
}
