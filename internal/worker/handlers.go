package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/mgdt/internal/domain"
	"github.com/shaiso/mgdt/internal/mq"
	"github.com/shaiso/mgdt/internal/repo"
	"github.com/shaiso/mgdt/internal/telemetry"
)

// handleTaskReady обрабатывает событие о новой task из очереди tasks.ready.
func (w *Worker) handleTaskReady(ctx context.Context, delivery *mq.Delivery) error {
	// Парсим payload
	payload, err := mq.ParsePayload[mq.TaskReadyPayload](&delivery.Message)
	if err != nil {
		w.logger.Error("failed to parse task.ready payload", "error", err)
		return err
	}

	w.logger.Debug("received task.ready event",
		"task_id", payload.TaskID,
		"run_id", payload.RunID,
		"game", payload.Game,
		"type", payload.Type,
	)

	// Обрабатываем task
	if err := w.processTask(ctx, payload.TaskID); err != nil {
		// Ожидаемые ситуации — не возвращаем ошибку (ack)
		if errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrTaskNotQueued) {
			w.logger.Debug("task not processed", "task_id", payload.TaskID, "reason", err)
			return nil
		}
		w.logger.Error("failed to process task", "task_id", payload.TaskID, "error", err)
		return err
	}

	return nil
}

// processTask загружает task из БД, выполняет и обрабатывает результат.
func (w *Worker) processTask(ctx context.Context, taskID uuid.UUID) error {
	// 1. Загружаем task из БД
	task, err := w.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
		}
		return fmt.Errorf("get task: %w", err)
	}

	// 2. Проверяем статус
	if task.Status != domain.TaskStatusQueued {
		return ErrTaskNotQueued
	}

	// 3. Помечаем как running
	task.MarkRunning()
	if err := w.taskRepo.Update(ctx, task); err != nil {
		return fmt.Errorf("update task to running: %w", err)
	}

	w.logger.Info("task started",
		"task_id", task.ID,
		"run_id", task.RunID,
		"step_id", task.StepID,
		"type", task.Type,
		"attempt", task.Attempt,
	)

	started := time.Now()

	// 4. Загружаем RetryPolicy и таймаут из спецификации benchmark
	retryPolicy, timeout := w.getTaskDefaults(ctx, task)

	// 5. Выполняем с retry
	execCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	result, execErr := w.executeWithRetry(execCtx, task, retryPolicy)

	telemetry.TaskDuration.WithLabelValues(task.Type).Observe(time.Since(started).Seconds())

	// 6. Обрабатываем результат
	if execErr == nil && (result == nil || result.Error == "") {
		// Успех
		var outputs map[string]any
		if result != nil {
			outputs = result.Outputs
		}
		task.MarkSucceeded(outputs)
		if err := w.taskRepo.Update(ctx, task); err != nil {
			return fmt.Errorf("update task to succeeded: %w", err)
		}

		telemetry.TasksTotal.WithLabelValues(task.Type, string(task.Status)).Inc()

		w.logger.Info("task succeeded",
			"task_id", task.ID,
			"run_id", task.RunID,
			"step_id", task.StepID,
			"attempt", task.Attempt,
		)

		return w.publishCompletion(ctx, task, "")
	}

	// Ошибка
	errMsg := ""
	if execErr != nil {
		errMsg = execErr.Error()
	} else {
		errMsg = result.Error
	}

	task.MarkFailed(errMsg)
	if err := w.taskRepo.Update(ctx, task); err != nil {
		return fmt.Errorf("update task to failed: %w", err)
	}

	telemetry.TasksTotal.WithLabelValues(task.Type, string(task.Status)).Inc()

	w.logger.Warn("task failed",
		"task_id", task.ID,
		"run_id", task.RunID,
		"step_id", task.StepID,
		"attempt", task.Attempt,
		"error", errMsg,
	)

	return w.publishCompletion(ctx, task, errMsg)
}

// publishCompletion публикует событие task.completed.
func (w *Worker) publishCompletion(ctx context.Context, task *domain.Task, errMsg string) error {
	if w.publisher == nil {
		w.logger.Warn("publisher not available, skipping task.completed publish",
			"task_id", task.ID,
		)
		return nil
	}

	payload := mq.TaskCompletedPayload{
		TaskID:  task.ID,
		RunID:   task.RunID,
		StepID:  task.StepID,
		Game:    task.Game,
		Type:    task.Type,
		Status:  string(task.Status),
		Error:   errMsg,
		Attempt: task.Attempt,
	}

	if err := w.publisher.PublishTaskCompleted(ctx, payload); err != nil {
		w.logger.Warn("failed to publish task.completed",
			"task_id", task.ID,
			"error", err,
		)
		// Не возвращаем ошибку — task обновлён в БД, оркестратор подхватит через polling
	}

	return nil
}

// executeWithRetry выполняет task с retry согласно RetryPolicy.
func (w *Worker) executeWithRetry(ctx context.Context, task *domain.Task, policy *domain.RetryPolicy) (*ExecutionResult, error) {
	// Получаем executor
	executor, err := w.registry.Get(task.Type)
	if err != nil {
		return nil, err
	}

	maxAttempts := 1
	if policy != nil && policy.MaxAttempts > 0 {
		maxAttempts = policy.MaxAttempts
	}

	var lastResult *ExecutionResult
	var lastErr error

	for {
		// Выполняем
		lastResult, lastErr = executor.Execute(ctx, task)

		// Успех — инфраструктурной ошибки нет и логической ошибки нет
		if lastErr == nil && (lastResult == nil || lastResult.Error == "") {
			return lastResult, nil
		}

		// Проверяем, можно ли делать retry
		if !task.CanRetry(maxAttempts) {
			break
		}

		// Считаем backoff
		delay := calculateBackoff(task.Attempt, policy)

		w.logger.Debug("retrying task",
			"task_id", task.ID,
			"attempt", task.Attempt,
			"delay", delay,
		)

		// Ждём с учётом context
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		// Сброс и новая попытка
		task.ResetForRetry()
		task.MarkRunning()
		if err := w.taskRepo.Update(ctx, task); err != nil {
			return nil, fmt.Errorf("update task for retry: %w", err)
		}
	}

	return lastResult, lastErr
}

// calculateBackoff вычисляет задержку перед retry.
func calculateBackoff(attempt int, policy *domain.RetryPolicy) time.Duration {
	if policy == nil {
		return time.Second
	}

	initialDelay := time.Duration(policy.InitialDelayMs) * time.Millisecond
	if initialDelay <= 0 {
		initialDelay = time.Second
	}

	maxDelay := time.Duration(policy.MaxDelayMs) * time.Millisecond
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}

	var delay time.Duration
	switch policy.Backoff {
	case "exponential":
		// delay = initialDelay * 2^(attempt-1)
		delay = initialDelay
		for i := 1; i < attempt; i++ {
			delay *= 2
			if delay > maxDelay {
				delay = maxDelay
				break
			}
		}
	default:
		// "fixed" или неизвестный — используем initialDelay
		delay = initialDelay
	}

	if delay > maxDelay {
		delay = maxDelay
	}

	return delay
}

// getTaskDefaults загружает RetryPolicy и таймаут из спецификации benchmark.
func (w *Worker) getTaskDefaults(ctx context.Context, task *domain.Task) (*domain.RetryPolicy, time.Duration) {
	// Загружаем run для BenchmarkID и Version
	run, err := w.runRepo.GetByID(ctx, task.RunID)
	if err != nil {
		w.logger.Debug("failed to load run for task defaults", "run_id", task.RunID, "error", err)
		return nil, 0
	}

	version, err := w.benchmarkRepo.GetVersion(ctx, run.BenchmarkID, run.Version)
	if err != nil {
		w.logger.Debug("failed to load benchmark version for task defaults",
			"benchmark_id", run.BenchmarkID, "error", err)
		return nil, 0
	}

	defaults := version.Spec.Defaults
	if defaults == nil {
		return nil, 0
	}

	timeout := time.Duration(defaults.TimeoutSec) * time.Second
	return defaults.Retry, timeout
}
