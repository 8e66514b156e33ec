package worker

import "errors"

// Ошибки воркера.
var (
	// ErrTaskNotFound — task не найден в БД.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskNotQueued — task не в статусе QUEUED.
	ErrTaskNotQueued = errors.New("task is not in QUEUED status")

	// ErrUnknownTaskType — нет executor'а для данного типа task.
	ErrUnknownTaskType = errors.New("unknown task type")

	// ErrExecutionTimeout — выполнение task превысило таймаут.
	ErrExecutionTimeout = errors.New("execution timeout")

	// ErrExecutionFailed — выполнение task завершилось ошибкой.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrWorkerStopped — воркер остановлен.
	ErrWorkerStopped = errors.New("worker stopped")

	// ErrRetryExhausted — все попытки retry исчерпаны.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrInvalidPayload — payload task не соответствует типу.
	ErrInvalidPayload = errors.New("invalid task payload")
)
