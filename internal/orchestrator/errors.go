package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrRunNotFound — run не найден в БД.
	ErrRunNotFound = errors.New("run not found")

	// ErrVersionNotFound — версия benchmark не найдена.
	ErrVersionNotFound = errors.New("benchmark version not found")

	// ErrInvalidSpec — спецификация benchmark не прошла валидацию.
	ErrInvalidSpec = errors.New("invalid benchmark spec")

	// ErrRunAlreadyActive — run уже обрабатывается.
	ErrRunAlreadyActive = errors.New("run already being processed")

	// ErrRunNotActive — run не найден в активных (для обработки task.completed).
	ErrRunNotActive = errors.New("run not in active runs")

	// ErrRunNotPending — run не в статусе PENDING.
	ErrRunNotPending = errors.New("run is not in PENDING status")

	// ErrTaskNotFound — task не найден.
	ErrTaskNotFound = errors.New("task not found")

	// ErrStepNotFound — шаг не найден в плане.
	ErrStepNotFound = errors.New("step not found in plan")

	// ErrOrchestratorStopped — оркестратор остановлен.
	ErrOrchestratorStopped = errors.New("orchestrator stopped")
)
