package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shaiso/mgdt/internal/domain"
)

// Executor — интерфейс для выполнения конкретного типа task.
//
// Реализации: FetchExecutor, WeightsExecutor, RolloutExecutor,
// AggregateExecutor.
//
// task.Payload содержит срез спецификации benchmark для этого шага.
// ctx может содержать таймаут, установленный из TaskDefaults.TimeoutSec.
type Executor interface {
	Execute(ctx context.Context, task *domain.Task) (*ExecutionResult, error)
}

// ExecutionResult — результат выполнения task.
type ExecutionResult struct {
	// Outputs — выходные данные выполнения.
	Outputs map[string]any

	// Error — сообщение об ошибке (логическая ошибка выполнения).
	// Инфраструктурные ошибки возвращаются через error в Execute().
	Error string
}

// Registry — реестр executor'ов по типу task.
type Registry struct {
	executors map[string]Executor
}

// NewRegistry создаёт пустой реестр.
// Сервисный main регистрирует executors со своими зависимостями.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[string]Executor)}
}

// Register добавляет executor для типа task.
func (r *Registry) Register(taskType string, executor Executor) {
	r.executors[taskType] = executor
}

// Get возвращает executor для типа task.
func (r *Registry) Get(taskType string) (Executor, error) {
	executor, ok := r.executors[taskType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}
	return executor, nil
}

// decodePayload парсит task.Payload в типизированную структуру.
func decodePayload[T any](payload map[string]any) (T, error) {
	var result T

	raw, err := json.Marshal(payload)
	if err != nil {
		return result, fmt.Errorf("%w: marshal: %v", ErrInvalidPayload, err)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("%w: unmarshal: %v", ErrInvalidPayload, err)
	}
	return result, nil
}
