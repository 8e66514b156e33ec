package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/mgdt/internal/domain"
	"github.com/shaiso/mgdt/internal/fetch"
)

// WeightsExecutor — executor для task типа "weights".
//
// Скачивает чекпоинт pretrained весов и проверяет контрольную сумму.
//
// Payload:
//   - weights (object): WeightsSpec — url, sha256, target
type WeightsExecutor struct {
	logger *slog.Logger
}

// NewWeightsExecutor создаёт WeightsExecutor.
func NewWeightsExecutor(logger *slog.Logger) *WeightsExecutor {
	return &WeightsExecutor{logger: logger}
}

// weightsPayload — типизированный payload weights task.
type weightsPayload struct {
	Weights *domain.WeightsSpec `json:"weights"`
}

// Execute скачивает веса.
func (e *WeightsExecutor) Execute(ctx context.Context, task *domain.Task) (*ExecutionResult, error) {
	payload, err := decodePayload[weightsPayload](task.Payload)
	if err != nil {
		return nil, err
	}
	if payload.Weights == nil || payload.Weights.URL == "" {
		return nil, fmt.Errorf("%w: weights task requires weights spec", ErrInvalidPayload)
	}

	result, err := fetch.DownloadWeights(ctx,
		payload.Weights.URL,
		payload.Weights.SHA256,
		payload.Weights.Target,
		e.logger,
	)
	if err != nil {
		return nil, fmt.Errorf("download weights: %w", err)
	}

	return &ExecutionResult{
		Outputs: map[string]any{
			"path":    result.Path,
			"bytes":   result.Bytes,
			"sha256":  result.SHA256,
			"skipped": result.Skipped,
		},
	}, nil
}
