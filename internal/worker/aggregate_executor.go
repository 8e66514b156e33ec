package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/mgdt/internal/domain"
	"github.com/shaiso/mgdt/internal/repo"
	"github.com/shaiso/mgdt/internal/stats"
)

// AggregateExecutor — executor для task типа "aggregate".
//
// Собирает outputs всех rollout tasks текущего run, сводит per-episode
// returns в статистику (mean, std, median, IQM) с human-normalized
// вариантом и записывает результаты в game_scores.
type AggregateExecutor struct {
	taskRepo  *repo.TaskRepo
	scoreRepo *repo.ScoreRepo
	logger    *slog.Logger
}

// NewAggregateExecutor создаёт AggregateExecutor.
func NewAggregateExecutor(taskRepo *repo.TaskRepo, scoreRepo *repo.ScoreRepo, logger *slog.Logger) *AggregateExecutor {
	return &AggregateExecutor{
		taskRepo:  taskRepo,
		scoreRepo: scoreRepo,
		logger:    logger,
	}
}

// Execute агрегирует результаты run.
func (e *AggregateExecutor) Execute(ctx context.Context, task *domain.Task) (*ExecutionResult, error) {
	tasks, err := e.taskRepo.ListByRunID(ctx, task.RunID)
	if err != nil {
		return nil, fmt.Errorf("list run tasks: %w", err)
	}

	// Повторная агрегация перезаписывает результаты.
	if err := e.scoreRepo.DeleteByRunID(ctx, task.RunID); err != nil {
		return nil, fmt.Errorf("clear previous scores: %w", err)
	}

	games := make([]string, 0)
	hnsIQMs := make([]float64, 0)

	for i := range tasks {
		t := &tasks[i]
		if t.Type != domain.TaskTypeRollout || t.Status != domain.TaskStatusSucceeded {
			continue
		}

		score, err := e.aggregateRollout(ctx, t)
		if err != nil {
			return &ExecutionResult{
				Error: fmt.Sprintf("aggregate %s: %v", t.Game, err),
			}, nil
		}

		games = append(games, score.Game)
		if score.HNSIQM != nil {
			hnsIQMs = append(hnsIQMs, *score.HNSIQM)
		}
	}

	if len(games) == 0 {
		return &ExecutionResult{
			Error: "no succeeded rollout tasks to aggregate",
		}, nil
	}

	outputs := map[string]any{
		"games": games,
	}

	// Сводный скор модели — среднее HNS IQM по играм с baseline'ами.
	if len(hnsIQMs) > 0 {
		sum, err := stats.Summarize(hnsIQMs)
		if err == nil {
			outputs["hns_iqm_mean"] = sum.Mean
			outputs["hns_iqm_median"] = sum.Median
		}
	}

	e.logger.Info("run aggregated",
		"run_id", task.RunID,
		"games", len(games))

	return &ExecutionResult{Outputs: outputs}, nil
}

// aggregateRollout сводит outputs одного rollout task в GameScore.
func (e *AggregateExecutor) aggregateRollout(ctx context.Context, t *domain.Task) (*domain.GameScore, error) {
	returns, err := extractReturns(t.Outputs)
	if err != nil {
		return nil, err
	}

	summary, err := stats.Summarize(returns)
	if err != nil {
		return nil, fmt.Errorf("summarize returns: %w", err)
	}

	score := &domain.GameScore{
		ID:        uuid.New(),
		RunID:     t.RunID,
		Game:      t.Game,
		Episodes:  len(returns),
		RawMean:   summary.Mean,
		RawStd:    summary.Std,
		RawMedian: summary.Median,
		RawIQM:    summary.IQM,
		CreatedAt: time.Now(),
	}

	if !stats.HasBaseline(t.Game) {
		e.logger.Debug("no published baseline for game, storing raw scores only",
			"game", t.Game)
	} else if normalized, ok := stats.HumanNormalizedAll(t.Game, returns); ok {
		if ns, err := stats.Summarize(normalized); err == nil {
			score.HNSMean = &ns.Mean
			score.HNSMedian = &ns.Median
			score.HNSIQM = &ns.IQM
		}
	}

	if err := e.scoreRepo.Create(ctx, score); err != nil {
		return nil, fmt.Errorf("insert score: %w", err)
	}
	return score, nil
}

// extractReturns достаёт per-episode returns из outputs rollout task.
// Outputs проходят через JSON, числа приходят как float64.
func extractReturns(outputs map[string]any) ([]float64, error) {
	raw, ok := outputs["returns"]
	if !ok {
		return nil, fmt.Errorf("rollout outputs missing returns")
	}

	switch vals := raw.(type) {
	case []float64:
		return vals, nil
	case []any:
		returns := make([]float64, 0, len(vals))
		for _, v := range vals {
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("non-numeric return value: %v", v)
			}
			returns = append(returns, f)
		}
		return returns, nil
	default:
		return nil, fmt.Errorf("unexpected returns type: %T", raw)
	}
}
