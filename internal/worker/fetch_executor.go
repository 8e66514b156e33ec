package worker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/shaiso/mgdt/internal/domain"
	"github.com/shaiso/mgdt/internal/fetch"
	"github.com/shaiso/mgdt/internal/replay"
)

// FetchExecutor — executor для task типа "fetch".
//
// Скачивает replay шарды одной игры из публичного бакета и разбирает
// каждый чекпоинт: считает эпизоды и выбирает траектории. Разбор заодно
// проверяет целостность скачанного — битый NPY или расхождение длин
// массивов останавливают fetch до rollout.
//
// Payload:
//   - game (string): имя игры
//   - data (object): DataSpec — бакет, run, checkpoints, target_dir,
//     trajectories_per_shard
type FetchExecutor struct {
	logger *slog.Logger

	// Concurrency — параллельных загрузок (0 — default).
	Concurrency int
}

// NewFetchExecutor создаёт FetchExecutor.
func NewFetchExecutor(logger *slog.Logger) *FetchExecutor {
	return &FetchExecutor{logger: logger}
}

// fetchPayload — типизированный payload fetch task.
type fetchPayload struct {
	Game string           `json:"game"`
	Data *domain.DataSpec `json:"data"`
}

// Execute скачивает шарды игры.
func (e *FetchExecutor) Execute(ctx context.Context, task *domain.Task) (*ExecutionResult, error) {
	payload, err := decodePayload[fetchPayload](task.Payload)
	if err != nil {
		return nil, err
	}
	if payload.Game == "" || payload.Data == nil {
		return nil, fmt.Errorf("%w: fetch requires game and data", ErrInvalidPayload)
	}

	downloader := fetch.NewDownloader(
		payload.Data.BaseURL,
		payload.Data.Run,
		e.Concurrency,
		e.logger,
	)

	result, err := downloader.DownloadGame(ctx, payload.Game, payload.Data.Checkpoints, payload.Data.TargetDir)
	if err != nil {
		// Сетевые ошибки — инфраструктурные, пусть retry-механизм решает.
		return nil, fmt.Errorf("download game %s: %w", payload.Game, err)
	}

	gameDir := filepath.Join(payload.Data.TargetDir, payload.Game)
	report, err := e.decodeShards(gameDir, payload.Data.Checkpoints, payload.Data.TrajectoriesPerShard)
	if err != nil {
		return nil, fmt.Errorf("decode shards of %s: %w", payload.Game, err)
	}

	e.logger.Info("game shards decoded",
		"game", payload.Game,
		"checkpoints", len(payload.Data.Checkpoints),
		"episodes", report.Episodes,
		"trajectories", report.Trajectories)

	return &ExecutionResult{
		Outputs: map[string]any{
			"game":         payload.Game,
			"checkpoints":  len(payload.Data.Checkpoints),
			"downloaded":   result.Downloaded,
			"skipped":      result.Skipped,
			"bytes":        result.Bytes,
			"steps":        report.Steps,
			"episodes":     report.Episodes,
			"trajectories": report.Trajectories,
		},
	}, nil
}

// shardReport — сводка по разобранным чекпоинтам.
type shardReport struct {
	Steps        int
	Episodes     int
	Trajectories int
}

// decodeShards читает каждый чекпоинт из каталога и режет на эпизоды.
// perShard ограничивает число траекторий с одного чекпоинта
// (0 — без ограничения); выбор детерминирован номером чекпоинта.
func (e *FetchExecutor) decodeShards(dir string, checkpoints []int, perShard int) (*shardReport, error) {
	report := &shardReport{}
	for _, ckpt := range checkpoints {
		shard, err := replay.ReadShard(dir, ckpt)
		if err != nil {
			return nil, fmt.Errorf("checkpoint %d: %w", ckpt, err)
		}
		report.Steps += shard.Steps()

		episodes, err := replay.SplitEpisodes(shard)
		if err != nil {
			return nil, fmt.Errorf("checkpoint %d: %w", ckpt, err)
		}
		report.Episodes += len(episodes)

		sampled, err := replay.SampleTrajectories(shard, perShard, int64(ckpt))
		if err != nil {
			return nil, fmt.Errorf("checkpoint %d: %w", ckpt, err)
		}
		report.Trajectories += len(sampled)
	}
	return report, nil
}
