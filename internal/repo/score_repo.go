package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/mgdt/internal/domain"
)

// ScoreRepo — репозиторий для работы с game_scores.
type ScoreRepo struct {
	pool *pgxpool.Pool
}

// NewScoreRepo создаёт новый ScoreRepo.
func NewScoreRepo(pool *pgxpool.Pool) *ScoreRepo {
	return &ScoreRepo{pool: pool}
}

// Create создаёт запись результата игры.
func (r *ScoreRepo) Create(ctx context.Context, score *domain.GameScore) error {
	query := `
		INSERT INTO game_scores (id, run_id, game, episodes,
		                         raw_mean, raw_std, raw_median, raw_iqm,
		                         hns_mean, hns_median, hns_iqm, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		score.ID,
		score.RunID,
		score.Game,
		score.Episodes,
		score.RawMean,
		score.RawStd,
		score.RawMedian,
		score.RawIQM,
		score.HNSMean,
		score.HNSMedian,
		score.HNSIQM,
		score.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert game score: %w", err)
	}
	return nil
}

// ListByRunID возвращает все результаты для run, отсортированные по игре.
func (r *ScoreRepo) ListByRunID(ctx context.Context, runID uuid.UUID) ([]domain.GameScore, error) {
	query := `
		SELECT id, run_id, game, episodes,
		       raw_mean, raw_std, raw_median, raw_iqm,
		       hns_mean, hns_median, hns_iqm, created_at
		FROM game_scores
		WHERE run_id = $1
		ORDER BY game ASC
	`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list game scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.GameScore
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *score)
	}
	return scores, rows.Err()
}

// GetByRunAndGame возвращает результат игры внутри run.
func (r *ScoreRepo) GetByRunAndGame(ctx context.Context, runID uuid.UUID, game string) (*domain.GameScore, error) {
	query := `
		SELECT id, run_id, game, episodes,
		       raw_mean, raw_std, raw_median, raw_iqm,
		       hns_mean, hns_median, hns_iqm, created_at
		FROM game_scores
		WHERE run_id = $1 AND game = $2
	`
	return scanScore(r.pool.QueryRow(ctx, query, runID, game))
}

// ListByGame возвращает историю результатов игры по всем runs.
// Используется для отслеживания прогресса модели между версиями.
func (r *ScoreRepo) ListByGame(ctx context.Context, game string, limit int) ([]domain.GameScore, error) {
	query := `
		SELECT id, run_id, game, episodes,
		       raw_mean, raw_std, raw_median, raw_iqm,
		       hns_mean, hns_median, hns_iqm, created_at
		FROM game_scores
		WHERE game = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, game, limit)
	if err != nil {
		return nil, fmt.Errorf("list game scores by game: %w", err)
	}
	defer rows.Close()

	var scores []domain.GameScore
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *score)
	}
	return scores, rows.Err()
}

// DeleteByRunID удаляет результаты run (перед повторной агрегацией).
func (r *ScoreRepo) DeleteByRunID(ctx context.Context, runID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM game_scores WHERE run_id = $1`, runID)
	if err != nil {
		return fmt.Errorf("delete game scores: %w", err)
	}
	return nil
}

// --- Helpers ---

func scanScore(row pgx.Row) (*domain.GameScore, error) {
	var s domain.GameScore

	err := row.Scan(
		&s.ID,
		&s.RunID,
		&s.Game,
		&s.Episodes,
		&s.RawMean,
		&s.RawStd,
		&s.RawMedian,
		&s.RawIQM,
		&s.HNSMean,
		&s.HNSMedian,
		&s.HNSIQM,
		&s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan game score: %w", err)
	}
	return &s, nil
}
