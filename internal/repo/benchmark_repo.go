package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/mgdt/internal/domain"
)

// BenchmarkRepo — репозиторий для работы с benchmarks и benchmark_versions.
type BenchmarkRepo struct {
	pool *pgxpool.Pool
}

// NewBenchmarkRepo создаёт новый BenchmarkRepo.
func NewBenchmarkRepo(pool *pgxpool.Pool) *BenchmarkRepo {
	return &BenchmarkRepo{pool: pool}
}

// --- Benchmark CRUD ---

// Create создаёт новый benchmark.
func (r *BenchmarkRepo) Create(ctx context.Context, b *domain.Benchmark) error {
	query := `
		INSERT INTO benchmarks (id, name, is_active, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		b.ID,
		b.Name,
		b.IsActive,
		b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert benchmark: %w", err)
	}
	return nil
}

// GetByID возвращает benchmark по ID.
func (r *BenchmarkRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Benchmark, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM benchmarks
		WHERE id = $1
	`
	var b domain.Benchmark
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.Name,
		&b.IsActive,
		&b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get benchmark by id: %w", err)
	}
	return &b, nil
}

// GetByName возвращает benchmark по имени.
func (r *BenchmarkRepo) GetByName(ctx context.Context, name string) (*domain.Benchmark, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM benchmarks
		WHERE name = $1
	`
	var b domain.Benchmark
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&b.ID,
		&b.Name,
		&b.IsActive,
		&b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get benchmark by name: %w", err)
	}
	return &b, nil
}

// List возвращает список всех benchmarks.
func (r *BenchmarkRepo) List(ctx context.Context) ([]domain.Benchmark, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM benchmarks
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list benchmarks: %w", err)
	}
	defer rows.Close()

	var benchmarks []domain.Benchmark
	for rows.Next() {
		var b domain.Benchmark
		if err := rows.Scan(
			&b.ID,
			&b.Name,
			&b.IsActive,
			&b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan benchmark: %w", err)
		}
		benchmarks = append(benchmarks, b)
	}
	return benchmarks, rows.Err()
}

// Update обновляет benchmark.
func (r *BenchmarkRepo) Update(ctx context.Context, b *domain.Benchmark) error {
	query := `
		UPDATE benchmarks
		SET name = $2, is_active = $3
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, b.ID, b.Name, b.IsActive)
	if err != nil {
		return fmt.Errorf("update benchmark: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет benchmark (каскадно удалит versions, runs, schedules).
func (r *BenchmarkRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM benchmarks WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete benchmark: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- BenchmarkVersion CRUD ---

// CreateVersion создаёт новую версию benchmark.
// Версия автоматически инкрементируется.
func (r *BenchmarkRepo) CreateVersion(ctx context.Context, benchmarkID uuid.UUID, spec domain.BenchmarkSpec) (*domain.BenchmarkVersion, error) {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal spec: %w", err)
	}

	var nextVersion int
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(version), 0) + 1
		FROM benchmark_versions
		WHERE benchmark_id = $1
	`, benchmarkID).Scan(&nextVersion)
	if err != nil {
		return nil, fmt.Errorf("get next version: %w", err)
	}

	var version domain.BenchmarkVersion
	err = r.pool.QueryRow(ctx, `
		INSERT INTO benchmark_versions (benchmark_id, version, spec, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING benchmark_id, version, spec, created_at
	`, benchmarkID, nextVersion, specJSON).Scan(
		&version.BenchmarkID,
		&version.Version,
		&specJSON,
		&version.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert benchmark version: %w", err)
	}

	if err := json.Unmarshal(specJSON, &version.Spec); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}

	return &version, nil
}

// GetVersion возвращает конкретную версию benchmark.
func (r *BenchmarkRepo) GetVersion(ctx context.Context, benchmarkID uuid.UUID, version int) (*domain.BenchmarkVersion, error) {
	query := `
		SELECT benchmark_id, version, spec, created_at
		FROM benchmark_versions
		WHERE benchmark_id = $1 AND version = $2
	`
	var bv domain.BenchmarkVersion
	var specJSON []byte
	err := r.pool.QueryRow(ctx, query, benchmarkID, version).Scan(
		&bv.BenchmarkID,
		&bv.Version,
		&specJSON,
		&bv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get benchmark version: %w", err)
	}

	if err := json.Unmarshal(specJSON, &bv.Spec); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}

	return &bv, nil
}

// GetLatestVersion возвращает последнюю версию benchmark.
func (r *BenchmarkRepo) GetLatestVersion(ctx context.Context, benchmarkID uuid.UUID) (*domain.BenchmarkVersion, error) {
	query := `
		SELECT benchmark_id, version, spec, created_at
		FROM benchmark_versions
		WHERE benchmark_id = $1
		ORDER BY version DESC
		LIMIT 1
	`
	var bv domain.BenchmarkVersion
	var specJSON []byte
	err := r.pool.QueryRow(ctx, query, benchmarkID).Scan(
		&bv.BenchmarkID,
		&bv.Version,
		&specJSON,
		&bv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest benchmark version: %w", err)
	}

	if err := json.Unmarshal(specJSON, &bv.Spec); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}

	return &bv, nil
}

// ListVersions возвращает все версии benchmark.
func (r *BenchmarkRepo) ListVersions(ctx context.Context, benchmarkID uuid.UUID) ([]domain.BenchmarkVersion, error) {
	query := `
		SELECT benchmark_id, version, spec, created_at
		FROM benchmark_versions
		WHERE benchmark_id = $1
		ORDER BY version DESC
	`
	rows, err := r.pool.Query(ctx, query, benchmarkID)
	if err != nil {
		return nil, fmt.Errorf("list benchmark versions: %w", err)
	}
	defer rows.Close()

	var versions []domain.BenchmarkVersion
	for rows.Next() {
		var bv domain.BenchmarkVersion
		var specJSON []byte
		if err := rows.Scan(
			&bv.BenchmarkID,
			&bv.Version,
			&specJSON,
			&bv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan benchmark version: %w", err)
		}

		if err := json.Unmarshal(specJSON, &bv.Spec); err != nil {
			return nil, fmt.Errorf("unmarshal spec: %w", err)
		}

		versions = append(versions, bv)
	}
	return versions, rows.Err()
}
