package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shaiso/mgdt/internal/domain"
	"github.com/shaiso/mgdt/internal/repo"
)

// ListRuns возвращает список runs с фильтрацией.
// GET /api/v1/runs?benchmark_id=...&status=...&limit=...&offset=...
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	filter := repo.RunFilter{}

	// Парсим query параметры
	if benchmarkIDStr := r.URL.Query().Get("benchmark_id"); benchmarkIDStr != "" {
		benchmarkID, err := uuid.Parse(benchmarkIDStr)
		if err != nil {
			BadRequest(w, "invalid benchmark_id")
			return
		}
		filter.BenchmarkID = &benchmarkID
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.RunStatus(status)
	}

	filter.Limit = parseIntParam(r, "limit", 50)
	filter.Offset = parseIntParam(r, "offset", 0)

	runs, err := h.runRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RunResponse, len(runs))
	for i, run := range runs {
		result[i] = RunFromDomain(run)
	}

	List(w, result, len(result))
}

// CreateRun создаёт новый run для benchmark.
// POST /api/v1/benchmarks/{id}/runs
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	benchmarkID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid benchmark id")
		return
	}

	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	// Проверяем, что benchmark существует
	benchmark, err := h.benchmarkRepo.GetByID(r.Context(), benchmarkID)
	if HandleRepoError(w, h.logger, err, "benchmark not found") {
		return
	}

	// Определяем версию
	var version int
	if req.Version != nil {
		version = *req.Version
		// Проверяем, что версия существует
		_, err := h.benchmarkRepo.GetVersion(r.Context(), benchmarkID, version)
		if HandleRepoError(w, h.logger, err, "benchmark version not found") {
			return
		}
	} else {
		// Используем последнюю версию
		latestVersion, err := h.benchmarkRepo.GetLatestVersion(r.Context(), benchmarkID)
		if HandleRepoError(w, h.logger, err, "benchmark has no versions") {
			return
		}
		version = latestVersion.Version
	}

	// Проверяем idempotency key
	if req.IdempotencyKey != "" {
		existingRun, err := h.runRepo.GetByIdempotencyKey(r.Context(), benchmarkID, req.IdempotencyKey)
		if err == nil && existingRun != nil {
			// Возвращаем существующий run
			Success(w, RunFromDomain(*existingRun))
			return
		}
	}

	run := &domain.Run{
		ID:             uuid.New(),
		BenchmarkID:    benchmark.ID,
		Version:        version,
		Status:         domain.RunStatusPending,
		IdempotencyKey: req.IdempotencyKey,
	}

	if err := h.runRepo.Create(r.Context(), run); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	// Публикуем событие в очередь
	if h.publisher != nil {
		if err := h.publisher.PublishRunPending(r.Context(), run.ID); err != nil {
			h.logger.Warn("failed to publish run.pending", "run_id", run.ID, "error", err)
		}
	}

	Created(w, RunFromDomain(*run))
}

// GetRun возвращает run по ID.
// GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	run, err := h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	resp := RunFromDomain(*run)
	counts, err := h.taskCounts(r.Context(), run.ID)
	if err != nil {
		h.logger.Warn("failed to count run tasks", "run_id", run.ID, "error", err)
	} else {
		resp.Tasks = counts
	}

	Success(w, resp)
}

// taskCounts собирает количества tasks run по статусам.
func (h *Handler) taskCounts(ctx context.Context, runID uuid.UUID) (*TaskCountsResponse, error) {
	counts := &TaskCountsResponse{}
	for _, it := range []struct {
		status domain.TaskStatus
		dst    *int
	}{
		{domain.TaskStatusQueued, &counts.Queued},
		{domain.TaskStatusRunning, &counts.Running},
		{domain.TaskStatusSucceeded, &counts.Succeeded},
		{domain.TaskStatusFailed, &counts.Failed},
	} {
		n, err := h.taskRepo.CountByRunAndStatus(ctx, runID, it.status)
		if err != nil {
			return nil, err
		}
		*it.dst = n
	}
	return counts, nil
}

// CancelRun отменяет run.
// POST /api/v1/runs/{id}/cancel
func (h *Handler) CancelRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	run, err := h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	if run.IsFinished() {
		InvalidState(w, "run is already finished")
		return
	}

	run.MarkCancelled()

	if err := h.runRepo.Update(r.Context(), run); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, RunFromDomain(*run))
}

// ListRunTasks возвращает задачи run.
// GET /api/v1/runs/{id}/tasks
func (h *Handler) ListRunTasks(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	// Проверяем, что run существует
	_, err = h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	tasks, err := h.taskRepo.ListByRunID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = TaskFromDomain(t)
	}

	List(w, result, len(result))
}

// parseIntParam парсит int query-параметр с дефолтным значением.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return n
}
