package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shaiso/mgdt/internal/domain"
	"github.com/shaiso/mgdt/internal/engine"
)

// ListBenchmarks возвращает список всех benchmarks.
// GET /api/v1/benchmarks
func (h *Handler) ListBenchmarks(w http.ResponseWriter, r *http.Request) {
	benchmarks, err := h.benchmarkRepo.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]BenchmarkResponse, len(benchmarks))
	for i, b := range benchmarks {
		result[i] = BenchmarkFromDomain(b)
	}

	List(w, result, len(result))
}

// CreateBenchmark создаёт новый benchmark.
// POST /api/v1/benchmarks
func (h *Handler) CreateBenchmark(w http.ResponseWriter, r *http.Request) {
	var req CreateBenchmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	benchmark := &domain.Benchmark{
		ID:       uuid.New(),
		Name:     req.Name,
		IsActive: false,
	}

	if err := h.benchmarkRepo.Create(r.Context(), benchmark); err != nil {
		if HandleRepoError(w, h.logger, err, "") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Created(w, BenchmarkFromDomain(*benchmark))
}

// GetBenchmark возвращает benchmark по ID.
// GET /api/v1/benchmarks/{id}
func (h *Handler) GetBenchmark(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid benchmark id")
		return
	}

	benchmark, err := h.benchmarkRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "benchmark not found") {
		return
	}

	Success(w, BenchmarkFromDomain(*benchmark))
}

// UpdateBenchmark обновляет benchmark.
// PUT /api/v1/benchmarks/{id}
func (h *Handler) UpdateBenchmark(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid benchmark id")
		return
	}

	var req UpdateBenchmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	benchmark, err := h.benchmarkRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "benchmark not found") {
		return
	}

	if req.Name != nil {
		benchmark.Name = *req.Name
	}
	if req.IsActive != nil {
		benchmark.IsActive = *req.IsActive
	}

	if err := h.benchmarkRepo.Update(r.Context(), benchmark); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, BenchmarkFromDomain(*benchmark))
}

// DeleteBenchmark удаляет benchmark.
// DELETE /api/v1/benchmarks/{id}
func (h *Handler) DeleteBenchmark(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid benchmark id")
		return
	}

	if err := h.benchmarkRepo.Delete(r.Context(), id); err != nil {
		if HandleRepoError(w, h.logger, err, "benchmark not found") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	NoContent(w)
}

// ListBenchmarkVersions возвращает список версий benchmark.
// GET /api/v1/benchmarks/{id}/versions
func (h *Handler) ListBenchmarkVersions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid benchmark id")
		return
	}

	// Проверяем, что benchmark существует
	_, err = h.benchmarkRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "benchmark not found") {
		return
	}

	versions, err := h.benchmarkRepo.ListVersions(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]BenchmarkVersionResponse, len(versions))
	for i, v := range versions {
		result[i] = BenchmarkVersionFromDomain(v)
	}

	List(w, result, len(result))
}

// CreateBenchmarkVersion создаёт новую версию benchmark.
// POST /api/v1/benchmarks/{id}/versions
func (h *Handler) CreateBenchmarkVersion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid benchmark id")
		return
	}

	var req CreateBenchmarkVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	// Спецификация проверяется сразу, чтобы не хранить версии,
	// которые не смогут выполниться
	if err := engine.Validate(&req.Spec); err != nil {
		BadRequest(w, err.Error())
		return
	}

	// Проверяем, что benchmark существует
	_, err = h.benchmarkRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "benchmark not found") {
		return
	}

	version, err := h.benchmarkRepo.CreateVersion(r.Context(), id, req.Spec)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, BenchmarkVersionFromDomain(*version))
}

// GetBenchmarkVersion возвращает конкретную версию benchmark.
// GET /api/v1/benchmarks/{id}/versions/{version}
func (h *Handler) GetBenchmarkVersion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid benchmark id")
		return
	}

	versionNum, err := strconv.Atoi(r.PathValue("version"))
	if err != nil {
		BadRequest(w, "invalid version number")
		return
	}

	version, err := h.benchmarkRepo.GetVersion(r.Context(), id, versionNum)
	if HandleRepoError(w, h.logger, err, "benchmark version not found") {
		return
	}

	Success(w, BenchmarkVersionFromDomain(*version))
}
