package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Benchmarks
	mux.Handle("GET /api/v1/benchmarks", chain(http.HandlerFunc(h.ListBenchmarks)))
	mux.Handle("POST /api/v1/benchmarks", chain(http.HandlerFunc(h.CreateBenchmark)))
	mux.Handle("GET /api/v1/benchmarks/{id}", chain(http.HandlerFunc(h.GetBenchmark)))
	mux.Handle("PUT /api/v1/benchmarks/{id}", chain(http.HandlerFunc(h.UpdateBenchmark)))
	mux.Handle("DELETE /api/v1/benchmarks/{id}", chain(http.HandlerFunc(h.DeleteBenchmark)))

	// Benchmark Versions
	mux.Handle("GET /api/v1/benchmarks/{id}/versions", chain(http.HandlerFunc(h.ListBenchmarkVersions)))
	mux.Handle("POST /api/v1/benchmarks/{id}/versions", chain(http.HandlerFunc(h.CreateBenchmarkVersion)))
	mux.Handle("GET /api/v1/benchmarks/{id}/versions/{version}", chain(http.HandlerFunc(h.GetBenchmarkVersion)))

	// Runs
	mux.Handle("GET /api/v1/runs", chain(http.HandlerFunc(h.ListRuns)))
	mux.Handle("POST /api/v1/benchmarks/{id}/runs", chain(http.HandlerFunc(h.CreateRun)))
	mux.Handle("GET /api/v1/runs/{id}", chain(http.HandlerFunc(h.GetRun)))
	mux.Handle("POST /api/v1/runs/{id}/cancel", chain(http.HandlerFunc(h.CancelRun)))
	mux.Handle("GET /api/v1/runs/{id}/tasks", chain(http.HandlerFunc(h.ListRunTasks)))

	// Scores
	mux.Handle("GET /api/v1/runs/{id}/scores", chain(http.HandlerFunc(h.ListRunScores)))
	mux.Handle("GET /api/v1/runs/{id}/scores/{game}", chain(http.HandlerFunc(h.GetRunGameScore)))
	mux.Handle("GET /api/v1/scores/{game}", chain(http.HandlerFunc(h.ListGameHistory)))

	// Schedules
	mux.Handle("GET /api/v1/schedules", chain(http.HandlerFunc(h.ListSchedules)))
	mux.Handle("POST /api/v1/benchmarks/{id}/schedules", chain(http.HandlerFunc(h.CreateSchedule)))
	mux.Handle("GET /api/v1/schedules/{id}", chain(http.HandlerFunc(h.GetSchedule)))
	mux.Handle("PUT /api/v1/schedules/{id}", chain(http.HandlerFunc(h.UpdateSchedule)))
	mux.Handle("DELETE /api/v1/schedules/{id}", chain(http.HandlerFunc(h.DeleteSchedule)))
	mux.Handle("PUT /api/v1/schedules/{id}/enabled", chain(http.HandlerFunc(h.SetScheduleEnabled)))
}
