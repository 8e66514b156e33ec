package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/mgdt/internal/domain"
)

// Benchmark DTOs

// CreateBenchmarkRequest — запрос на создание benchmark.
type CreateBenchmarkRequest struct {
	Name string `json:"name"`
}

// UpdateBenchmarkRequest — запрос на обновление benchmark.
type UpdateBenchmarkRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// BenchmarkResponse — ответ с benchmark.
type BenchmarkResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// BenchmarkFromDomain конвертирует domain.Benchmark в BenchmarkResponse.
func BenchmarkFromDomain(b domain.Benchmark) BenchmarkResponse {
	return BenchmarkResponse{
		ID:        b.ID,
		Name:      b.Name,
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt,
	}
}

// BenchmarkVersion DTOs

// CreateBenchmarkVersionRequest — запрос на создание версии benchmark.
type CreateBenchmarkVersionRequest struct {
	Spec domain.BenchmarkSpec `json:"spec"`
}

// BenchmarkVersionResponse — ответ с версией benchmark.
type BenchmarkVersionResponse struct {
	BenchmarkID uuid.UUID            `json:"benchmark_id"`
	Version     int                  `json:"version"`
	Spec        domain.BenchmarkSpec `json:"spec"`
	CreatedAt   time.Time            `json:"created_at"`
}

// BenchmarkVersionFromDomain конвертирует domain.BenchmarkVersion в BenchmarkVersionResponse.
func BenchmarkVersionFromDomain(v domain.BenchmarkVersion) BenchmarkVersionResponse {
	return BenchmarkVersionResponse{
		BenchmarkID: v.BenchmarkID,
		Version:     v.Version,
		Spec:        v.Spec,
		CreatedAt:   v.CreatedAt,
	}
}

// Run DTOs

// CreateRunRequest — запрос на создание run.
type CreateRunRequest struct {
	Version        *int   `json:"version,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// RunResponse — ответ с run.
type RunResponse struct {
	ID             uuid.UUID  `json:"id"`
	BenchmarkID    uuid.UUID  `json:"benchmark_id"`
	Version        int        `json:"version"`
	Status         string     `json:"status"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	Error          string     `json:"error,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`

	// Tasks — количества tasks по статусам. Заполняется только в GetRun.
	Tasks *TaskCountsResponse `json:"tasks,omitempty"`
}

// TaskCountsResponse — количества tasks run по статусам.
type TaskCountsResponse struct {
	Queued    int `json:"queued"`
	Running   int `json:"running"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// RunFromDomain конвертирует domain.Run в RunResponse.
func RunFromDomain(r domain.Run) RunResponse {
	return RunResponse{
		ID:             r.ID,
		BenchmarkID:    r.BenchmarkID,
		Version:        r.Version,
		Status:         string(r.Status),
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		Error:          r.Error,
		IdempotencyKey: r.IdempotencyKey,
		CreatedAt:      r.CreatedAt,
	}
}

// Task DTOs

// TaskResponse — ответ с task.
type TaskResponse struct {
	ID         uuid.UUID      `json:"id"`
	RunID      uuid.UUID      `json:"run_id"`
	StepID     string         `json:"step_id"`
	Game       string         `json:"game,omitempty"`
	Type       string         `json:"type"`
	Attempt    int            `json:"attempt"`
	Status     string         `json:"status"`
	Payload    map[string]any `json:"payload,omitempty"`
	Outputs    map[string]any `json:"outputs,omitempty"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TaskFromDomain конвертирует domain.Task в TaskResponse.
func TaskFromDomain(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:         t.ID,
		RunID:      t.RunID,
		StepID:     t.StepID,
		Game:       t.Game,
		Type:       t.Type,
		Attempt:    t.Attempt,
		Status:     string(t.Status),
		Payload:    t.Payload,
		Outputs:    t.Outputs,
		StartedAt:  t.StartedAt,
		FinishedAt: t.FinishedAt,
		Error:      t.Error,
		CreatedAt:  t.CreatedAt,
	}
}

// Schedule DTOs

// CreateScheduleRequest — запрос на создание schedule.
type CreateScheduleRequest struct {
	Name        string `json:"name"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// UpdateScheduleRequest — запрос на обновление schedule.
type UpdateScheduleRequest struct {
	Name        *string `json:"name,omitempty"`
	CronExpr    *string `json:"cron_expr,omitempty"`
	IntervalSec *int    `json:"interval_sec,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

// SetEnabledRequest — запрос на включение/выключение.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// ScheduleResponse — ответ с schedule.
type ScheduleResponse struct {
	ID          uuid.UUID  `json:"id"`
	BenchmarkID uuid.UUID  `json:"benchmark_id"`
	Name        string     `json:"name"`
	CronExpr    string     `json:"cron_expr,omitempty"`
	IntervalSec int        `json:"interval_sec,omitempty"`
	Timezone    string     `json:"timezone"`
	Enabled     bool       `json:"enabled"`
	NextDueAt   *time.Time `json:"next_due_at,omitempty"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	LastRunID   *uuid.UUID `json:"last_run_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ScheduleFromDomain конвертирует domain.Schedule в ScheduleResponse.
func ScheduleFromDomain(s *domain.Schedule) ScheduleResponse {
	if s == nil {
		return ScheduleResponse{}
	}
	return ScheduleResponse{
		ID:          s.ID,
		BenchmarkID: s.BenchmarkID,
		Name:        s.Name,
		CronExpr:    s.CronExpr,
		IntervalSec: s.IntervalSec,
		Timezone:    s.Timezone,
		Enabled:     s.Enabled,
		NextDueAt:   s.NextDueAt,
		LastRunAt:   s.LastRunAt,
		LastRunID:   s.LastRunID,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// Score DTOs

// ScoreResponse — ответ с результатом одной игры.
type ScoreResponse struct {
	ID        uuid.UUID `json:"id"`
	RunID     uuid.UUID `json:"run_id"`
	Game      string    `json:"game"`
	Episodes  int       `json:"episodes"`
	RawMean   float64   `json:"raw_mean"`
	RawStd    float64   `json:"raw_std"`
	RawMedian float64   `json:"raw_median"`
	RawIQM    float64   `json:"raw_iqm"`
	HNSMean   *float64  `json:"hns_mean,omitempty"`
	HNSMedian *float64  `json:"hns_median,omitempty"`
	HNSIQM    *float64  `json:"hns_iqm,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoreFromDomain конвертирует domain.GameScore в ScoreResponse.
func ScoreFromDomain(s domain.GameScore) ScoreResponse {
	return ScoreResponse{
		ID:        s.ID,
		RunID:     s.RunID,
		Game:      s.Game,
		Episodes:  s.Episodes,
		RawMean:   s.RawMean,
		RawStd:    s.RawStd,
		RawMedian: s.RawMedian,
		RawIQM:    s.RawIQM,
		HNSMean:   s.HNSMean,
		HNSMedian: s.HNSMedian,
		HNSIQM:    s.HNSIQM,
		CreatedAt: s.CreatedAt,
	}
}
