package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// BenchmarkResponse — benchmark из API.
type BenchmarkResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// BenchmarkVersionResponse — версия benchmark из API.
type BenchmarkVersionResponse struct {
	BenchmarkID string         `json:"benchmark_id"`
	Version     int            `json:"version"`
	Spec        map[string]any `json:"spec"`
	CreatedAt   string         `json:"created_at"`
}

// RunResponse — run из API.
type RunResponse struct {
	ID             string `json:"id"`
	BenchmarkID    string `json:"benchmark_id"`
	Version        int    `json:"version"`
	Status         string `json:"status"`
	StartedAt      string `json:"started_at,omitempty"`
	FinishedAt     string `json:"finished_at,omitempty"`
	Error          string `json:"error,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	CreatedAt      string `json:"created_at"`

	// Tasks — количества tasks по статусам (только в GetRun).
	Tasks *TaskCounts `json:"tasks,omitempty"`
}

// TaskCounts — количества tasks run по статусам.
type TaskCounts struct {
	Queued    int `json:"queued"`
	Running   int `json:"running"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// TaskResponse — task из API.
type TaskResponse struct {
	ID         string         `json:"id"`
	RunID      string         `json:"run_id"`
	StepID     string         `json:"step_id"`
	Game       string         `json:"game,omitempty"`
	Type       string         `json:"type"`
	Attempt    int            `json:"attempt"`
	Status     string         `json:"status"`
	Payload    map[string]any `json:"payload,omitempty"`
	Outputs    map[string]any `json:"outputs,omitempty"`
	StartedAt  string         `json:"started_at,omitempty"`
	FinishedAt string         `json:"finished_at,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

// ScheduleResponse — schedule из API.
type ScheduleResponse struct {
	ID          string `json:"id"`
	BenchmarkID string `json:"benchmark_id"`
	Name        string `json:"name"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone"`
	Enabled     bool   `json:"enabled"`
	NextDueAt   string `json:"next_due_at,omitempty"`
	LastRunAt   string `json:"last_run_at,omitempty"`
	LastRunID   string `json:"last_run_id,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ScoreResponse — результат одной игры из API.
type ScoreResponse struct {
	ID        string   `json:"id"`
	RunID     string   `json:"run_id"`
	Game      string   `json:"game"`
	Episodes  int      `json:"episodes"`
	RawMean   float64  `json:"raw_mean"`
	RawStd    float64  `json:"raw_std"`
	RawMedian float64  `json:"raw_median"`
	RawIQM    float64  `json:"raw_iqm"`
	HNSMean   *float64 `json:"hns_mean,omitempty"`
	HNSMedian *float64 `json:"hns_median,omitempty"`
	HNSIQM    *float64 `json:"hns_iqm,omitempty"`
	CreatedAt string   `json:"created_at"`
}

// --- Request types ---

// UpdateBenchmarkRequest — обновление benchmark.
type UpdateBenchmarkRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// CreateRunRequest — создание run.
type CreateRunRequest struct {
	Version        *int   `json:"version,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// CreateScheduleRequest — создание schedule.
type CreateScheduleRequest struct {
	Name        string `json:"name"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// UpdateScheduleRequest — обновление schedule.
type UpdateScheduleRequest struct {
	Name        *string `json:"name,omitempty"`
	CronExpr    *string `json:"cron_expr,omitempty"`
	IntervalSec *int    `json:"interval_sec,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

// ListRunsOpts — параметры фильтрации runs.
type ListRunsOpts struct {
	BenchmarkID string
	Status      string
	Limit       int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для mgdt API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Benchmarks ---

// ListBenchmarks возвращает все benchmarks.
func (c *Client) ListBenchmarks() ([]BenchmarkResponse, error) {
	var benchmarks []BenchmarkResponse
	err := c.list("/api/v1/benchmarks", nil, &benchmarks)
	return benchmarks, err
}

// CreateBenchmark создаёт новый benchmark.
func (c *Client) CreateBenchmark(name string) (*BenchmarkResponse, error) {
	body := map[string]string{"name": name}
	var benchmark BenchmarkResponse
	err := c.post("/api/v1/benchmarks", body, &benchmark)
	return &benchmark, err
}

// GetBenchmark возвращает benchmark по ID.
func (c *Client) GetBenchmark(id string) (*BenchmarkResponse, error) {
	var benchmark BenchmarkResponse
	err := c.get("/api/v1/benchmarks/"+id, &benchmark)
	return &benchmark, err
}

// UpdateBenchmark обновляет benchmark.
func (c *Client) UpdateBenchmark(id string, req UpdateBenchmarkRequest) (*BenchmarkResponse, error) {
	var benchmark BenchmarkResponse
	err := c.put("/api/v1/benchmarks/"+id, req, &benchmark)
	return &benchmark, err
}

// DeleteBenchmark удаляет benchmark.
func (c *Client) DeleteBenchmark(id string) error {
	return c.delete("/api/v1/benchmarks/" + id)
}

// ListVersions возвращает версии benchmark.
func (c *Client) ListVersions(benchmarkID string) ([]BenchmarkVersionResponse, error) {
	var versions []BenchmarkVersionResponse
	err := c.list("/api/v1/benchmarks/"+benchmarkID+"/versions", nil, &versions)
	return versions, err
}

// CreateVersion создаёт новую версию benchmark.
func (c *Client) CreateVersion(benchmarkID string, spec json.RawMessage) (*BenchmarkVersionResponse, error) {
	body := map[string]json.RawMessage{"spec": spec}
	var version BenchmarkVersionResponse
	err := c.post("/api/v1/benchmarks/"+benchmarkID+"/versions", body, &version)
	return &version, err
}

// --- Runs ---

// ListRuns возвращает список runs с фильтрацией.
func (c *Client) ListRuns(opts ListRunsOpts) ([]RunResponse, error) {
	params := url.Values{}
	if opts.BenchmarkID != "" {
		params.Set("benchmark_id", opts.BenchmarkID)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var runs []RunResponse
	err := c.list("/api/v1/runs", params, &runs)
	return runs, err
}

// CreateRun создаёт run для benchmark.
func (c *Client) CreateRun(benchmarkID string, req CreateRunRequest) (*RunResponse, error) {
	var run RunResponse
	err := c.post("/api/v1/benchmarks/"+benchmarkID+"/runs", req, &run)
	return &run, err
}

// GetRun возвращает run по ID.
func (c *Client) GetRun(id string) (*RunResponse, error) {
	var run RunResponse
	err := c.get("/api/v1/runs/"+id, &run)
	return &run, err
}

// CancelRun отменяет run.
func (c *Client) CancelRun(id string) (*RunResponse, error) {
	var run RunResponse
	err := c.post("/api/v1/runs/"+id+"/cancel", nil, &run)
	return &run, err
}

// ListTasks возвращает tasks для run.
func (c *Client) ListTasks(runID string) ([]TaskResponse, error) {
	var tasks []TaskResponse
	err := c.list("/api/v1/runs/"+runID+"/tasks", nil, &tasks)
	return tasks, err
}

// --- Scores ---

// ListRunScores возвращает результаты всех игр run.
func (c *Client) ListRunScores(runID string) ([]ScoreResponse, error) {
	var scores []ScoreResponse
	err := c.list("/api/v1/runs/"+runID+"/scores", nil, &scores)
	return scores, err
}

// GetRunScore возвращает результат одной игры внутри run.
func (c *Client) GetRunScore(runID, game string) (*ScoreResponse, error) {
	var score ScoreResponse
	err := c.get("/api/v1/runs/"+runID+"/scores/"+game, &score)
	return &score, err
}

// ListGameHistory возвращает историю результатов одной игры.
func (c *Client) ListGameHistory(game string, limit int) ([]ScoreResponse, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	var scores []ScoreResponse
	err := c.list("/api/v1/scores/"+game, params, &scores)
	return scores, err
}

// --- Schedules ---

// ListSchedules возвращает schedules. Если benchmarkID не пустой — фильтрует.
func (c *Client) ListSchedules(benchmarkID string) ([]ScheduleResponse, error) {
	params := url.Values{}
	if benchmarkID != "" {
		params.Set("benchmark_id", benchmarkID)
	}

	var schedules []ScheduleResponse
	err := c.list("/api/v1/schedules", params, &schedules)
	return schedules, err
}

// CreateSchedule создаёт schedule для benchmark.
func (c *Client) CreateSchedule(benchmarkID string, req CreateScheduleRequest) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.post("/api/v1/benchmarks/"+benchmarkID+"/schedules", req, &schedule)
	return &schedule, err
}

// GetSchedule возвращает schedule по ID.
func (c *Client) GetSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.get("/api/v1/schedules/"+id, &schedule)
	return &schedule, err
}

// UpdateSchedule обновляет schedule.
func (c *Client) UpdateSchedule(id string, req UpdateScheduleRequest) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.put("/api/v1/schedules/"+id, req, &schedule)
	return &schedule, err
}

// DeleteSchedule удаляет schedule.
func (c *Client) DeleteSchedule(id string) error {
	return c.delete("/api/v1/schedules/" + id)
}

// EnableSchedule включает schedule.
func (c *Client) EnableSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	body := map[string]bool{"enabled": true}
	err := c.put("/api/v1/schedules/"+id+"/enabled", body, &schedule)
	return &schedule, err
}

// DisableSchedule выключает schedule.
func (c *Client) DisableSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	body := map[string]bool{"enabled": false}
	err := c.put("/api/v1/schedules/"+id+"/enabled", body, &schedule)
	return &schedule, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
