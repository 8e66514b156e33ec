package worker

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"path"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/mgdt/internal/domain"
	"github.com/shaiso/mgdt/internal/replay"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// --- Registry Tests ---

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register(domain.TaskTypeRollout, NewRolloutExecutor("", testLogger()))

	executor, err := r.Get(domain.TaskTypeRollout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if executor == nil {
		t.Error("executor should be registered")
	}
}

func TestRegistry_UnknownType(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("unknown")
	if !errors.Is(err, ErrUnknownTaskType) {
		t.Errorf("expected ErrUnknownTaskType, got %v", err)
	}
}

// --- Backoff Tests ---

func TestCalculateBackoff_Exponential(t *testing.T) {
	policy := &domain.RetryPolicy{
		Backoff:        "exponential",
		InitialDelayMs: 1000,
		MaxDelayMs:     10000,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second}, // capped at max
		{6, 10 * time.Second}, // stays at max
	}

	for _, tt := range tests {
		got := calculateBackoff(tt.attempt, policy)
		if got != tt.expected {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.expected, got)
		}
	}
}

func TestCalculateBackoff_Fixed(t *testing.T) {
	policy := &domain.RetryPolicy{
		Backoff:        "fixed",
		InitialDelayMs: 2000,
		MaxDelayMs:     10000,
	}

	// Все попытки — одинаковая задержка
	for attempt := 1; attempt <= 5; attempt++ {
		got := calculateBackoff(attempt, policy)
		if got != 2*time.Second {
			t.Errorf("attempt %d: expected 2s, got %v", attempt, got)
		}
	}
}

func TestCalculateBackoff_NilPolicy(t *testing.T) {
	got := calculateBackoff(1, nil)
	if got != time.Second {
		t.Errorf("expected 1s default, got %v", got)
	}
}

func TestCalculateBackoff_ZeroValues(t *testing.T) {
	policy := &domain.RetryPolicy{
		Backoff: "exponential",
		// InitialDelayMs и MaxDelayMs = 0
	}

	got := calculateBackoff(1, policy)
	if got != time.Second {
		t.Errorf("expected 1s default for zero InitialDelayMs, got %v", got)
	}
}

// --- Task Retry Semantics ---

func TestTask_RetryLifecycle(t *testing.T) {
	task := &domain.Task{ID: uuid.New(), Status: domain.TaskStatusQueued}

	task.MarkRunning()
	if task.Attempt != 1 {
		t.Errorf("expected attempt 1 after first MarkRunning, got %d", task.Attempt)
	}

	if !task.CanRetry(2) {
		t.Error("should allow retry with maxAttempts=2")
	}
	if task.CanRetry(1) {
		t.Error("should not allow retry with maxAttempts=1")
	}

	task.ResetForRetry()
	if task.Status != domain.TaskStatusQueued {
		t.Errorf("expected QUEUED after reset, got %s", task.Status)
	}

	task.MarkRunning()
	if task.Attempt != 2 {
		t.Errorf("expected attempt 2 after retry, got %d", task.Attempt)
	}
}

// --- Executor Tests ---

func TestRolloutExecutor_Synthetic(t *testing.T) {
	executor := NewRolloutExecutor("", testLogger())
	task := &domain.Task{
		ID:   uuid.New(),
		Type: domain.TaskTypeRollout,
		Game: "Breakout",
		Payload: map[string]any{
			"game_spec": map[string]any{
				"name":          "Breakout",
				"episodes":      2,
				"parallel_envs": 2,
				"seed":          7,
			},
			"policy": map[string]any{"kind": "random"},
		},
	}

	result, err := executor.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Error != "" {
		t.Fatalf("unexpected execution error: %s", result.Error)
	}

	if result.Outputs["game"] != "Breakout" {
		t.Errorf("expected game Breakout, got %v", result.Outputs["game"])
	}
	if result.Outputs["episodes"] != 2 {
		t.Errorf("expected 2 episodes, got %v", result.Outputs["episodes"])
	}

	returns, ok := result.Outputs["returns"].([]float64)
	if !ok {
		t.Fatalf("returns should be []float64, got %T", result.Outputs["returns"])
	}
	if len(returns) != 2 {
		t.Errorf("expected 2 returns, got %d", len(returns))
	}
}

func TestRolloutExecutor_MissingGameSpec(t *testing.T) {
	executor := NewRolloutExecutor("", testLogger())
	task := &domain.Task{
		ID:      uuid.New(),
		Type:    domain.TaskTypeRollout,
		Payload: map[string]any{"policy": map[string]any{"kind": "random"}},
	}

	_, err := executor.Execute(context.Background(), task)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestRolloutExecutor_UnknownPolicy(t *testing.T) {
	executor := NewRolloutExecutor("", testLogger())
	task := &domain.Task{
		ID:   uuid.New(),
		Type: domain.TaskTypeRollout,
		Payload: map[string]any{
			"game_spec": map[string]any{
				"name":          "Pong",
				"episodes":      1,
				"parallel_envs": 1,
			},
			"policy": map[string]any{"kind": "greedy"},
		},
	}

	_, err := executor.Execute(context.Background(), task)
	if err == nil {
		t.Error("expected error for unknown policy kind")
	}
}

// gzNPY собирает gzip-сжатый NPY v1.0 файл в памяти.
func gzNPY(t *testing.T, descr string, shape []int, data []byte) []byte {
	t.Helper()

	shapeStr := ""
	for _, d := range shape {
		shapeStr += fmt.Sprintf("%d, ", d)
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }", descr, shapeStr)
	total := 8 + 2 + len(header) + 1
	pad := (16 - total%16) % 16
	header += string(bytes.Repeat([]byte{' '}, pad)) + "\n"

	var npy bytes.Buffer
	npy.WriteString("\x93NUMPY")
	npy.WriteByte(1)
	npy.WriteByte(0)
	binary.Write(&npy, binary.LittleEndian, uint16(len(header)))
	npy.WriteString(header)
	npy.Write(data)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(npy.Bytes()); err != nil {
		t.Fatalf("gzip write failed: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close failed: %v", err)
	}
	return buf.Bytes()
}

func int32Bytes(values ...int32) []byte {
	raw := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:], uint32(v))
	}
	return raw
}

func float32Bytes(values ...float32) []byte {
	raw := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return raw
}

func TestFetchExecutor_DecodesDownloadedShards(t *testing.T) {
	// Чекпоинт из 4 шагов с двумя завершёнными эпизодами
	files := map[string][]byte{
		replay.ShardFileName(replay.FieldObservation, 3): gzNPY(t, "|u1", []int{4, 2, 2}, make([]byte, 16)),
		replay.ShardFileName(replay.FieldAction, 3):      gzNPY(t, "<i4", []int{4}, int32Bytes(0, 1, 2, 3)),
		replay.ShardFileName(replay.FieldReward, 3):      gzNPY(t, "<f4", []int{4}, float32Bytes(1, 2, 3, 4)),
		replay.ShardFileName(replay.FieldTerminal, 3):    gzNPY(t, "<i4", []int{4}, int32Bytes(0, 1, 0, 1)),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[path.Base(r.URL.Path)]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	executor := NewFetchExecutor(testLogger())
	task := &domain.Task{
		ID:   uuid.New(),
		Type: domain.TaskTypeFetch,
		Game: "Breakout",
		Payload: map[string]any{
			"game": "Breakout",
			"data": map[string]any{
				"base_url":               srv.URL,
				"checkpoints":            []any{float64(3)},
				"target_dir":             t.TempDir(),
				"trajectories_per_shard": float64(1),
			},
		},
	}

	result, err := executor.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outputs["downloaded"] != 4 {
		t.Errorf("expected 4 downloaded files, got %v", result.Outputs["downloaded"])
	}
	if result.Outputs["steps"] != 4 {
		t.Errorf("expected 4 steps, got %v", result.Outputs["steps"])
	}
	if result.Outputs["episodes"] != 2 {
		t.Errorf("expected 2 episodes, got %v", result.Outputs["episodes"])
	}
	// trajectories_per_shard=1 ограничивает выборку с чекпоинта
	if result.Outputs["trajectories"] != 1 {
		t.Errorf("expected 1 sampled trajectory, got %v", result.Outputs["trajectories"])
	}
}

func TestFetchExecutor_CorruptShardFails(t *testing.T) {
	var gzGarbage bytes.Buffer
	gz := gzip.NewWriter(&gzGarbage)
	gz.Write([]byte("not an NPY payload"))
	gz.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(gzGarbage.Bytes())
	}))
	defer srv.Close()

	executor := NewFetchExecutor(testLogger())
	task := &domain.Task{
		ID:   uuid.New(),
		Type: domain.TaskTypeFetch,
		Game: "Pong",
		Payload: map[string]any{
			"game": "Pong",
			"data": map[string]any{
				"base_url":    srv.URL,
				"checkpoints": []any{float64(0)},
				"target_dir":  t.TempDir(),
			},
		},
	}

	if _, err := executor.Execute(context.Background(), task); !errors.Is(err, replay.ErrNotNPY) {
		t.Errorf("expected ErrNotNPY for corrupt shard, got %v", err)
	}
}

// --- Worker Tests ---

func TestNew_DefaultConfig(t *testing.T) {
	w := New(Config{})

	if w.pollInterval != defaultPollInterval {
		t.Errorf("expected default poll interval %v, got %v", defaultPollInterval, w.pollInterval)
	}
	if w.batchSize != defaultBatchSize {
		t.Errorf("expected default batch size %d, got %d", defaultBatchSize, w.batchSize)
	}
	if w.registry == nil {
		t.Error("registry should be initialized")
	}
}

func TestNew_CustomConfig(t *testing.T) {
	w := New(Config{
		PollInterval: 5 * time.Second,
		BatchSize:    25,
	})

	if w.pollInterval != 5*time.Second {
		t.Errorf("expected poll interval 5s, got %v", w.pollInterval)
	}
	if w.batchSize != 25 {
		t.Errorf("expected batch size 25, got %d", w.batchSize)
	}
}

func TestWorker_IsStopped(t *testing.T) {
	w := New(Config{})

	if w.IsStopped() {
		t.Error("should not be stopped initially")
	}

	w.stoppedMu.Lock()
	w.stopped = true
	w.stoppedMu.Unlock()

	if !w.IsStopped() {
		t.Error("should be stopped")
	}
}
