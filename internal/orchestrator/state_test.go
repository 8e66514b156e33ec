package orchestrator

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/mgdt/internal/domain"
	"github.com/shaiso/mgdt/internal/engine"
)

// newTestState собирает RunState с инициализированным планом.
func newTestState(t *testing.T, spec domain.BenchmarkSpec) *RunState {
	t.Helper()

	run := &domain.Run{
		ID:          uuid.New(),
		BenchmarkID: uuid.New(),
		Version:     1,
		Status:      domain.RunStatusPending,
	}
	version := &domain.BenchmarkVersion{
		BenchmarkID: run.BenchmarkID,
		Version:     1,
		Spec:        spec,
	}

	state := NewRunState(run, version)
	if err := state.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	return state
}

func benchSpec() domain.BenchmarkSpec {
	return domain.BenchmarkSpec{
		Games: []domain.GameSpec{
			{Name: "Breakout", Episodes: 16, ParallelEnvs: 16},
			{Name: "Pong", Episodes: 16, ParallelEnvs: 16},
		},
		Policy: domain.PolicySpec{Kind: domain.PolicyKindRandom},
		Weights: &domain.WeightsSpec{
			URL:    "https://storage.example.com/model.npz",
			Target: "/tmp/model.npz",
		},
	}
}

func TestRunState_Initialize_InvalidSpec(t *testing.T) {
	state := NewRunState(
		&domain.Run{ID: uuid.New()},
		&domain.BenchmarkVersion{Spec: domain.BenchmarkSpec{}},
	)

	err := state.Initialize()
	if !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("expected ErrInvalidSpec, got %v", err)
	}
}

func TestRunState_StepLifecycle(t *testing.T) {
	state := newTestState(t, benchSpec())

	// weights + 2 rollout + aggregate
	if state.Plan.Size() != 4 {
		t.Fatalf("expected 4 plan nodes, got %d", state.Plan.Size())
	}

	// Сначала готов только weights
	ready := state.GetReadySteps()
	if len(ready) != 1 || ready[0].ID != engine.NodeWeights {
		t.Fatalf("expected only weights ready, got %d steps", len(ready))
	}

	task := &domain.Task{ID: uuid.New(), StepID: engine.NodeWeights}
	state.MarkStepRunning(engine.NodeWeights, task)

	if !state.IsStepRunning(engine.NodeWeights) {
		t.Error("weights should be running")
	}
	if len(state.GetReadySteps()) != 0 {
		t.Error("nothing should be ready while weights runs")
	}
	if got := state.GetTask(engine.NodeWeights); got != task {
		t.Error("GetTask should return the stored task")
	}

	state.MarkStepCompleted(engine.NodeWeights)
	if state.IsStepRunning(engine.NodeWeights) {
		t.Error("completed step should not be running")
	}
	if !state.IsStepCompleted(engine.NodeWeights) {
		t.Error("weights should be completed")
	}

	// Теперь готовы оба rollout
	ready = state.GetReadySteps()
	if len(ready) != 2 {
		t.Errorf("expected 2 ready rollouts, got %d", len(ready))
	}
}

func TestRunState_FailureTracking(t *testing.T) {
	state := newTestState(t, benchSpec())

	if state.HasFailed() {
		t.Error("fresh state should have no failures")
	}

	state.MarkStepFailed(engine.NodeWeights)

	if !state.HasFailed() {
		t.Error("state should report failure")
	}
	failed := state.GetFailedSteps()
	if len(failed) != 1 || failed[0] != engine.NodeWeights {
		t.Errorf("expected [weights], got %v", failed)
	}

	// Упавший weights блокирует rollouts — готовых шагов нет
	if len(state.GetReadySteps()) != 0 {
		t.Error("failed dependency should block dependents")
	}
}

func TestRunState_IsComplete(t *testing.T) {
	state := newTestState(t, benchSpec())

	if state.IsComplete() {
		t.Error("fresh state should not be complete")
	}

	state.MarkStepCompleted(engine.NodeWeights)
	state.MarkStepCompleted(engine.NodeRollout("Breakout"))
	state.MarkStepFailed(engine.NodeRollout("Pong"))

	if state.IsComplete() {
		t.Error("aggregate still pending")
	}

	// Упавшие шаги тоже считаются завершёнными: run финализируется
	state.MarkStepCompleted(engine.NodeAggregate)
	if !state.IsComplete() {
		t.Error("all steps resolved, state should be complete")
	}
}

func TestRunState_Stats(t *testing.T) {
	state := newTestState(t, benchSpec())

	state.MarkStepRunning(engine.NodeWeights, &domain.Task{ID: uuid.New()})
	state.MarkStepCompleted(engine.NodeWeights)
	state.MarkStepRunning(engine.NodeRollout("Breakout"), &domain.Task{ID: uuid.New()})

	stats := state.Stats()
	if stats.TotalSteps != 4 {
		t.Errorf("expected 4 total, got %d", stats.TotalSteps)
	}
	if stats.CompletedSteps != 1 {
		t.Errorf("expected 1 completed, got %d", stats.CompletedSteps)
	}
	if stats.RunningSteps != 1 {
		t.Errorf("expected 1 running, got %d", stats.RunningSteps)
	}
	if stats.PendingSteps != 2 {
		t.Errorf("expected 2 pending, got %d", stats.PendingSteps)
	}
}

func TestRunState_RestoreFromTasks(t *testing.T) {
	state := newTestState(t, benchSpec())

	tasks := []domain.Task{
		{ID: uuid.New(), StepID: engine.NodeWeights, Status: domain.TaskStatusSucceeded},
		{ID: uuid.New(), StepID: engine.NodeRollout("Breakout"), Status: domain.TaskStatusRunning},
		{ID: uuid.New(), StepID: engine.NodeRollout("Pong"), Status: domain.TaskStatusFailed},
	}
	state.RestoreFromTasks(tasks)

	if !state.IsStepCompleted(engine.NodeWeights) {
		t.Error("weights should be restored as completed")
	}
	if !state.IsStepRunning(engine.NodeRollout("Breakout")) {
		t.Error("rollout:Breakout should be restored as running")
	}
	if !state.HasFailed() {
		t.Error("rollout:Pong failure should be restored")
	}

	// Готовых шагов нет: rollout выполняется, aggregate заблокирован
	if len(state.GetReadySteps()) != 0 {
		t.Error("no steps should be ready after restore")
	}
}

func TestRunState_RestoreFromTasks_QueuedStaysDispatched(t *testing.T) {
	state := newTestState(t, benchSpec())

	tasks := []domain.Task{
		{ID: uuid.New(), StepID: engine.NodeWeights, Status: domain.TaskStatusSucceeded},
		{ID: uuid.New(), StepID: engine.NodeRollout("Breakout"), Status: domain.TaskStatusQueued},
	}
	state.RestoreFromTasks(tasks)

	// Queued task уже в БД — его шаг восстанавливается как running
	if !state.IsStepRunning(engine.NodeRollout("Breakout")) {
		t.Error("queued step should be restored as running")
	}

	// Готов только rollout:Pong — для queued шага дубликат не создаётся
	ready := state.GetReadySteps()
	if len(ready) != 1 || ready[0].ID != engine.NodeRollout("Pong") {
		ids := make([]string, len(ready))
		for i, n := range ready {
			ids[i] = n.ID
		}
		t.Fatalf("expected only rollout:Pong ready, got %v", ids)
	}
}

func TestBuildTaskPayload(t *testing.T) {
	spec := benchSpec()
	spec.Data = &domain.DataSpec{
		BaseURL:     "https://storage.example.com/atari",
		Checkpoints: []int{49},
		TargetDir:   "/tmp/data",
	}

	// fetch несёт игру и data spec
	fetchNode := &engine.Node{ID: engine.NodeFetch("Breakout"), Type: domain.TaskTypeFetch, Game: "Breakout"}
	payload, err := buildTaskPayload(&spec, fetchNode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload["game"] != "Breakout" {
		t.Errorf("expected game Breakout, got %v", payload["game"])
	}
	if payload["data"] != spec.Data {
		t.Error("fetch payload should carry data spec")
	}

	// weights несёт weights spec
	payload, err = buildTaskPayload(&spec, &engine.Node{ID: engine.NodeWeights, Type: domain.TaskTypeWeights})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload["weights"] != spec.Weights {
		t.Error("weights payload should carry weights spec")
	}

	// rollout несёт game spec и политику
	rolloutNode := &engine.Node{ID: engine.NodeRollout("Pong"), Type: domain.TaskTypeRollout, Game: "Pong"}
	payload, err = buildTaskPayload(&spec, rolloutNode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gameSpec, ok := payload["game_spec"].(*domain.GameSpec)
	if !ok || gameSpec.Name != "Pong" {
		t.Errorf("expected game_spec for Pong, got %v", payload["game_spec"])
	}

	// rollout для игры вне спецификации — ошибка
	badNode := &engine.Node{ID: engine.NodeRollout("Alien"), Type: domain.TaskTypeRollout, Game: "Alien"}
	if _, err := buildTaskPayload(&spec, badNode); !errors.Is(err, ErrStepNotFound) {
		t.Errorf("expected ErrStepNotFound, got %v", err)
	}

	// aggregate — пустой payload
	payload, err = buildTaskPayload(&spec, &engine.Node{ID: engine.NodeAggregate, Type: domain.TaskTypeAggregate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload) != 0 {
		t.Errorf("aggregate payload should be empty, got %v", payload)
	}
}
