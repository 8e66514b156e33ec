package engine

import (
	"testing"

	"github.com/shaiso/mgdt/internal/domain"
)

// specWithGames возвращает минимальный валидный spec для тестов плана.
func specWithGames(games ...string) *domain.BenchmarkSpec {
	spec := &domain.BenchmarkSpec{
		Policy: domain.PolicySpec{Kind: domain.PolicyKindRandom},
	}
	for _, g := range games {
		spec.Games = append(spec.Games, domain.GameSpec{
			Name:         g,
			Episodes:     16,
			ParallelEnvs: 16,
		})
	}
	return spec
}

func TestBuildPlan_SingleGame(t *testing.T) {
	spec := specWithGames("Breakout")

	plan, err := BuildPlan(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Без data и weights: rollout:Breakout + aggregate
	if plan.Size() != 2 {
		t.Errorf("expected 2 nodes, got %d", plan.Size())
	}

	rollout := plan.GetNode(NodeRollout("Breakout"))
	if rollout == nil {
		t.Fatal("rollout:Breakout not found")
	}
	if rollout.Game != "Breakout" {
		t.Errorf("expected game Breakout, got %s", rollout.Game)
	}
	if rollout.Type != domain.TaskTypeRollout {
		t.Errorf("expected rollout type, got %s", rollout.Type)
	}

	aggregate := plan.GetNode(NodeAggregate)
	if aggregate == nil {
		t.Fatal("aggregate not found")
	}
	if len(aggregate.DependsOn) != 1 || aggregate.DependsOn[0].ID != rollout.ID {
		t.Error("aggregate should depend on rollout:Breakout")
	}
}

func TestBuildPlan_WithDataAndWeights(t *testing.T) {
	spec := specWithGames("Breakout", "Pong")
	spec.Data = &domain.DataSpec{
		BaseURL:     "https://storage.example.com/atari",
		Checkpoints: []int{49},
		TargetDir:   "/tmp/data",
	}
	spec.Weights = &domain.WeightsSpec{
		URL:    "https://storage.example.com/model.npz",
		Target: "/tmp/model.npz",
	}

	plan, err := BuildPlan(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// weights + 2*fetch + 2*rollout + aggregate
	if plan.Size() != 6 {
		t.Errorf("expected 6 nodes, got %d", plan.Size())
	}

	// Корни: weights и оба fetch
	if len(plan.RootNodes) != 3 {
		t.Errorf("expected 3 root nodes, got %d", len(plan.RootNodes))
	}

	// rollout зависит от weights и своего fetch
	rollout := plan.GetNode(NodeRollout("Pong"))
	if rollout == nil {
		t.Fatal("rollout:Pong not found")
	}
	depIDs := make(map[string]bool)
	for _, dep := range rollout.DependsOn {
		depIDs[dep.ID] = true
	}
	if !depIDs[NodeWeights] || !depIDs[NodeFetch("Pong")] {
		t.Errorf("rollout:Pong should depend on weights and fetch:Pong, got %v", depIDs)
	}
	if depIDs[NodeFetch("Breakout")] {
		t.Error("rollout:Pong should not depend on fetch:Breakout")
	}

	// aggregate зависит от всех rollout
	aggregate := plan.GetNode(NodeAggregate)
	if len(aggregate.DependsOn) != 2 {
		t.Errorf("aggregate should have 2 dependencies, got %d", len(aggregate.DependsOn))
	}
}

func TestBuildPlan_InvalidSpec(t *testing.T) {
	_, err := BuildPlan(&domain.BenchmarkSpec{})
	if err == nil {
		t.Error("expected error for empty spec")
	}
}

func TestTopologicalOrder(t *testing.T) {
	spec := specWithGames("Breakout")
	spec.Weights = &domain.WeightsSpec{
		URL:    "https://storage.example.com/model.npz",
		Target: "/tmp/model.npz",
	}

	plan, err := BuildPlan(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Order) != plan.Size() {
		t.Fatalf("order should contain all nodes, got %d of %d", len(plan.Order), plan.Size())
	}

	positions := make(map[string]int)
	for i, node := range plan.Order {
		positions[node.ID] = i
	}

	// weights перед rollout, rollout перед aggregate
	if positions[NodeWeights] > positions[NodeRollout("Breakout")] {
		t.Error("weights should come before rollout")
	}
	if positions[NodeRollout("Breakout")] > positions[NodeAggregate] {
		t.Error("rollout should come before aggregate")
	}
}

func TestGetReadyNodes(t *testing.T) {
	spec := specWithGames("Breakout", "Pong")
	spec.Weights = &domain.WeightsSpec{
		URL:    "https://storage.example.com/model.npz",
		Target: "/tmp/model.npz",
	}

	plan, err := BuildPlan(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Изначально готов только weights
	ready := plan.GetReadyNodes(nil, nil, nil)
	if len(ready) != 1 || ready[0].ID != NodeWeights {
		t.Fatalf("expected only weights ready initially, got %v", readyIDs(ready))
	}

	// После weights готовы оба rollout
	completed := map[string]bool{NodeWeights: true}
	ready = plan.GetReadyNodes(completed, nil, nil)
	ids := readyIDs(ready)
	if !ids[NodeRollout("Breakout")] || !ids[NodeRollout("Pong")] {
		t.Errorf("both rollouts should be ready after weights, got %v", ids)
	}
	if ids[NodeAggregate] {
		t.Error("aggregate should not be ready yet")
	}

	// Выполняющийся rollout не возвращается повторно
	running := map[string]bool{NodeRollout("Breakout"): true}
	ready = plan.GetReadyNodes(completed, running, nil)
	ids = readyIDs(ready)
	if ids[NodeRollout("Breakout")] {
		t.Error("running rollout should not be ready")
	}
	if !ids[NodeRollout("Pong")] {
		t.Error("rollout:Pong should still be ready")
	}

	// После обоих rollout готов aggregate
	completed[NodeRollout("Breakout")] = true
	completed[NodeRollout("Pong")] = true
	ready = plan.GetReadyNodes(completed, nil, nil)
	if len(ready) != 1 || ready[0].ID != NodeAggregate {
		t.Errorf("expected only aggregate ready, got %v", readyIDs(ready))
	}
}

func TestGetReadyNodes_FailedBlocksDependents(t *testing.T) {
	spec := specWithGames("Breakout")
	spec.Weights = &domain.WeightsSpec{
		URL:    "https://storage.example.com/model.npz",
		Target: "/tmp/model.npz",
	}

	plan, err := BuildPlan(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Проваленный weights не открывает rollout
	failed := map[string]bool{NodeWeights: true}
	ready := plan.GetReadyNodes(nil, nil, failed)
	if len(ready) != 0 {
		t.Errorf("nothing should be ready after weights failed, got %v", readyIDs(ready))
	}
}

func TestPlan_IsComplete(t *testing.T) {
	spec := specWithGames("Breakout")

	plan, err := BuildPlan(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.IsComplete(nil) {
		t.Error("should not be complete with no completed nodes")
	}
	if plan.IsComplete(map[string]bool{NodeRollout("Breakout"): true}) {
		t.Error("should not be complete without aggregate")
	}
	if !plan.IsComplete(map[string]bool{
		NodeRollout("Breakout"): true,
		NodeAggregate:           true,
	}) {
		t.Error("should be complete with all nodes completed")
	}
}

func readyIDs(nodes []*Node) map[string]bool {
	ids := make(map[string]bool)
	for _, node := range nodes {
		ids[node.ID] = true
	}
	return ids
}
