package replay

import (
	"errors"
	"testing"
)

// testShard собирает шард из покадровых наград и терминалов.
// Кадры — 2x2, содержимое выводится из номера шага.
func testShard(rewards []float32, terminals []int32) *Shard {
	n := len(rewards)
	obs := make([]uint8, n*4)
	actions := make([]int32, n)
	for i := 0; i < n; i++ {
		for j := 0; j < 4; j++ {
			obs[i*4+j] = uint8(i)
		}
		actions[i] = int32(i % 18)
	}

	return &Shard{
		Observations: &Array{Shape: []int{n, 2, 2}, Dtype: "|u1", Uint8: obs},
		Actions:      &Array{Shape: []int{n}, Dtype: "<i4", Int32: actions},
		Rewards:      &Array{Shape: []int{n}, Dtype: "<f4", Float32: rewards},
		Terminals:    &Array{Shape: []int{n}, Dtype: "<i4", Int32: terminals},
	}
}

func TestSplitEpisodes(t *testing.T) {
	// Два эпизода: шаги 0-2 и 3-4, шаг 5 — незавершённый хвост
	shard := testShard(
		[]float32{1, 0, 2, 5, 5, 9},
		[]int32{0, 0, 1, 0, 1, 0},
	)

	trajectories, err := SplitEpisodes(shard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trajectories) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(trajectories))
	}

	first := trajectories[0]
	if first.Steps() != 3 {
		t.Errorf("first episode should have 3 steps, got %d", first.Steps())
	}
	if first.Return() != 3 {
		t.Errorf("first episode return should be 3, got %v", first.Return())
	}

	second := trajectories[1]
	if second.Steps() != 2 {
		t.Errorf("second episode should have 2 steps, got %d", second.Steps())
	}
	if second.Return() != 10 {
		t.Errorf("second episode return should be 10, got %v", second.Return())
	}
}

func TestSplitEpisodes_ReturnsToGo(t *testing.T) {
	shard := testShard(
		[]float32{1, 2, 3},
		[]int32{0, 0, 1},
	)

	trajectories, err := SplitEpisodes(shard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	traj := trajectories[0]
	expected := []float32{6, 5, 3}
	for i, want := range expected {
		if traj.ReturnsToGo[i] != want {
			t.Errorf("step %d: expected RTG %v, got %v", i, want, traj.ReturnsToGo[i])
		}
	}

	// Timesteps нумеруются с нуля внутри эпизода
	for i := range traj.Timesteps {
		if traj.Timesteps[i] != int32(i) {
			t.Errorf("step %d: expected timestep %d, got %d", i, i, traj.Timesteps[i])
		}
	}
}

func TestSplitEpisodes_Observation(t *testing.T) {
	shard := testShard(
		[]float32{0, 0, 0, 0},
		[]int32{0, 1, 0, 1},
	)

	trajectories, err := SplitEpisodes(shard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Второй эпизод начинается с шага 2 шарда
	second := trajectories[1]
	obs := second.Observation(0)
	if len(obs) != 4 {
		t.Fatalf("expected frame of 4 bytes, got %d", len(obs))
	}
	if obs[0] != 2 {
		t.Errorf("expected frame of step 2, got %d", obs[0])
	}
}

func TestSplitEpisodes_NoEpisodes(t *testing.T) {
	shard := testShard(
		[]float32{1, 1},
		[]int32{0, 0},
	)

	_, err := SplitEpisodes(shard)
	if !errors.Is(err, ErrNoEpisodes) {
		t.Errorf("expected ErrNoEpisodes, got %v", err)
	}
}

func TestSampleTrajectories(t *testing.T) {
	// Пять эпизодов по одному шагу
	shard := testShard(
		[]float32{1, 2, 3, 4, 5},
		[]int32{1, 1, 1, 1, 1},
	)

	// Запрос меньше общего числа — ровно n эпизодов
	sampled, err := SampleTrajectories(shard, 2, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sampled) != 2 {
		t.Errorf("expected 2 trajectories, got %d", len(sampled))
	}

	// Тот же seed — тот же выбор
	again, err := SampleTrajectories(shard, 2, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range sampled {
		if sampled[i].Return() != again[i].Return() {
			t.Error("same seed should sample the same trajectories")
		}
	}

	// n <= 0 или n >= len — все эпизоды
	all, err := SampleTrajectories(shard, 0, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("expected all 5 trajectories, got %d", len(all))
	}
}
