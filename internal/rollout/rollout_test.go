package rollout

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shaiso/mgdt/internal/atari"
	"github.com/shaiso/mgdt/internal/policy"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func makeEnvs(game string, n int) []atari.Env {
	envs := make([]atari.Env, n)
	for i := range envs {
		envs[i] = atari.NewSyntheticEnv(game)
	}
	return envs
}

func TestRun_SingleEnv(t *testing.T) {
	envs := makeEnvs("Breakout", 1)
	pol := policy.NewRandomPolicy(1)

	result, err := Run(context.Background(), envs, pol, Config{
		Game:     "Breakout",
		Episodes: 3,
		Seed:     7,
	}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Returns) != 3 {
		t.Errorf("expected 3 returns, got %d", len(result.Returns))
	}
	if result.Steps == 0 {
		t.Error("steps should be counted")
	}
	for i, r := range result.Returns {
		if r <= 0 {
			t.Errorf("episode %d: synthetic rewards should be positive, got %v", i, r)
		}
	}
}

func TestRun_Batch(t *testing.T) {
	envs := makeEnvs("Pong", 4)
	pol := policy.NewRandomPolicy(1)

	result, err := Run(context.Background(), envs, pol, Config{
		Game:     "Pong",
		Episodes: 8,
		Seed:     7,
	}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Returns) != 8 {
		t.Errorf("expected 8 returns, got %d", len(result.Returns))
	}
}

func TestRun_Deterministic(t *testing.T) {
	play := func() []float64 {
		result, err := Run(context.Background(),
			makeEnvs("Pong", 2), policy.NewRandomPolicy(5),
			Config{Game: "Pong", Episodes: 4, Seed: 11}, testLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return result.Returns
	}

	r1 := play()
	r2 := play()
	for i := range r1 {
		if r1[i] != r2[i] {
			t.Errorf("episode %d: same seeds should reproduce returns: %v vs %v", i, r1[i], r2[i])
		}
	}
}

func TestRun_EpisodesNotDivisible(t *testing.T) {
	_, err := Run(context.Background(),
		makeEnvs("Pong", 4), policy.NewRandomPolicy(1),
		Config{Game: "Pong", Episodes: 10, Seed: 1}, testLogger())
	if err == nil {
		t.Error("expected error for episodes not divisible by batch size")
	}
}

func TestRun_NoEnvs(t *testing.T) {
	_, err := Run(context.Background(), nil, policy.NewRandomPolicy(1),
		Config{Game: "Pong", Episodes: 1}, testLogger())
	if err == nil {
		t.Error("expected error for empty env list")
	}
}

// scriptedEnv играет фиксированное число шагов с заданными наградами.
// Последняя награда выдаётся вместе с терминальным флагом.
type scriptedEnv struct {
	rewards []float64
	step    int
	done    bool
}

func (e *scriptedEnv) Reset(ctx context.Context, seed int64) (atari.Frame, error) {
	e.step = 0
	e.done = false
	return atari.ZeroFrame(), nil
}

func (e *scriptedEnv) Step(ctx context.Context, action int) (atari.Frame, float64, bool, error) {
	if e.done {
		return nil, 0, false, atari.ErrEpisodeOver
	}
	rew := e.rewards[e.step]
	e.step++
	if e.step == len(e.rewards) {
		e.done = true
	}
	return atari.ZeroFrame(), rew, e.done, nil
}

func (e *scriptedEnv) Close() error { return nil }

func TestRun_TerminalRewardMasked(t *testing.T) {
	// Единственная награда приходит на терминальном шаге — в return
	// она не входит: rew * (1 - done) = 0
	env := &scriptedEnv{rewards: []float64{0, 0, 0, 100}}

	result, err := Run(context.Background(), []atari.Env{env}, policy.NewRandomPolicy(1),
		Config{Game: "Pong", Episodes: 1, Seed: 1}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Returns[0] != 0 {
		t.Errorf("terminal-step reward should be masked, got return %v", result.Returns[0])
	}

	// Награды промежуточных шагов учитываются
	env = &scriptedEnv{rewards: []float64{1, 2, 3, 100}}
	result, err = Run(context.Background(), []atari.Env{env}, policy.NewRandomPolicy(1),
		Config{Game: "Pong", Episodes: 1, Seed: 1}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Returns[0] != 6 {
		t.Errorf("expected return 6 (terminal 100 masked), got %v", result.Returns[0])
	}
}

func TestRun_MaxStepsCutsEpisode(t *testing.T) {
	result, err := Run(context.Background(),
		makeEnvs("Pong", 1), policy.NewRandomPolicy(1),
		Config{Game: "Pong", Episodes: 1, Seed: 3, MaxSteps: 5}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Синтетические эпизоды длиннее 5 шагов, лимит должен сработать
	if result.Steps != 5 {
		t.Errorf("expected 5 steps with MaxSteps=5, got %d", result.Steps)
	}
}

func TestRandomPolicy_ActionsInRange(t *testing.T) {
	pol := policy.NewRandomPolicy(9)
	histories := make([]atari.History, 16)

	actions, err := pol.SelectActions(context.Background(), histories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 16 {
		t.Fatalf("expected 16 actions, got %d", len(actions))
	}
	for i, a := range actions {
		if a < 0 || a >= atari.NumActions {
			t.Errorf("action %d out of range: %d", i, a)
		}
	}
}
