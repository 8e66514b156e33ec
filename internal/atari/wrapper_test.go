package atari

import (
	"context"
	"errors"
	"testing"
)

func TestSequenceWrapper_Reset(t *testing.T) {
	env := NewSyntheticEnv("Breakout")
	w := NewSequenceWrapper(env, 4)

	h, err := w.Reset(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// История сразу полной длины
	if len(h.Observations) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(h.Observations))
	}
	if len(h.Actions) != 4 || len(h.Rewards) != 4 || len(h.Terminals) != 4 {
		t.Fatal("actions, rewards and terminals should match history length")
	}

	// Первые 3 слота — padding до начала эпизода
	for i := 0; i < 3; i++ {
		if h.Terminals[i] != 1 {
			t.Errorf("slot %d should be padding (terminal=1), got %d", i, h.Terminals[i])
		}
	}
	if h.Terminals[3] != 0 {
		t.Error("current frame should not be marked terminal")
	}

	// Padding кадры нулевые, текущий — нет
	for _, b := range h.Observations[0] {
		if b != 0 {
			t.Fatal("padding frame should be zero")
		}
	}
}

func TestSequenceWrapper_Step(t *testing.T) {
	env := NewSyntheticEnv("Breakout")
	w := NewSequenceWrapper(env, 4)

	if _, err := w.Reset(context.Background(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h, rew, done, err := w.Step(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done {
		t.Fatal("episode should not finish on first step")
	}

	// Длина истории не растёт
	if len(h.Observations) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(h.Observations))
	}

	// Действие и награда записаны в предпоследний слот (кадр, к которому
	// действие применялось), последний слот — placeholder
	if h.Actions[2] != 3 {
		t.Errorf("expected action 3 in slot 2, got %d", h.Actions[2])
	}
	if float64(h.Rewards[2]) != float64(float32(rew)) {
		t.Errorf("expected reward %v in slot 2, got %v", rew, h.Rewards[2])
	}
	if h.Actions[3] != 0 || h.Rewards[3] != 0 {
		t.Error("current frame should have placeholder action and reward")
	}
}

func TestSequenceWrapper_StepBeforeReset(t *testing.T) {
	w := NewSequenceWrapper(NewSyntheticEnv("Breakout"), 4)

	_, _, _, err := w.Step(context.Background(), 0)
	if !errors.Is(err, ErrEpisodeOver) {
		t.Errorf("expected ErrEpisodeOver, got %v", err)
	}
}

func TestSequenceWrapper_SnapshotIsolation(t *testing.T) {
	env := NewSyntheticEnv("Breakout")
	w := NewSequenceWrapper(env, 2)

	h1, err := w.Reset(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Мутация снимка не должна влиять на внутреннее состояние
	h1.Observations[1][0] = 255
	h1.Actions[1] = 17

	h2, _, _, err := w.Step(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h2.Actions[0] == 17 {
		t.Error("snapshot mutation leaked into wrapper state")
	}
}

func TestSyntheticEnv_Deterministic(t *testing.T) {
	play := func(seed int64) (float64, int) {
		env := NewSyntheticEnv("Pong")
		if _, err := env.Reset(context.Background(), seed); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var total float64
		steps := 0
		for {
			_, rew, done, err := env.Step(context.Background(), 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			total += rew
			steps++
			if done {
				return total, steps
			}
		}
	}

	r1, s1 := play(42)
	r2, s2 := play(42)
	if r1 != r2 || s1 != s2 {
		t.Errorf("same seed should replay identically: (%v, %d) vs (%v, %d)", r1, s1, r2, s2)
	}

	r3, s3 := play(43)
	if r1 == r3 && s1 == s3 {
		t.Error("different seeds should produce different episodes")
	}
}

func TestSyntheticEnv_StepAfterDone(t *testing.T) {
	env := NewSyntheticEnv("Pong")
	if _, err := env.Reset(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for {
		_, _, done, err := env.Step(context.Background(), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if done {
			break
		}
	}

	_, _, _, err := env.Step(context.Background(), 0)
	if !errors.Is(err, ErrEpisodeOver) {
		t.Errorf("expected ErrEpisodeOver after done, got %v", err)
	}
}

func TestSyntheticEnv_InvalidAction(t *testing.T) {
	env := NewSyntheticEnv("Pong")
	if _, err := env.Reset(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, _, err := env.Step(context.Background(), NumActions)
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
}

func TestIsKnownGame(t *testing.T) {
	if !IsKnownGame("Breakout") {
		t.Error("Breakout should be known")
	}
	if IsKnownGame("Tetris") {
		t.Error("Tetris should not be known")
	}

	games := KnownGames()
	if len(games) != 46 {
		t.Errorf("expected 46 games in catalog, got %d", len(games))
	}
}
