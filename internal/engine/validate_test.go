package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/mgdt/internal/domain"
)

func validSpec() *domain.BenchmarkSpec {
	return &domain.BenchmarkSpec{
		Games: []domain.GameSpec{
			{Name: "Breakout", Episodes: 16, ParallelEnvs: 16},
		},
		Policy: domain.PolicySpec{Kind: domain.PolicyKindRandom},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := Validate(validSpec()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_EmptyGames(t *testing.T) {
	if err := Validate(&domain.BenchmarkSpec{}); !errors.Is(err, ErrEmptyGames) {
		t.Errorf("expected ErrEmptyGames, got %v", err)
	}
	if err := Validate(nil); !errors.Is(err, ErrEmptyGames) {
		t.Errorf("expected ErrEmptyGames for nil spec, got %v", err)
	}
}

func TestValidate_DuplicateGame(t *testing.T) {
	spec := validSpec()
	spec.Games = append(spec.Games, domain.GameSpec{Name: "Breakout", Episodes: 16, ParallelEnvs: 16})

	if err := Validate(spec); !errors.Is(err, ErrDuplicateGame) {
		t.Errorf("expected ErrDuplicateGame, got %v", err)
	}
}

func TestValidate_UnknownGame(t *testing.T) {
	spec := validSpec()
	spec.Games[0].Name = "Tetris"

	err := Validate(spec)
	if !errors.Is(err, ErrUnknownGame) {
		t.Errorf("expected ErrUnknownGame, got %v", err)
	}

	// Ошибка должна нести контекст игры
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatal("expected ValidationError")
	}
	if verr.Game != "Tetris" {
		t.Errorf("expected game Tetris in error, got %s", verr.Game)
	}
}

func TestValidate_Episodes(t *testing.T) {
	tests := []struct {
		name         string
		episodes     int
		parallelEnvs int
		wantErr      bool
	}{
		{"divisible", 32, 16, false},
		{"equal", 16, 16, false},
		{"zero episodes", 0, 16, true},
		{"negative episodes", -1, 16, true},
		{"zero parallel envs", 16, 0, true},
		{"not divisible", 10, 16, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			spec.Games[0].Episodes = tt.episodes
			spec.Games[0].ParallelEnvs = tt.parallelEnvs

			err := Validate(spec)
			if tt.wantErr && !errors.Is(err, ErrInvalidEpisodes) {
				t.Errorf("expected ErrInvalidEpisodes, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_Policy(t *testing.T) {
	// remote без url
	spec := validSpec()
	spec.Policy = domain.PolicySpec{Kind: domain.PolicyKindRemote}
	if err := Validate(spec); !errors.Is(err, ErrInvalidPolicy) {
		t.Errorf("expected ErrInvalidPolicy for remote without url, got %v", err)
	}

	// remote с url
	spec.Policy.URL = "http://localhost:9000"
	if err := Validate(spec); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// неизвестный вид
	spec.Policy = domain.PolicySpec{Kind: "greedy"}
	if err := Validate(spec); !errors.Is(err, ErrUnknownPolicyKind) {
		t.Errorf("expected ErrUnknownPolicyKind, got %v", err)
	}

	// отрицательная температура
	spec.Policy = domain.PolicySpec{Kind: domain.PolicyKindRandom, ActionTemperature: -1}
	if err := Validate(spec); !errors.Is(err, ErrInvalidPolicy) {
		t.Errorf("expected ErrInvalidPolicy for negative temperature, got %v", err)
	}

	// перцентиль вне диапазона
	spec.Policy = domain.PolicySpec{Kind: domain.PolicyKindRandom, ActionTopPercentile: 150}
	if err := Validate(spec); !errors.Is(err, ErrInvalidPolicy) {
		t.Errorf("expected ErrInvalidPolicy for percentile > 100, got %v", err)
	}
}

func TestValidate_Data(t *testing.T) {
	spec := validSpec()
	spec.Data = &domain.DataSpec{
		BaseURL:     "https://storage.example.com/atari",
		Checkpoints: []int{0, 49},
		TargetDir:   "/tmp/data",
	}
	if err := Validate(spec); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// checkpoint вне диапазона
	spec.Data.Checkpoints = []int{50}
	if err := Validate(spec); !errors.Is(err, ErrInvalidCheckpoint) {
		t.Errorf("expected ErrInvalidCheckpoint, got %v", err)
	}

	// без checkpoint'ов
	spec.Data.Checkpoints = nil
	if err := Validate(spec); !errors.Is(err, ErrInvalidData) {
		t.Errorf("expected ErrInvalidData for empty checkpoints, got %v", err)
	}

	// без target_dir
	spec.Data.Checkpoints = []int{49}
	spec.Data.TargetDir = ""
	if err := Validate(spec); !errors.Is(err, ErrInvalidData) {
		t.Errorf("expected ErrInvalidData for empty target_dir, got %v", err)
	}
}

func TestValidate_Weights(t *testing.T) {
	spec := validSpec()
	spec.Weights = &domain.WeightsSpec{URL: "https://storage.example.com/model.npz"}

	if err := Validate(spec); !errors.Is(err, ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights for missing target, got %v", err)
	}

	spec.Weights.Target = "/tmp/model.npz"
	if err := Validate(spec); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
