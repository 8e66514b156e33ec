package engine

import (
	"fmt"

	"github.com/shaiso/mgdt/internal/atari"
	"github.com/shaiso/mgdt/internal/domain"
)

// MaxCheckpoint — старший номер checkpoint replay буфера в бакете.
const MaxCheckpoint = 49

// Validate выполняет полную валидацию BenchmarkSpec.
//
// Проверяет:
// - Наличие игр, уникальность имён, присутствие в каталоге
// - Делимость эпизодов на размер батча
// - Вид и параметры политики
// - Диапазон checkpoint'ов и пути загрузки датасетов
// - Настройки загрузки весов
func Validate(spec *domain.BenchmarkSpec) error {
	if spec == nil || len(spec.Games) == 0 {
		return ErrEmptyGames
	}

	seen := make(map[string]bool)
	for i := range spec.Games {
		if err := validateGame(&spec.Games[i], seen); err != nil {
			return err
		}
	}

	if err := validatePolicy(&spec.Policy); err != nil {
		return err
	}
	if spec.Data != nil {
		if err := validateData(spec.Data); err != nil {
			return err
		}
	}
	if spec.Weights != nil {
		if err := validateWeights(spec.Weights); err != nil {
			return err
		}
	}
	return nil
}

// validateGame валидирует одну игру.
// seen — уже встреченные имена (для проверки уникальности).
func validateGame(game *domain.GameSpec, seen map[string]bool) error {
	if game.Name == "" {
		return NewValidationError("", "name", "game has empty name", ErrEmptyGameName)
	}
	if seen[game.Name] {
		return NewValidationError(game.Name, "name",
			fmt.Sprintf("duplicate game: %s", game.Name), ErrDuplicateGame)
	}
	seen[game.Name] = true

	if !atari.IsKnownGame(game.Name) {
		return NewValidationError(game.Name, "name",
			fmt.Sprintf("game not in catalog: %s", game.Name), ErrUnknownGame)
	}

	if game.Episodes <= 0 {
		return NewValidationError(game.Name, "episodes",
			"episodes must be positive", ErrInvalidEpisodes)
	}
	if game.ParallelEnvs <= 0 {
		return NewValidationError(game.Name, "parallel_envs",
			"parallel_envs must be positive", ErrInvalidEpisodes)
	}
	if game.Episodes%game.ParallelEnvs != 0 {
		return NewValidationError(game.Name, "episodes",
			fmt.Sprintf("episodes (%d) must be divisible by parallel_envs (%d)",
				game.Episodes, game.ParallelEnvs), ErrInvalidEpisodes)
	}
	return nil
}

// validatePolicy валидирует параметры политики.
func validatePolicy(p *domain.PolicySpec) error {
	switch p.Kind {
	case domain.PolicyKindRemote:
		if p.URL == "" {
			return NewValidationError("", "policy.url",
				"remote policy requires url", ErrInvalidPolicy)
		}
	case domain.PolicyKindRandom:
	default:
		return NewValidationError("", "policy.kind",
			fmt.Sprintf("unknown policy kind: %q", p.Kind), ErrUnknownPolicyKind)
	}

	if p.ActionTemperature < 0 {
		return NewValidationError("", "policy.action_temperature",
			"action_temperature must not be negative", ErrInvalidPolicy)
	}
	if p.ReturnTemperature < 0 {
		return NewValidationError("", "policy.return_temperature",
			"return_temperature must not be negative", ErrInvalidPolicy)
	}
	if p.NumSamples < 0 {
		return NewValidationError("", "policy.num_samples",
			"num_samples must not be negative", ErrInvalidPolicy)
	}
	if p.ActionTopPercentile < 0 || p.ActionTopPercentile > 100 {
		return NewValidationError("", "policy.action_top_percentile",
			"action_top_percentile must be within [0, 100]", ErrInvalidPolicy)
	}
	return nil
}

// validateData валидирует настройки загрузки датасетов.
func validateData(d *domain.DataSpec) error {
	if len(d.Checkpoints) == 0 {
		return NewValidationError("", "data.checkpoints",
			"data spec has no checkpoints", ErrInvalidData)
	}
	for _, ckpt := range d.Checkpoints {
		if ckpt < 0 || ckpt > MaxCheckpoint {
			return NewValidationError("", "data.checkpoints",
				fmt.Sprintf("checkpoint %d out of range [0, %d]", ckpt, MaxCheckpoint),
				ErrInvalidCheckpoint)
		}
	}
	if d.TargetDir == "" {
		return NewValidationError("", "data.target_dir",
			"data spec requires target_dir", ErrInvalidData)
	}
	if d.Run < 0 {
		return NewValidationError("", "data.run",
			"run must not be negative", ErrInvalidData)
	}
	return nil
}

// validateWeights валидирует настройки загрузки весов.
func validateWeights(w *domain.WeightsSpec) error {
	if w.URL == "" {
		return NewValidationError("", "weights.url",
			"weights spec requires url", ErrInvalidWeights)
	}
	if w.Target == "" {
		return NewValidationError("", "weights.target",
			"weights spec requires target", ErrInvalidWeights)
	}
	return nil
}
