package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/mgdt/internal/atari"
	"github.com/shaiso/mgdt/internal/domain"
	"github.com/shaiso/mgdt/internal/policy"
	"github.com/shaiso/mgdt/internal/rollout"
	"github.com/shaiso/mgdt/internal/telemetry"
)

// RolloutExecutor — executor для task типа "rollout".
//
// Играет batched эпизоды одной игры под указанной политикой.
//
// Payload:
//   - game_spec (object): GameSpec — игра, эпизоды, batch size, seed
//   - policy (object): PolicySpec — вид политики и сэмплирующие параметры
//
// GatewayURL задаёт env-gateway для живой эмуляции. Пустой GatewayURL
// переключает на синтетические окружения (smoke-режим без эмуляторов).
type RolloutExecutor struct {
	logger *slog.Logger

	// GatewayURL — адрес env-gateway.
	GatewayURL string
}

// NewRolloutExecutor создаёт RolloutExecutor.
func NewRolloutExecutor(gatewayURL string, logger *slog.Logger) *RolloutExecutor {
	return &RolloutExecutor{logger: logger, GatewayURL: gatewayURL}
}

// rolloutPayload — типизированный payload rollout task.
type rolloutPayload struct {
	GameSpec *domain.GameSpec  `json:"game_spec"`
	Policy   domain.PolicySpec `json:"policy"`
}

// Execute играет эпизоды и возвращает per-episode returns в outputs.
func (e *RolloutExecutor) Execute(ctx context.Context, task *domain.Task) (*ExecutionResult, error) {
	payload, err := decodePayload[rolloutPayload](task.Payload)
	if err != nil {
		return nil, err
	}
	if payload.GameSpec == nil || payload.GameSpec.Name == "" {
		return nil, fmt.Errorf("%w: rollout requires game_spec", ErrInvalidPayload)
	}

	game := payload.GameSpec.Name
	logger := telemetry.WithGame(e.logger, game)

	pol, err := policy.New(payload.Policy)
	if err != nil {
		return nil, fmt.Errorf("create policy: %w", err)
	}
	defer pol.Close()

	envs, err := e.createEnvs(ctx, game, payload.GameSpec.ParallelEnvs)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, env := range envs {
			env.Close()
		}
	}()

	result, err := rollout.Run(ctx, envs, pol, rollout.Config{
		Game:     game,
		Episodes: payload.GameSpec.Episodes,
		Seed:     payload.GameSpec.Seed,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("rollout %s: %w", game, err)
	}

	return &ExecutionResult{
		Outputs: map[string]any{
			"game":         game,
			"returns":      result.Returns,
			"episodes":     len(result.Returns),
			"steps":        result.Steps,
			"duration_sec": result.Duration.Seconds(),
		},
	}, nil
}

// createEnvs создаёт батч окружений: удалённых или синтетических.
func (e *RolloutExecutor) createEnvs(ctx context.Context, game string, count int) ([]atari.Env, error) {
	envs := make([]atari.Env, 0, count)

	for i := 0; i < count; i++ {
		if e.GatewayURL == "" {
			envs = append(envs, atari.NewSyntheticEnv(game))
			continue
		}

		env, err := atari.NewRemoteEnv(ctx, e.GatewayURL, game)
		if err != nil {
			for _, created := range envs {
				created.Close()
			}
			return nil, fmt.Errorf("create env %d for %s: %w", i, game, err)
		}
		envs = append(envs, env)
	}
	return envs, nil
}
