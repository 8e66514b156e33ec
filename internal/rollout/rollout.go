package rollout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/mgdt/internal/atari"
	"github.com/shaiso/mgdt/internal/policy"
	"github.com/shaiso/mgdt/internal/telemetry"
)

// Параметры rollout по умолчанию.
const (
	// DefaultNumStack — длина истории наблюдений для политики.
	DefaultNumStack = 4

	// DefaultLogInterval — раз в сколько шагов логировать скорость.
	DefaultLogInterval = 100
)

// Config — настройки прогона эпизодов одной игры.
type Config struct {
	// Game — имя игры (для логов и метрик).
	Game string

	// Episodes — сколько эпизодов сыграть.
	// Должно делиться на размер батча без остатка.
	Episodes int

	// Seed — базовый seed. Seed эпизода = Seed + номер эпизода.
	Seed int64

	// NumStack — длина истории. 0 означает DefaultNumStack.
	NumStack int

	// MaxSteps — лимит шагов эпизода. 0 означает atari.MaxEpisodeSteps.
	MaxSteps int

	// LogInterval — период логирования скорости в шагах.
	// 0 означает DefaultLogInterval.
	LogInterval int
}

// Result — итог прогона: суммарная награда каждого эпизода.
type Result struct {
	Returns  []float64     `json:"returns"`
	Steps    int64         `json:"steps"`
	Duration time.Duration `json:"duration"`
}

// Run играет cfg.Episodes эпизодов батчами по len(envs) окружений.
//
// Окружения шагают в lockstep: на каждом шаге политика получает истории
// всех ещё не завершённых окружений. Награды завершённых окружений не
// учитываются, начиная с шага завершения; батч заканчивается при
// завершении всех или по лимиту шагов.
func Run(ctx context.Context, envs []atari.Env, pol policy.Policy, cfg Config, logger *slog.Logger) (*Result, error) {
	numBatch := len(envs)
	if numBatch == 0 {
		return nil, fmt.Errorf("rollout requires at least one env")
	}
	if cfg.Episodes%numBatch != 0 {
		return nil, fmt.Errorf("episodes (%d) must be divisible by batch size (%d)", cfg.Episodes, numBatch)
	}

	numStack := cfg.NumStack
	if numStack <= 0 {
		numStack = DefaultNumStack
	}
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = atari.MaxEpisodeSteps
	}
	logInterval := cfg.LogInterval
	if logInterval <= 0 {
		logInterval = DefaultLogInterval
	}

	wrapped := make([]*atari.SequenceWrapper, numBatch)
	for i, env := range envs {
		wrapped[i] = atari.NewSequenceWrapper(env, numStack)
	}

	result := &Result{Returns: make([]float64, 0, cfg.Episodes)}
	startAll := time.Now()

	for batch := 0; batch < cfg.Episodes/numBatch; batch++ {
		returns, steps, err := runBatch(ctx, wrapped, pol, cfg, batch, maxSteps, logInterval, logger)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", batch, err)
		}
		result.Returns = append(result.Returns, returns...)
		result.Steps += steps

		for range returns {
			telemetry.EpisodesCompleted.WithLabelValues(cfg.Game).Inc()
		}
	}

	result.Duration = time.Since(startAll)
	logger.Info("rollout finished",
		"game", cfg.Game,
		"episodes", len(result.Returns),
		"steps", result.Steps,
		"duration", result.Duration.String())
	return result, nil
}

// runBatch играет по одному эпизоду в каждом окружении батча.
func runBatch(
	ctx context.Context,
	envs []*atari.SequenceWrapper,
	pol policy.Policy,
	cfg Config,
	batch, maxSteps, logInterval int,
	logger *slog.Logger,
) ([]float64, int64, error) {
	numBatch := len(envs)
	histories := make([]atari.History, numBatch)
	rewSum := make([]float64, numBatch)
	done := make([]bool, numBatch)

	// Seed эпизода детерминирован номером эпизода в прогоне.
	g, gctx := errgroup.WithContext(ctx)
	for i, env := range envs {
		seed := cfg.Seed + int64(batch*numBatch+i)
		g.Go(func() error {
			h, err := env.Reset(gctx, seed)
			if err != nil {
				return fmt.Errorf("reset env %d: %w", i, err)
			}
			histories[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var steps int64
	start := time.Now()

	for t := 0; t < maxSteps; t++ {
		// Действия запрашиваются для всего батча: политика видит
		// одинаковую форму входа на каждом шаге.
		actions, err := pol.SelectActions(ctx, histories)
		if err != nil {
			return nil, steps, fmt.Errorf("select actions at step %d: %w", t, err)
		}
		if len(actions) != numBatch {
			return nil, steps, fmt.Errorf("policy returned %d actions for %d envs", len(actions), numBatch)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := range envs {
			if done[i] {
				continue
			}
			g.Go(func() error {
				h, rew, d, err := envs[i].Step(gctx, actions[i])
				if err != nil {
					return fmt.Errorf("step env %d: %w", i, err)
				}
				histories[i] = h
				// rew = rew * (1 - done): награда терминального шага
				// обнуляется вместе с наградами завершённых окружений.
				if d {
					done[i] = true
				} else {
					rewSum[i] += rew
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, steps, err
		}

		steps++
		telemetry.RolloutSteps.Inc()

		if t > 0 && t%logInterval == 0 {
			fps := float64(t*numBatch) / time.Since(start).Seconds()
			logger.Debug("rollout progress",
				"game", cfg.Game,
				"step", t,
				"env_steps_per_sec", fmt.Sprintf("%.1f", fps))
		}

		if allDone(done) {
			break
		}
	}

	return append([]float64(nil), rewSum...), steps, nil
}

func allDone(done []bool) bool {
	for _, d := range done {
		if !d {
			return false
		}
	}
	return true
}
