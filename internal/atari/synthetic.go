package atari

import (
	"context"
	"math/rand"
)

// SyntheticEnv — детерминированное окружение без эмулятора.
//
// Длина эпизода и награды выводятся из seed, так что один и тот же
// seed всегда даёт один и тот же эпизод. Используется в тестах и для
// smoke-прогонов пайплайна без env-gateway.
type SyntheticEnv struct {
	game string

	rng      *rand.Rand
	step     int
	epLen    int
	finished bool
	started  bool
}

// NewSyntheticEnv создаёт синтетическое окружение.
func NewSyntheticEnv(game string) *SyntheticEnv {
	return &SyntheticEnv{game: game}
}

// Game возвращает имя игры.
func (e *SyntheticEnv) Game() string {
	return e.game
}

// Reset начинает новый эпизод с детерминированной длиной 20..119 шагов.
func (e *SyntheticEnv) Reset(_ context.Context, seed int64) (Frame, error) {
	e.rng = rand.New(rand.NewSource(seed))
	e.epLen = 20 + e.rng.Intn(100)
	e.step = 0
	e.finished = false
	e.started = true
	return e.frame(), nil
}

// Step выполняет действие. Награда — псевдослучайная в [0, 1),
// воспроизводимая для данного seed.
func (e *SyntheticEnv) Step(_ context.Context, action int) (Frame, float64, bool, error) {
	if !e.started || e.finished {
		return nil, 0, false, ErrEpisodeOver
	}
	if action < 0 || action >= NumActions {
		return nil, 0, false, ErrInvalidAction
	}

	e.step++
	rew := e.rng.Float64()
	done := e.step >= e.epLen
	if done {
		e.finished = true
	}
	return e.frame(), rew, done, nil
}

// Close ничего не освобождает.
func (e *SyntheticEnv) Close() error {
	return nil
}

// frame генерирует кадр, зависящий от номера шага.
func (e *SyntheticEnv) frame() Frame {
	f := make(Frame, FrameLen)
	for i := range f {
		f[i] = uint8((i + e.step) % 256)
	}
	return f
}
