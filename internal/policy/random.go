package policy

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/shaiso/mgdt/internal/atari"
)

// RandomPolicy сэмплирует действия равномерно из полного action set.
type RandomPolicy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPolicy создаёт политику с указанным seed.
// Нулевой seed даёт недетерминированную политику.
func NewRandomPolicy(seed int64) *RandomPolicy {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomPolicy{rng: rand.New(rand.NewSource(seed))}
}

// SelectActions возвращает случайное действие для каждого окружения.
func (p *RandomPolicy) SelectActions(_ context.Context, histories []atari.History) ([]int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	actions := make([]int, len(histories))
	for i := range actions {
		actions[i] = p.rng.Intn(atari.NumActions)
	}
	return actions, nil
}

// Close ничего не освобождает.
func (p *RandomPolicy) Close() error {
	return nil
}
